package model

// Poll is a vote among an area's maintainers about the area itself.
// It stays open until the outcome cannot change anymore; settling a
// consented poll applies its matter exactly once.
type Poll struct {
	Rec

	Area   *Area
	Serial IDN

	Matter Matter

	Initiator Name
	// Affected is the user a resignation/participation poll is about.
	Affected Name

	Consenting Names
	Dissenting Names

	Start int64
	// End is zero while the poll is open and the settlement instant after.
	End int64
}

func (p *Poll) UniqueID() ID { return PollID(p.Area.Product, p.Area.Name, p.Serial) }

// IsSettled reports whether the outcome is final.
func (p *Poll) IsSettled() bool { return p.End != 0 }

// IsConsented reports whether consents outweigh dissents.
func (p *Poll) IsConsented() bool { return p.Consenting.Count() > p.Dissenting.Count() }

// EligibleVoters is the number of maintainers entitled to vote: the
// affected user has no say in a poll about themselves.
func (p *Poll) EligibleVoters() int {
	n := p.Area.Maintainers.Count()
	if p.Area.Maintainers.Contains(p.Affected) {
		n--
	}
	return n
}

// CanVote reports whether voter may cast or change a vote right now.
func (p *Poll) CanVote(voter Name) bool {
	return !p.IsSettled() &&
		p.Area.IsMaintainer(voter) &&
		!voter.EqualTo(p.Affected)
}

// OutcomeFixed reports whether further votes cannot change the outcome:
// one side already holds a strict majority of the eligible voters, or
// every eligible voter has voted.
func (p *Poll) OutcomeFixed() bool {
	eligible := p.EligibleVoters()
	majority := eligible/2 + 1
	return p.Consenting.Count() >= majority ||
		p.Dissenting.Count() >= majority ||
		p.Consenting.Count()+p.Dissenting.Count() >= eligible
}

// Clone returns an independent snapshot.
func (p *Poll) Clone() *Poll {
	c := *p
	c.Consenting = p.Consenting.Clone()
	c.Dissenting = p.Dissenting.Clone()
	return &c
}

package model

// Area partitions a product's tasks and names the users entitled to
// maintain them. Sub-areas carry their basis and may inherit its
// maintainers at creation time.
type Area struct {
	Rec

	Product Name
	Name    Name

	// Basis is the area this one was partitioned from, if any.
	Basis Name

	Maintainers Names

	// Exclusive areas only accept task assignment by their maintainers.
	Exclusive bool

	// Polls is the serial counter; the next poll gets Polls+1.
	Polls IDN
}

func (a *Area) UniqueID() ID { return AreaID(a.Product, a.Name) }

// IsMaintainer reports whether user may approve changes in this area.
func (a *Area) IsMaintainer(user Name) bool { return a.Maintainers.Contains(user) }

// Clone returns an independent snapshot.
func (a *Area) Clone() *Area {
	c := *a
	c.Maintainers = a.Maintainers.Clone()
	return &c
}

package model

// Site is a user-owned dashboard: a named page template rendered by
// collaborators outside this module.
type Site struct {
	Rec

	Owner Name
	Name  Name

	Template Template
}

func (s *Site) UniqueID() ID { return SiteID(s.Owner, s.Name) }

// Clone returns an independent snapshot.
func (s *Site) Clone() *Site {
	c := *s
	return &c
}

package model

// Product is the top-level container for areas, versions and tasks.
//
// Every product owns three implicit children: the origin area "*" whose
// maintainers administrate the product, the somewhere area "~" holding
// unclassified tasks, and the somewhen version "~" for tasks without a
// target version.
type Product struct {
	Rec

	Name Name

	// Tasks is the sequence counter; the next reported task gets Tasks+1.
	Tasks int32
	// UnconfirmedTasks counts anonymous reports not yet confirmed.
	UnconfirmedTasks int32

	Origin    *Area
	Somewhere *Area
	Somewhen  *Version
}

// maxUnconfirmedTasks caps pending anonymous reports per product.
const maxUnconfirmedTasks = 20

func (p *Product) UniqueID() ID { return ProductID(p.Name) }

// AllowsAnonymousReports reports whether another unconfirmed anonymous
// report is accepted.
func (p *Product) AllowsAnonymousReports() bool {
	return p.UnconfirmedTasks < maxUnconfirmedTasks
}

// Clone returns an independent snapshot. The implicit children are shared;
// they are entities of their own and cloned by whoever mutates them.
func (p *Product) Clone() *Product {
	c := *p
	return &c
}

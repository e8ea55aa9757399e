package model

// Version is a release label scoped to a product. Its changeset is stamped
// once when a release task naming it resolves.
type Version struct {
	Rec

	Product Name
	Name    Name

	Changeset Names
}

func (v *Version) UniqueID() ID { return VersionID(v.Product, v.Name) }

// IsUnknown reports whether this is the implicit "~" version.
func (v *Version) IsUnknown() bool { return v.Name.IsUnknown() }

// Clone returns an independent snapshot.
func (v *Version) Clone() *Version {
	c := *v
	c.Changeset = v.Changeset.Clone()
	return &c
}

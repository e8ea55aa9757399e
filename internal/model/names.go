package model

// Names is an ordered set of Name. Insertion order is preserved so the
// codec writes and reads a stable sequence; membership is byte-equality.
//
// The zero value is an empty, ready-to-use set. Add and Remove return the
// updated set so callers on cloned snapshots can reassign in one line.
type Names struct {
	list []Name
}

// EmptyNames returns an empty set.
func EmptyNames() Names { return Names{} }

// NamesOf builds a set from the given names in order, dropping duplicates.
func NamesOf(names ...Name) Names {
	var res Names
	for _, n := range names {
		res = res.Add(n)
	}
	return res
}

// Count returns the number of members.
func (ns Names) Count() int { return len(ns.list) }

// IsEmpty reports whether the set has no members.
func (ns Names) IsEmpty() bool { return len(ns.list) == 0 }

// Contains reports membership by byte-equality.
func (ns Names) Contains(name Name) bool {
	for _, n := range ns.list {
		if n.EqualTo(name) {
			return true
		}
	}
	return false
}

// Add returns the set with name appended unless already a member.
func (ns Names) Add(name Name) Names {
	if ns.Contains(name) {
		return ns
	}
	list := make([]Name, 0, len(ns.list)+1)
	list = append(list, ns.list...)
	list = append(list, name)
	return Names{list}
}

// Remove returns the set without name, preserving the order of the rest.
func (ns Names) Remove(name Name) Names {
	if !ns.Contains(name) {
		return ns
	}
	list := make([]Name, 0, len(ns.list)-1)
	for _, n := range ns.list {
		if !n.EqualTo(name) {
			list = append(list, n)
		}
	}
	return Names{list}
}

// At returns the member at index i in insertion order.
func (ns Names) At(i int) Name { return ns.list[i] }

// All returns the members in insertion order. Callers must not mutate the
// result; it shares backing with the set.
func (ns Names) All() []Name { return ns.list }

// Clone returns an independent copy.
func (ns Names) Clone() Names {
	if len(ns.list) == 0 {
		return Names{}
	}
	list := make([]Name, len(ns.list))
	copy(list, ns.list)
	return Names{list}
}

func (ns Names) String() string {
	s := "{"
	for i, n := range ns.list {
		if i > 0 {
			s += ", "
		}
		s += n.String()
	}
	return s + "}"
}

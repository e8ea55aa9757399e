package model

import (
	"bytes"
	"fmt"
)

// Name identifies users, products, areas, versions and sites.
//
// External names are the ones users pick: they start with a letter, use only
// letters, digits, '-', '_' and '.', and are at most 16 bytes long.
//
// Internal names are reserved by the system: the origin area "*", the
// unknown area/version "~", and email-shaped names (containing '@') given to
// users that have not registered a proper name yet.
type Name struct {
	symbols
}

const maxNameLength = 16

// maxInternalNameLength bounds email-shaped names used for anonymous users.
const maxInternalNameLength = 64

var (
	// Origin names the administrative root area "*" of every product.
	Origin = Name{symbols("*")}
	// Unknown names the default area and version "~" for unclassified tasks.
	Unknown = Name{symbols("~")}
)

// As validates s and returns it as a Name.
func As(s string) (Name, error) {
	b := []byte(s)
	if len(b) == 0 {
		return Name{}, fmt.Errorf("name must not be empty")
	}
	if len(b) == 1 && (b[0] == '*' || b[0] == '~') {
		return Name{symbols(b)}, nil
	}
	if bytes.IndexByte(b, '@') >= 0 {
		if len(b) > maxInternalNameLength {
			return Name{}, fmt.Errorf("name %q exceeds %d bytes", s, maxInternalNameLength)
		}
		for _, c := range b {
			if !isLetter(c) && !isDigit(c) && c != '@' && c != '.' && c != '-' && c != '_' && c != '+' {
				return Name{}, fmt.Errorf("name %q contains illegal byte %q", s, c)
			}
		}
		return Name{symbols(b)}, nil
	}
	if len(b) > maxNameLength {
		return Name{}, fmt.Errorf("name %q exceeds %d bytes", s, maxNameLength)
	}
	if !isLetter(b[0]) {
		return Name{}, fmt.Errorf("name %q must start with a letter", s)
	}
	for _, c := range b {
		if !isLetter(c) && !isDigit(c) && c != '-' && c != '_' && c != '.' {
			return Name{}, fmt.Errorf("name %q contains illegal byte %q", s, c)
		}
	}
	return Name{symbols(b)}, nil
}

// MustName is As for compile-time constants in tests and wiring code.
// It panics on invalid input.
func MustName(s string) Name {
	n, err := As(s)
	if err != nil {
		panic(err)
	}
	return n
}

// nameFromBytes trusts b to be a previously validated name. Used by the
// codec when rehydrating stored entities.
func nameFromBytes(b []byte) Name {
	return Name{symbols(b)}
}

// NameFromStored trusts b to be a previously validated name read back from
// the store. The codec is the only intended caller.
func NameFromStored(b []byte) Name {
	c := make([]byte, len(b))
	copy(c, b)
	return nameFromBytes(c)
}

// IsZero reports whether the name is unset.
func (n Name) IsZero() bool { return len(n.symbols) == 0 }

// IsInternal reports whether the name is system-reserved: "*", "~" or an
// email-shaped anonymous name.
func (n Name) IsInternal() bool {
	if len(n.symbols) == 1 && (n.symbols[0] == '*' || n.symbols[0] == '~') {
		return true
	}
	return bytes.IndexByte(n.symbols, '@') >= 0
}

// IsExternal reports whether the name is a user-picked registered name.
func (n Name) IsExternal() bool { return !n.IsZero() && !n.IsInternal() }

// IsEmail reports whether the name is email-shaped (an anonymous user).
func (n Name) IsEmail() bool { return bytes.IndexByte(n.symbols, '@') >= 0 }

// IsOrigin reports whether the name is the administrative root area "*".
func (n Name) IsOrigin() bool { return len(n.symbols) == 1 && n.symbols[0] == '*' }

// IsUnknown reports whether the name is the default "~" area or version.
func (n Name) IsUnknown() bool { return len(n.symbols) == 1 && n.symbols[0] == '~' }

// EqualTo reports byte-exact equality with another Name.
func (n Name) EqualTo(other Name) bool { return n.symbols.EqualTo(other.symbols) }

// Compare orders names lexicographically over their bytes.
func (n Name) Compare(other Name) int { return n.symbols.Compare(other.symbols) }

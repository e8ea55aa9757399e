package model

import "bytes"

// symbols is the shared backing of all identifier kinds: an immutable ASCII
// byte sequence. Ordering is lexicographic over the raw bytes, equality is
// byte-exact. Two identifiers of different concrete kinds never compare
// equal because they are distinct Go types.
type symbols []byte

func (s symbols) String() string { return string(s) }

// Bytes returns the raw bytes. Callers must not mutate the result.
func (s symbols) Bytes() []byte { return s }

func (s symbols) Compare(other symbols) int { return bytes.Compare(s, other) }

func (s symbols) EqualTo(other symbols) bool { return bytes.Equal(s, other) }

func (s symbols) StartsWith(prefix symbols) bool { return bytes.HasPrefix(s, prefix) }

func isLetter(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

package model

import "fmt"

// IDN is a serial number scoped to a parent entity: task numbers within a
// product, poll numbers within an area. Zero means "absent".
type IDN int32

// idnDigits is the fixed key width. Zero-padded decimal keeps lexicographic
// key order equal to numeric order for range scans.
const idnDigits = 8

func (n IDN) String() string { return fmt.Sprintf("%d", int32(n)) }

// Key renders the serial in fixed key form, e.g. 42 -> "00000042".
func (n IDN) Key() string { return fmt.Sprintf("%0*d", idnDigits, int32(n)) }

// IsZero reports whether the serial is absent.
func (n IDN) IsZero() bool { return n == 0 }

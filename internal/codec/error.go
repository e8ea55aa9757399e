package codec

import (
	"errors"
	"fmt"
)

// Kind names the record layout an Error happened in.
type Kind string

const (
	KindUser    Kind = "user"
	KindProduct Kind = "product"
	KindArea    Kind = "area"
	KindVersion Kind = "version"
	KindTask    Kind = "task"
	KindPoll    Kind = "poll"
	KindSite    Kind = "site"
	KindEvent   Kind = "event"
	KindHistory Kind = "history"
)

// Error reports malformed, truncated or trailing bytes, or an unknown wire
// tag, during decode. It signals storage corruption or a format mismatch
// and is never swallowed or auto-repaired: the enclosing transaction fails.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("codec: %s record %s", e.Kind, e.Reason)
}

// IsCodecError reports whether err is (or wraps) a codec Error.
func IsCodecError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

func tagError(kind Kind, field string, tag uint8) error {
	return &Error{Kind: kind, Reason: fmt.Sprintf("has unknown %s tag %d", field, tag)}
}

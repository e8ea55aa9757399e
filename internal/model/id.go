package model

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// Kind is the entity namespace an ID belongs to. The kind byte is the first
// byte of every storage key, so each kind occupies a distinct key range.
type Kind byte

const (
	KindUser    Kind = 'u'
	KindProduct Kind = 'p'
	KindArea    Kind = 'a'
	KindVersion Kind = 'v'
	KindTask    Kind = 't'
	KindPoll    Kind = 'q'
	KindSite    Kind = 's'
	KindEvent   Kind = 'e'
	KindHistory Kind = 'h'
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindProduct:
		return "product"
	case KindArea:
		return "area"
	case KindVersion:
		return "version"
	case KindTask:
		return "task"
	case KindPoll:
		return "poll"
	case KindSite:
		return "site"
	case KindEvent:
		return "event"
	case KindHistory:
		return "history"
	}
	return fmt.Sprintf("kind(%q)", byte(k))
}

// ID is a complete storage key: kind byte, ':', then the kind-specific
// parts joined by ':'. Event keys carry the raw big-endian millisecond
// timestamp after the prefix so lexicographic byte order is chronological
// order.
type ID struct {
	symbols
}

func newID(kind Kind, parts ...string) ID {
	var b strings.Builder
	b.WriteByte(byte(kind))
	for _, p := range parts {
		b.WriteByte(':')
		b.WriteString(p)
	}
	return ID{symbols(b.String())}
}

func UserID(user Name) ID { return newID(KindUser, user.String()) }

func ProductID(product Name) ID { return newID(KindProduct, product.String()) }

func AreaID(product, area Name) ID { return newID(KindArea, product.String(), area.String()) }

func VersionID(product, version Name) ID {
	return newID(KindVersion, product.String(), version.String())
}

func TaskID(product Name, task IDN) ID { return newID(KindTask, product.String(), task.Key()) }

func PollID(product, area Name, serial IDN) ID {
	return newID(KindPoll, product.String(), area.String(), serial.Key())
}

func SiteID(owner, site Name) ID { return newID(KindSite, owner.String(), site.String()) }

// EventID keys an event by its millisecond timestamp. The timestamp bytes
// are big-endian so byte order equals chronological order.
func EventID(timestamp int64) ID {
	key := make([]byte, 2+8)
	key[0] = byte(KindEvent)
	key[1] = ':'
	binary.BigEndian.PutUint64(key[2:], uint64(timestamp))
	return ID{symbols(key)}
}

// HistoryID keys the event history of any entity by appending the entity's
// own key to the history namespace.
func HistoryID(entity ID) ID {
	key := make([]byte, 0, 2+len(entity.symbols))
	key = append(key, byte(KindHistory), ':')
	key = append(key, entity.symbols...)
	return ID{symbols(key)}
}

// TaskScanPrefix is the key prefix shared by all tasks of one product.
// A range scan from this prefix visits the product's tasks in ascending
// sequence order and nothing else once the prefix no longer matches.
func TaskScanPrefix(product Name) ID {
	return ID{symbols("t:" + product.String() + ":")}
}

// EventScanPrefix is the key prefix shared by all events.
func EventScanPrefix() ID {
	return ID{symbols("e:")}
}

// IDFromStored trusts b to be a previously written key read back from the
// store.
func IDFromStored(b []byte) ID {
	c := make([]byte, len(b))
	copy(c, b)
	return ID{symbols(c)}
}

// Kind returns the namespace of the ID.
func (id ID) Kind() Kind {
	if len(id.symbols) == 0 {
		return 0
	}
	return Kind(id.symbols[0])
}

// IsZero reports whether the ID is unset.
func (id ID) IsZero() bool { return len(id.symbols) == 0 }

// EqualTo reports byte-exact equality with another ID.
func (id ID) EqualTo(other ID) bool { return id.symbols.EqualTo(other.symbols) }

// EventTimestamp extracts the millisecond timestamp of an event key.
func (id ID) EventTimestamp() (int64, error) {
	if id.Kind() != KindEvent || len(id.symbols) != 2+8 {
		return 0, fmt.Errorf("not an event key: %q", id.String())
	}
	return int64(binary.BigEndian.Uint64(id.symbols[2:])), nil
}

// String renders the key for humans. Event keys render their timestamp as
// decimal millis instead of raw bytes.
func (id ID) String() string {
	if id.Kind() == KindEvent {
		if ts, err := id.EventTimestamp(); err == nil {
			return "e:" + strconv.FormatInt(ts, 10)
		}
	}
	if id.Kind() == KindHistory && len(id.symbols) > 2 {
		return "h:" + ID{id.symbols[2:]}.String()
	}
	return string(id.symbols)
}

// ParseID parses the human form produced by String. Used by the CLI to
// accept entity keys on the command line.
func ParseID(s string) (ID, error) {
	if len(s) < 3 || s[1] != ':' {
		return ID{}, fmt.Errorf("malformed id %q", s)
	}
	kind := Kind(s[0])
	rest := s[2:]
	switch kind {
	case KindUser, KindProduct, KindArea, KindVersion, KindTask, KindPoll, KindSite:
		return ID{symbols(s)}, nil
	case KindEvent:
		ts, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return ID{}, fmt.Errorf("malformed event id %q: %w", s, err)
		}
		return EventID(ts), nil
	case KindHistory:
		subject, err := ParseID(rest)
		if err != nil {
			return ID{}, err
		}
		return HistoryID(subject), nil
	}
	return ID{}, fmt.Errorf("unknown id kind in %q", s)
}

package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/trackline/trackline/internal/model"
)

// writer builds a record. Field writers never fail; oversized variable
// fields cannot occur because the model validates lengths on construction.
type writer struct {
	buf []byte
}

func newWriter() *writer {
	return &writer{buf: make([]byte, 0, 128)}
}

func (w *writer) bytes() []byte { return w.buf }

func (w *writer) u8(v uint8) { w.buf = append(w.buf, v) }

func (w *writer) u16(v uint16) { w.buf = binary.BigEndian.AppendUint16(w.buf, v) }

func (w *writer) u32(v uint32) { w.buf = binary.BigEndian.AppendUint32(w.buf, v) }

func (w *writer) u64(v uint64) { w.buf = binary.BigEndian.AppendUint64(w.buf, v) }

func (w *writer) bool(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}

// name writes a one-byte length prefix and the raw bytes. A zero name
// writes length zero, which is how absent references (no solver yet, no
// basis) travel.
func (w *writer) name(n model.Name) {
	b := n.Bytes()
	w.u8(uint8(len(b)))
	w.buf = append(w.buf, b...)
}

func (w *writer) text(s string) {
	w.u16(uint16(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *writer) blob(b []byte) {
	w.u16(uint16(len(b)))
	w.buf = append(w.buf, b...)
}

func (w *writer) id(id model.ID) {
	b := id.Bytes()
	w.u16(uint16(len(b)))
	w.buf = append(w.buf, b...)
}

func (w *writer) names(ns model.Names) {
	w.u16(uint16(ns.Count()))
	for _, n := range ns.All() {
		w.name(n)
	}
}

// notifications writes present preferences in ascending tag order so equal
// maps produce equal bytes.
func (w *writer) notifications(prefs map[model.Notification]model.Delivery) {
	count := 0
	for _, n := range model.Notifications() {
		if _, ok := prefs[n]; ok {
			count++
		}
	}
	w.u8(uint8(count))
	for _, n := range model.Notifications() {
		if d, ok := prefs[n]; ok {
			w.u8(uint8(n))
			w.u8(uint8(d))
		}
	}
}

func (w *writer) millis(ts []int64) {
	w.u16(uint16(len(ts)))
	for _, t := range ts {
		w.u64(uint64(t))
	}
}

// reader consumes a record. The first failure sticks; field readers return
// zero values afterwards and finish surfaces the error. finish also rejects
// trailing bytes so a truncated or overlong record never decodes silently.
type reader struct {
	kind Kind
	data []byte
	pos  int
	err  error
}

func newReader(kind Kind, data []byte) *reader {
	return &reader{kind: kind, data: data}
}

func (r *reader) ok() bool { return r.err == nil }

func (r *reader) fail(reason string) {
	if r.err == nil {
		r.err = &Error{Kind: r.kind, Reason: reason}
	}
}

func (r *reader) finish() error {
	if r.err != nil {
		return r.err
	}
	if r.pos != len(r.data) {
		r.fail(fmt.Sprintf("has %d trailing bytes", len(r.data)-r.pos))
	}
	return r.err
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos+n > len(r.data) {
		r.fail(fmt.Sprintf("truncated at byte %d", r.pos))
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) u16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

func (r *reader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (r *reader) u64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func (r *reader) bool() bool {
	switch r.u8() {
	case 0:
		return false
	case 1:
		return true
	default:
		r.fail(fmt.Sprintf("has malformed bool at byte %d", r.pos-1))
		return false
	}
}

func (r *reader) name() model.Name {
	n := int(r.u8())
	if n == 0 {
		return model.Name{}
	}
	b := r.take(n)
	if b == nil {
		return model.Name{}
	}
	return model.NameFromStored(b)
}

func (r *reader) text() string {
	n := int(r.u16())
	b := r.take(n)
	if b == nil {
		return ""
	}
	return string(b)
}

func (r *reader) blob() []byte {
	n := int(r.u16())
	if n == 0 {
		return nil
	}
	b := r.take(n)
	if b == nil {
		return nil
	}
	c := make([]byte, n)
	copy(c, b)
	return c
}

func (r *reader) id() model.ID {
	n := int(r.u16())
	b := r.take(n)
	if b == nil {
		return model.ID{}
	}
	return model.IDFromStored(b)
}

func (r *reader) names() model.Names {
	n := int(r.u16())
	ns := model.EmptyNames()
	for i := 0; i < n && r.ok(); i++ {
		ns = ns.Add(r.name())
	}
	return ns
}

func (r *reader) notifications() map[model.Notification]model.Delivery {
	n := int(r.u8())
	if n == 0 {
		return nil
	}
	prefs := make(map[model.Notification]model.Delivery, n)
	for i := 0; i < n && r.ok(); i++ {
		tag := r.u8()
		delivery := r.u8()
		if !r.ok() {
			return nil
		}
		nt, ok := model.NotificationFromTag(tag)
		if !ok {
			r.fail(fmt.Sprintf("has unknown notification tag %d", tag))
			return nil
		}
		d, ok := model.DeliveryFromTag(delivery)
		if !ok {
			r.fail(fmt.Sprintf("has unknown delivery tag %d", delivery))
			return nil
		}
		prefs[nt] = d
	}
	return prefs
}

func (r *reader) millis() []int64 {
	n := int(r.u16())
	if n == 0 {
		return nil
	}
	ts := make([]int64, 0, n)
	for i := 0; i < n && r.ok(); i++ {
		ts = append(ts, int64(r.u64()))
	}
	if !r.ok() {
		return nil
	}
	return ts
}

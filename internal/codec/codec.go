// Package codec maps entities to and from their fixed-layout binary form.
//
// One encode/decode pair exists per persisted kind. Layouts use a fixed
// field order with big-endian fixed-width integers, one-byte bools,
// length-prefixed variable fields and the fixed wire tags of
// internal/model for enums. The round-trip law is the contract: decoding
// an encoded entity reproduces every field bit-for-bit, revision counter
// included.
//
// Decoding is not pointer-free: kinds that reference other entities
// (task, poll, product) rehydrate those references through the decode
// Context, which in production is the same memoizing repository the
// transaction uses, so one transaction never ends up with two objects for
// the same key.
package codec

import (
	"github.com/trackline/trackline/internal/model"
)

// Context resolves entity references encountered while decoding. It is the
// read surface of the per-transaction repository; a test double works too.
type Context interface {
	Product(name model.Name) (*model.Product, error)
	Area(product, area model.Name) (*model.Area, error)
	Version(product, version model.Name) (*model.Version, error)
}

// EncodeUser appends the wire form of u.
func EncodeUser(u *model.User) []byte {
	w := newWriter()
	w.u32(uint32(u.Rev))
	w.name(u.Name)
	w.text(string(u.Email))
	w.blob(u.EncryptedToken)
	w.u64(uint64(u.TokenExpires))
	w.u32(uint32(u.Authenticated))
	w.notifications(u.Notifications)
	w.names(u.Sites)
	w.u64(uint64(u.LastActive))
	w.u32(uint32(u.XP))
	w.u32(uint32(u.Absolved))
	w.u32(uint32(u.Resolved))
	w.u32(uint32(u.Dissolved))
	w.u32(uint32(u.ReportedToday))
	w.u64(uint64(u.MillisReported))
	w.u32(uint32(u.EmphasizedToday))
	w.u64(uint64(u.MillisEmphasized))
	return w.bytes()
}

// DecodeUser reads the wire form of a user. The mem-only plaintext token
// is never part of it.
func DecodeUser(_ Context, data []byte) (*model.User, error) {
	r := newReader(KindUser, data)
	u := &model.User{}
	u.Rev = int32(r.u32())
	u.Name = r.name()
	u.Email = model.Email(r.text())
	u.EncryptedToken = r.blob()
	u.TokenExpires = int64(r.u64())
	u.Authenticated = int32(r.u32())
	u.Notifications = r.notifications()
	u.Sites = r.names()
	u.LastActive = int64(r.u64())
	u.XP = int32(r.u32())
	u.Absolved = int32(r.u32())
	u.Resolved = int32(r.u32())
	u.Dissolved = int32(r.u32())
	u.ReportedToday = int32(r.u32())
	u.MillisReported = int64(r.u64())
	u.EmphasizedToday = int32(r.u32())
	u.MillisEmphasized = int64(r.u64())
	if err := r.finish(); err != nil {
		return nil, err
	}
	return u, nil
}

// EncodeProduct writes only the product's own fields; the implicit
// origin/somewhere/somewhen children are entities of their own and are
// re-resolved on decode.
func EncodeProduct(p *model.Product) []byte {
	w := newWriter()
	w.u32(uint32(p.Rev))
	w.name(p.Name)
	w.u32(uint32(p.Tasks))
	w.u32(uint32(p.UnconfirmedTasks))
	return w.bytes()
}

// DecodeProduct rehydrates the implicit children through ctx.
func DecodeProduct(ctx Context, data []byte) (*model.Product, error) {
	r := newReader(KindProduct, data)
	p := &model.Product{}
	p.Rev = int32(r.u32())
	p.Name = r.name()
	p.Tasks = int32(r.u32())
	p.UnconfirmedTasks = int32(r.u32())
	if err := r.finish(); err != nil {
		return nil, err
	}
	var err error
	if p.Origin, err = ctx.Area(p.Name, model.Origin); err != nil {
		return nil, err
	}
	if p.Somewhere, err = ctx.Area(p.Name, model.Unknown); err != nil {
		return nil, err
	}
	if p.Somewhen, err = ctx.Version(p.Name, model.Unknown); err != nil {
		return nil, err
	}
	return p, nil
}

// EncodeArea appends the wire form of a.
func EncodeArea(a *model.Area) []byte {
	w := newWriter()
	w.u32(uint32(a.Rev))
	w.name(a.Product)
	w.name(a.Name)
	w.name(a.Basis)
	w.names(a.Maintainers)
	w.bool(a.Exclusive)
	w.u32(uint32(a.Polls))
	return w.bytes()
}

// DecodeArea reads the wire form of an area.
func DecodeArea(_ Context, data []byte) (*model.Area, error) {
	r := newReader(KindArea, data)
	a := &model.Area{}
	a.Rev = int32(r.u32())
	a.Product = r.name()
	a.Name = r.name()
	a.Basis = r.name()
	a.Maintainers = r.names()
	a.Exclusive = r.bool()
	a.Polls = model.IDN(r.u32())
	if err := r.finish(); err != nil {
		return nil, err
	}
	return a, nil
}

// EncodeVersion appends the wire form of v.
func EncodeVersion(v *model.Version) []byte {
	w := newWriter()
	w.u32(uint32(v.Rev))
	w.name(v.Product)
	w.name(v.Name)
	w.names(v.Changeset)
	return w.bytes()
}

// DecodeVersion reads the wire form of a version.
func DecodeVersion(_ Context, data []byte) (*model.Version, error) {
	r := newReader(KindVersion, data)
	v := &model.Version{}
	v.Rev = int32(r.u32())
	v.Product = r.name()
	v.Name = r.name()
	v.Changeset = r.names()
	if err := r.finish(); err != nil {
		return nil, err
	}
	return v, nil
}

// EncodeTask stores references to product, area and version as names; the
// objects are rehydrated through the decode Context.
func EncodeTask(t *model.Task) []byte {
	w := newWriter()
	w.u32(uint32(t.Rev))
	w.name(t.Product.Name)
	w.u32(uint32(t.Serial))
	w.text(string(t.Gist))
	w.u8(uint8(t.Motive))
	w.u8(uint8(t.Purpose))
	w.u8(uint8(t.Status))
	w.bool(t.Exploitable)
	w.bool(t.Confirmed)
	w.name(t.Reporter)
	w.name(t.Solver)
	w.text(string(t.Conclusion))
	w.u64(uint64(t.Start))
	w.u64(uint64(t.End))
	w.name(t.Area.Name)
	w.name(t.Version.Name)
	w.names(t.Changeset)
	w.u32(uint32(t.Cause))
	w.u32(uint32(t.Origin))
	w.names(t.Marked)
	w.names(t.Started)
	w.millis(t.Heat)
	return w.bytes()
}

// DecodeTask rehydrates the referenced product, area and version via ctx.
func DecodeTask(ctx Context, data []byte) (*model.Task, error) {
	r := newReader(KindTask, data)
	t := &model.Task{}
	t.Rev = int32(r.u32())
	product := r.name()
	t.Serial = model.IDN(r.u32())
	t.Gist = model.Gist(r.text())
	motive := r.u8()
	purpose := r.u8()
	status := r.u8()
	t.Exploitable = r.bool()
	t.Confirmed = r.bool()
	t.Reporter = r.name()
	t.Solver = r.name()
	t.Conclusion = model.Gist(r.text())
	t.Start = int64(r.u64())
	t.End = int64(r.u64())
	area := r.name()
	version := r.name()
	t.Changeset = r.names()
	t.Cause = model.IDN(r.u32())
	t.Origin = model.IDN(r.u32())
	t.Marked = r.names()
	t.Started = r.names()
	t.Heat = r.millis()
	if err := r.finish(); err != nil {
		return nil, err
	}
	var ok bool
	if t.Motive, ok = model.MotiveFromTag(motive); !ok {
		return nil, tagError(KindTask, "motive", motive)
	}
	if t.Purpose, ok = model.PurposeFromTag(purpose); !ok {
		return nil, tagError(KindTask, "purpose", purpose)
	}
	if t.Status, ok = model.StatusFromTag(status); !ok {
		return nil, tagError(KindTask, "status", status)
	}
	var err error
	if t.Product, err = ctx.Product(product); err != nil {
		return nil, err
	}
	if t.Area, err = ctx.Area(product, area); err != nil {
		return nil, err
	}
	if t.Version, err = ctx.Version(product, version); err != nil {
		return nil, err
	}
	return t, nil
}

// EncodePoll appends the wire form of p; the area reference is stored as
// names and rehydrated on decode.
func EncodePoll(p *model.Poll) []byte {
	w := newWriter()
	w.u32(uint32(p.Rev))
	w.name(p.Area.Product)
	w.name(p.Area.Name)
	w.u32(uint32(p.Serial))
	w.u8(uint8(p.Matter))
	w.name(p.Initiator)
	w.name(p.Affected)
	w.names(p.Consenting)
	w.names(p.Dissenting)
	w.u64(uint64(p.Start))
	w.u64(uint64(p.End))
	return w.bytes()
}

// DecodePoll rehydrates the referenced area via ctx.
func DecodePoll(ctx Context, data []byte) (*model.Poll, error) {
	r := newReader(KindPoll, data)
	p := &model.Poll{}
	p.Rev = int32(r.u32())
	product := r.name()
	area := r.name()
	p.Serial = model.IDN(r.u32())
	matter := r.u8()
	p.Initiator = r.name()
	p.Affected = r.name()
	p.Consenting = r.names()
	p.Dissenting = r.names()
	p.Start = int64(r.u64())
	p.End = int64(r.u64())
	if err := r.finish(); err != nil {
		return nil, err
	}
	var ok bool
	if p.Matter, ok = model.MatterFromTag(matter); !ok {
		return nil, tagError(KindPoll, "matter", matter)
	}
	var err error
	if p.Area, err = ctx.Area(product, area); err != nil {
		return nil, err
	}
	return p, nil
}

// EncodeSite appends the wire form of s.
func EncodeSite(s *model.Site) []byte {
	w := newWriter()
	w.u32(uint32(s.Rev))
	w.name(s.Owner)
	w.name(s.Name)
	w.text(string(s.Template))
	return w.bytes()
}

// DecodeSite reads the wire form of a site.
func DecodeSite(_ Context, data []byte) (*model.Site, error) {
	r := newReader(KindSite, data)
	s := &model.Site{}
	s.Rev = int32(r.u32())
	s.Owner = r.name()
	s.Name = r.name()
	s.Template = model.Template(r.text())
	if err := r.finish(); err != nil {
		return nil, err
	}
	return s, nil
}

// EncodeEvent appends the wire form of e.
func EncodeEvent(e *model.Event) []byte {
	w := newWriter()
	w.u64(uint64(e.Timestamp))
	w.id(e.Originator)
	w.u16(uint16(len(e.Transitions)))
	for _, tr := range e.Transitions {
		w.id(tr.Entity)
		w.u8(uint8(len(tr.Ops)))
		for _, op := range tr.Ops {
			w.u8(uint8(op))
		}
	}
	return w.bytes()
}

// DecodeEvent reads the wire form of an event.
func DecodeEvent(data []byte) (*model.Event, error) {
	r := newReader(KindEvent, data)
	e := &model.Event{}
	e.Timestamp = int64(r.u64())
	e.Originator = r.id()
	n := int(r.u16())
	for i := 0; i < n && r.ok(); i++ {
		tr := model.Transition{Entity: r.id()}
		ops := int(r.u8())
		for j := 0; j < ops && r.ok(); j++ {
			tag := r.u8()
			op, valid := model.OperationFromTag(tag)
			if !valid {
				return nil, tagError(KindEvent, "operation", tag)
			}
			tr.Ops = append(tr.Ops, op)
		}
		e.Transitions = append(e.Transitions, tr)
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return e, nil
}

// EncodeHistory appends the wire form of h.
func EncodeHistory(h *model.History) []byte {
	w := newWriter()
	w.id(h.Subject)
	w.millis(h.Events)
	return w.bytes()
}

// DecodeHistory reads the wire form of a history record.
func DecodeHistory(data []byte) (*model.History, error) {
	r := newReader(KindHistory, data)
	h := &model.History{}
	h.Subject = r.id()
	h.Events = r.millis()
	if err := r.finish(); err != nil {
		return nil, err
	}
	return h, nil
}

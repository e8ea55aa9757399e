package codec

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackline/trackline/internal/model"
)

// graph is a hand-built entity graph acting as the decode Context.
type graph struct {
	products map[string]*model.Product
	areas    map[string]*model.Area
	versions map[string]*model.Version
}

func (g *graph) Product(name model.Name) (*model.Product, error) {
	if p, ok := g.products[name.String()]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("no product %s", name.String())
}

func (g *graph) Area(product, area model.Name) (*model.Area, error) {
	if a, ok := g.areas[product.String()+":"+area.String()]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("no area %s:%s", product.String(), area.String())
}

func (g *graph) Version(product, version model.Name) (*model.Version, error) {
	if v, ok := g.versions[product.String()+":"+version.String()]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("no version %s:%s", product.String(), version.String())
}

// newGraph builds a product with its implicit children plus one named area
// and version.
func newGraph() *graph {
	prod := model.MustName("prod")
	origin := &model.Area{Product: prod, Name: model.Origin,
		Maintainers: model.NamesOf(model.MustName("dev")), Exclusive: true}
	origin.Rev = 1
	somewhere := &model.Area{Product: prod, Name: model.Unknown}
	somewhere.Rev = 1
	core := &model.Area{Product: prod, Name: model.MustName("core"),
		Maintainers: model.NamesOf(model.MustName("dev"), model.MustName("ann")), Polls: 2}
	core.Rev = 3
	somewhen := &model.Version{Product: prod, Name: model.Unknown}
	somewhen.Rev = 1
	v1 := &model.Version{Product: prod, Name: model.MustName("v1")}
	v1.Rev = 2
	p := &model.Product{Name: prod, Tasks: 7, UnconfirmedTasks: 1,
		Origin: origin, Somewhere: somewhere, Somewhen: somewhen}
	p.Rev = 4
	return &graph{
		products: map[string]*model.Product{"prod": p},
		areas: map[string]*model.Area{
			"prod:*":    origin,
			"prod:~":    somewhere,
			"prod:core": core,
		},
		versions: map[string]*model.Version{
			"prod:~":  somewhen,
			"prod:v1": v1,
		},
	}
}

func TestUserRoundTrip(t *testing.T) {
	u := &model.User{
		Name:             model.MustName("dev"),
		Email:            "dev@example.com",
		EncryptedToken:   []byte{0x01, 0x02, 0xff},
		TokenExpires:     1700000000000,
		Authenticated:    3,
		Notifications:    map[model.Notification]model.Delivery{model.NotifySolved: model.Instantly, model.NotifyPolled: model.Never},
		Sites:            model.NamesOf(model.MustName("board")),
		LastActive:       1699999999999,
		XP:               42,
		Absolved:         1,
		Resolved:         2,
		Dissolved:        3,
		ReportedToday:    4,
		MillisReported:   1699999000000,
		EmphasizedToday:  5,
		MillisEmphasized: 1699998000000,
	}
	u.Rev = 9

	data := EncodeUser(u)
	got, err := DecodeUser(nil, data)
	require.NoError(t, err)
	assert.Equal(t, u, got)
	assert.Equal(t, data, EncodeUser(got), "re-encoding is byte-stable")
}

func TestUserRoundTrip_TokenIsMemOnly(t *testing.T) {
	u := &model.User{Name: model.MustName("dev"), Email: "dev@example.com", Token: []byte("plaintext")}
	u.Rev = 1
	got, err := DecodeUser(nil, EncodeUser(u))
	require.NoError(t, err)
	assert.Nil(t, got.Token, "the plaintext token never hits the wire")
}

func TestProductRoundTrip(t *testing.T) {
	g := newGraph()
	p := g.products["prod"]
	data := EncodeProduct(p)
	got, err := DecodeProduct(g, data)
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.Same(t, g.areas["prod:*"], got.Origin, "children resolve through the context")
	assert.Equal(t, data, EncodeProduct(got))
}

func TestAreaRoundTrip(t *testing.T) {
	a := &model.Area{
		Product:     model.MustName("prod"),
		Name:        model.MustName("core"),
		Basis:       model.MustName("api"),
		Maintainers: model.NamesOf(model.MustName("dev"), model.MustName("ann")),
		Exclusive:   true,
		Polls:       12,
	}
	a.Rev = 5
	data := EncodeArea(a)
	got, err := DecodeArea(nil, data)
	require.NoError(t, err)
	assert.Equal(t, a, got)
	assert.Equal(t, data, EncodeArea(got))
}

func TestVersionRoundTrip(t *testing.T) {
	v := &model.Version{
		Product:   model.MustName("prod"),
		Name:      model.MustName("v1"),
		Changeset: model.NamesOf(model.MustName("core"), model.MustName("api")),
	}
	v.Rev = 2
	data := EncodeVersion(v)
	got, err := DecodeVersion(nil, data)
	require.NoError(t, err)
	assert.Equal(t, v, got)
	assert.Equal(t, data, EncodeVersion(got))
}

func TestTaskRoundTrip(t *testing.T) {
	g := newGraph()
	task := &model.Task{
		Product:     g.products["prod"],
		Serial:      7,
		Gist:        model.MustGist("crash on empty input"),
		Motive:      model.Defect,
		Purpose:     model.Modification,
		Status:      model.Resolved,
		Exploitable: true,
		Confirmed:   true,
		Reporter:    model.MustName("ann"),
		Solver:      model.MustName("dev"),
		Conclusion:  model.MustGist("guarded the nil case"),
		Start:       1700000000000,
		End:         1700000600000,
		Area:        g.areas["prod:core"],
		Version:     g.versions["prod:v1"],
		Changeset:   model.NamesOf(model.MustName("core")),
		Cause:       3,
		Origin:      1,
		Marked:      model.NamesOf(model.MustName("bob")),
		Started:     model.NamesOf(model.MustName("dev")),
		Heat:        []int64{1700000100000, 1700000200000},
	}
	task.Rev = 6

	data := EncodeTask(task)
	got, err := DecodeTask(g, data)
	require.NoError(t, err)
	assert.Equal(t, task, got)
	assert.Same(t, g.areas["prod:core"], got.Area)
	assert.Equal(t, data, EncodeTask(got))
}

func TestTaskRoundTrip_Minimal(t *testing.T) {
	g := newGraph()
	task := &model.Task{
		Product:  g.products["prod"],
		Serial:   1,
		Gist:     model.MustGist("x"),
		Motive:   model.Intention,
		Purpose:  model.Clarification,
		Status:   model.Unsolved,
		Reporter: model.MustName("jan@example.com"),
		Start:    1,
		Area:     g.areas["prod:~"],
		Version:  g.versions["prod:~"],
	}
	task.Rev = 1
	got, err := DecodeTask(g, EncodeTask(task))
	require.NoError(t, err)
	assert.Equal(t, task, got)
}

func TestPollRoundTrip(t *testing.T) {
	g := newGraph()
	p := &model.Poll{
		Area:       g.areas["prod:core"],
		Serial:     2,
		Matter:     model.Resignation,
		Initiator:  model.MustName("dev"),
		Affected:   model.MustName("ann"),
		Consenting: model.NamesOf(model.MustName("dev")),
		Dissenting: model.EmptyNames(),
		Start:      1700000000000,
		End:        1700000300000,
	}
	p.Rev = 3
	data := EncodePoll(p)
	got, err := DecodePoll(g, data)
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.Equal(t, data, EncodePoll(got))
}

func TestSiteRoundTrip(t *testing.T) {
	s := &model.Site{
		Owner:    model.MustName("dev"),
		Name:     model.MustName("board"),
		Template: "# My board\n",
	}
	s.Rev = 2
	got, err := DecodeSite(nil, EncodeSite(s))
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestEventRoundTrip(t *testing.T) {
	e := &model.Event{
		Timestamp:  1700000000000,
		Originator: model.UserID(model.MustName("dev")),
		Transitions: []model.Transition{
			{Entity: model.UserID(model.MustName("dev")), Ops: []model.Operation{model.OpRegister}},
			{Entity: model.TaskID(model.MustName("prod"), 1), Ops: []model.Operation{model.OpPropose, model.OpMark}},
		},
	}
	data := EncodeEvent(e)
	got, err := DecodeEvent(data)
	require.NoError(t, err)
	assert.Equal(t, e, got)
	assert.Equal(t, data, EncodeEvent(got))
}

func TestHistoryRoundTrip(t *testing.T) {
	h := &model.History{
		Subject: model.TaskID(model.MustName("prod"), 1),
		Events:  []int64{1, 2, 1700000000000},
	}
	got, err := DecodeHistory(EncodeHistory(h))
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	u := &model.User{Name: model.MustName("dev"), Email: "dev@example.com"}
	u.Rev = 1
	data := append(EncodeUser(u), 0x00)
	_, err := DecodeUser(nil, data)
	require.Error(t, err)
	assert.True(t, IsCodecError(err))
	assert.Contains(t, err.Error(), "trailing")
}

func TestDecodeRejectsTruncation(t *testing.T) {
	u := &model.User{Name: model.MustName("dev"), Email: "dev@example.com"}
	u.Rev = 1
	data := EncodeUser(u)
	for _, cut := range []int{0, 1, 4, len(data) / 2, len(data) - 1} {
		_, err := DecodeUser(nil, data[:cut])
		assert.Error(t, err, "truncation at %d should fail", cut)
		assert.True(t, IsCodecError(err))
	}
}

func TestDecodeRejectsUnknownEnumTag(t *testing.T) {
	g := newGraph()
	task := &model.Task{
		Product:  g.products["prod"],
		Serial:   1,
		Gist:     model.MustGist("x"),
		Motive:   model.Defect,
		Purpose:  model.Modification,
		Status:   model.Unsolved,
		Reporter: model.MustName("dev"),
		Area:     g.areas["prod:~"],
		Version:  g.versions["prod:~"],
	}
	task.Rev = 1
	data := EncodeTask(task)

	// the motive tag sits right after rev(4), name len(1)+4 and serial(4)
	corrupt := append([]byte{}, data...)
	motiveAt := 4 + 1 + 4 + 4 + 2 + 1 // + gist len prefix and "x"
	corrupt[motiveAt] = 99
	_, err := DecodeTask(g, corrupt)
	require.Error(t, err)
	assert.True(t, IsCodecError(err))
}

func TestDecodeRejectsMalformedBool(t *testing.T) {
	a := &model.Area{Product: model.MustName("prod"), Name: model.MustName("core")}
	a.Rev = 1
	data := EncodeArea(a)
	// exclusive is the second-to-last field, before the 4-byte poll counter
	data[len(data)-5] = 2
	_, err := DecodeArea(nil, data)
	require.Error(t, err)
	assert.True(t, IsCodecError(err))
}

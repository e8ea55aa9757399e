package engine

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackline/trackline/internal/codec"
	"github.com/trackline/trackline/internal/model"
	"github.com/trackline/trackline/internal/store"
	"github.com/trackline/trackline/internal/testutil"
)

func openStore(t *testing.T) store.DB {
	t.Helper()
	db, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func apply(t *testing.T, db store.DB, clock *testutil.WallClock, change Change) *Changelog {
	t.Helper()
	log, err := Run(db, change, clock.Now, NewLimits())
	require.NoError(t, err)
	return log
}

// signUp registers and confirms an account, pulling the one-time token out
// of the register changelog the way a mail hand-off would.
func signUp(t *testing.T, db store.DB, clock *testutil.WallClock, name, email string) {
	t.Helper()
	log := apply(t, db, clock, Register(model.MustName(name), model.Email(email)))
	token := log.Entries[0].After.(*model.User).Token
	require.NotEmpty(t, token)
	apply(t, db, clock, Confirm(model.MustName(name), token))
}

func readEvents(t *testing.T, db store.DB) []*model.Event {
	t.Helper()
	r, err := db.Read()
	require.NoError(t, err)
	defer r.Close()

	prefix := model.EventScanPrefix().Bytes()
	var events []*model.Event
	err = r.Range(prefix, func(key, value []byte) bool {
		if !bytes.HasPrefix(key, prefix) {
			return false
		}
		e, err := codec.DecodeEvent(value)
		require.NoError(t, err)
		events = append(events, e)
		return true
	})
	require.NoError(t, err)
	return events
}

func TestRun_RegisterThenConfirm(t *testing.T) {
	db := openStore(t)
	clock := testutil.NewWallClock(1000)

	log := apply(t, db, clock, Register(model.MustName("dev"), "dev@example.com"))
	assert.Equal(t, int64(1000), log.Timestamp)
	assert.Equal(t, "u:dev", log.Originator.String())
	require.Len(t, log.Entries, 1)
	assert.True(t, log.Entries[0].Created())
	token := log.Entries[0].After.(*model.User).Token

	log = apply(t, db, clock, Confirm(model.MustName("dev"), token))
	assert.Equal(t, int64(1001), log.Timestamp, "the clock stood still, the event key still advanced")
	confirmed := log.Entries[0].After.(*model.User)
	assert.True(t, confirmed.IsAuthenticated())
	assert.Nil(t, confirmed.Token, "the stored snapshot has no plaintext token")
}

func TestRun_ScenarioPersistsTheGraph(t *testing.T) {
	db := openStore(t)
	clock := testutil.NewWallClock(1000)

	signUp(t, db, clock, "dev", "dev@example.com")
	apply(t, db, clock, Constitute(model.MustName("prod"), model.MustName("dev")))
	apply(t, db, clock, Compart(model.MustName("prod"), model.MustName("core"), model.MustName("dev")))
	log := apply(t, db, clock, Propose(model.MustName("prod"), model.MustGist("first task"), model.MustName("dev"), model.Name{}))

	assert.Equal(t, "u:dev", log.Originator.String(), "reports put the acting user first")
	require.Len(t, log.Entries, 3)
	task := log.Entries[2].After.(*model.Task)
	assert.Equal(t, model.IDN(1), task.Serial)
	assert.True(t, task.Confirmed)

	r, err := db.Read()
	require.NoError(t, err)
	defer r.Close()
	dao := NewDAO(r)

	p, err := dao.Product(model.MustName("prod"))
	require.NoError(t, err)
	assert.Equal(t, int32(1), p.Tasks)
	assert.True(t, p.Origin.IsMaintainer(model.MustName("dev")))

	stored, err := dao.Task(model.MustName("prod"), 1)
	require.NoError(t, err)
	assert.Equal(t, model.MustGist("first task"), stored.Gist)
	assert.Same(t, p, stored.Product, "the memoizing DAO hands out one product snapshot")

	var serials []model.IDN
	require.NoError(t, dao.Tasks(model.MustName("prod"), func(task *model.Task) bool {
		serials = append(serials, task.Serial)
		return true
	}))
	assert.Equal(t, []model.IDN{1}, serials)
}

func TestRun_AndComposesOneTransaction(t *testing.T) {
	db := openStore(t)
	clock := testutil.NewWallClock(1000)
	signUp(t, db, clock, "dev", "dev@example.com")
	apply(t, db, clock, Constitute(model.MustName("prod"), model.MustName("dev")))

	before := len(readEvents(t, db))
	log := apply(t, db, clock,
		Propose(model.MustName("prod"), model.MustGist("one"), model.MustName("dev"), model.Name{}).
			And(Propose(model.MustName("prod"), model.MustGist("two"), model.MustName("dev"), model.Name{})))

	assert.Len(t, readEvents(t, db), before+1, "a composed change commits as one event")
	require.Len(t, log.Entries, 4, "user and product merge, the two tasks do not")
	assert.Equal(t, []model.Operation{model.OpPropose, model.OpPropose}, log.Entries[0].Ops)
	assert.Equal(t, model.IDN(2), log.Entries[3].After.(*model.Task).Serial)
}

func TestRun_FailingPartAbortsTheWhole(t *testing.T) {
	db := openStore(t)
	clock := testutil.NewWallClock(1000)
	signUp(t, db, clock, "dev", "dev@example.com")
	apply(t, db, clock, Constitute(model.MustName("prod"), model.MustName("dev")))
	events := len(readEvents(t, db))

	_, err := Run(db,
		Propose(model.MustName("prod"), model.MustGist("one"), model.MustName("dev"), model.Name{}).
			And(Propose(model.MustName("nothere"), model.MustGist("two"), model.MustName("dev"), model.Name{})),
		clock.Now, NewLimits())
	require.Error(t, err)
	assert.True(t, IsUnknownEntity(err))

	r, err := db.Read()
	require.NoError(t, err)
	defer r.Close()
	dao := NewDAO(r)
	_, err = dao.Task(model.MustName("prod"), 1)
	assert.True(t, IsUnknownEntity(err), "nothing of the failed change is visible")
	assert.Len(t, readEvents(t, db), events)
}

func TestRun_EventKeysStrictlyIncrease(t *testing.T) {
	db := openStore(t)
	clock := testutil.NewWallClock(5000)
	signUp(t, db, clock, "dev", "dev@example.com")

	apply(t, db, clock, Constitute(model.MustName("one"), model.MustName("dev")))
	apply(t, db, clock, Constitute(model.MustName("two"), model.MustName("dev")))

	events := readEvents(t, db)
	require.Len(t, events, 4)
	for i := 1; i < len(events); i++ {
		assert.Greater(t, events[i].Timestamp, events[i-1].Timestamp)
	}
}

func TestRun_CompleteNoopCommitsNothing(t *testing.T) {
	db := openStore(t)
	clock := testutil.NewWallClock(1000)
	signUp(t, db, clock, "dev", "dev@example.com")
	signUp(t, db, clock, "ann", "ann@example.com")
	apply(t, db, clock, Constitute(model.MustName("prod"), model.MustName("dev")))
	events := len(readEvents(t, db))

	// ann does not maintain the origin, leaving it changes nothing
	log := apply(t, db, clock, Leave(model.MustName("prod"), model.Origin, model.MustName("ann")))
	assert.Zero(t, log.Timestamp)
	assert.Zero(t, log.ChangedCount())
	require.Len(t, log.Entries, 1)
	assert.Equal(t, []model.Operation{model.OpLeave}, log.Entries[0].Ops)
	assert.False(t, log.Entries[0].Changed())
	assert.Len(t, readEvents(t, db), events, "no event for a no-op change")
}

func TestRun_AnonymousReportAndConfirmation(t *testing.T) {
	db := openStore(t)
	clock := testutil.NewWallClock(1000)
	signUp(t, db, clock, "dev", "dev@example.com")
	apply(t, db, clock, Constitute(model.MustName("prod"), model.MustName("dev")))

	// registration rejects the anonymous-email format outright
	_, err := Run(db, Register(model.MustName("jan@example.com"), "jan@example.com"), clock.Now, NewLimits())
	assert.True(t, IsRuleViolation(err))

	// reporting under the email name creates the anonymous account instead
	log := apply(t, db, clock, Warn(model.MustName("prod"), model.MustGist("broken"),
		model.MustName("jan@example.com"), model.Name{}, model.Name{}, false))
	require.True(t, log.Entries[0].Created())
	reporter := log.Entries[0].After.(*model.User)
	assert.True(t, reporter.IsAnonymous())
	task := log.Entries[2].After.(*model.Task)
	assert.False(t, task.Confirmed)
	assert.Equal(t, int32(1), log.Entries[1].After.(*model.Product).UnconfirmedTasks)

	// a second report reuses the persisted account and its counters
	log = apply(t, db, clock, Warn(model.MustName("prod"), model.MustGist("still broken"),
		model.MustName("jan@example.com"), model.Name{}, model.Name{}, false))
	assert.False(t, log.Entries[0].Created())
	assert.Equal(t, int32(2), log.Entries[0].After.(*model.User).ReportedToday)

	log = apply(t, db, clock, ConfirmTask(model.MustName("prod"), task.Serial, model.MustName("dev")))
	assert.True(t, log.Entries[1].After.(*model.Task).Confirmed)
	assert.Equal(t, int32(1), log.Entries[0].After.(*model.Product).UnconfirmedTasks)
}

func TestRun_UnknownEntityAborts(t *testing.T) {
	db := openStore(t)
	clock := testutil.NewWallClock(1000)
	signUp(t, db, clock, "dev", "dev@example.com")

	_, err := Run(db, Propose(model.MustName("ghost"), model.MustGist("x"), model.MustName("dev"), model.Name{}), clock.Now, NewLimits())
	require.Error(t, err)
	var unknown *UnknownEntity
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "p:ghost", unknown.ID.String())
}

func TestRun_HistoryFollowsEveryChange(t *testing.T) {
	db := openStore(t)
	clock := testutil.NewWallClock(1000)
	signUp(t, db, clock, "dev", "dev@example.com")

	r, err := db.Read()
	require.NoError(t, err)
	defer r.Close()
	dao := NewDAO(r)
	h, err := dao.History(model.UserID(model.MustName("dev")))
	require.NoError(t, err)
	assert.Equal(t, []int64{1000, 1001}, h.Events, "register and confirm both appended")
}

// TestRun_GoldenEventStream pins the whole committed event stream of a
// small scenario, rendered the way the CLI prints it.
func TestRun_GoldenEventStream(t *testing.T) {
	db := openStore(t)
	clock := testutil.NewWallClock(1000)

	signUp(t, db, clock, "dev", "dev@example.com")
	apply(t, db, clock, Constitute(model.MustName("prod"), model.MustName("dev")))
	apply(t, db, clock, Compart(model.MustName("prod"), model.MustName("core"), model.MustName("dev")))
	apply(t, db, clock, Propose(model.MustName("prod"), model.MustGist("first task"), model.MustName("dev"), model.Name{}))

	var b strings.Builder
	for _, e := range readEvents(t, db) {
		fmt.Fprintf(&b, "%d originator=%s\n", e.Timestamp, e.Originator.String())
		for _, tr := range e.Transitions {
			ops := make([]string, len(tr.Ops))
			for i, op := range tr.Ops {
				ops[i] = op.String()
			}
			fmt.Fprintf(&b, "  %s %s\n", tr.Entity.String(), strings.Join(ops, ","))
		}
	}

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "scenario_events", []byte(b.String()))
}

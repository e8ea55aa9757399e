package model

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_KeyForms(t *testing.T) {
	prod := MustName("prod")
	assert.Equal(t, "u:dev", UserID(MustName("dev")).String())
	assert.Equal(t, "p:prod", ProductID(prod).String())
	assert.Equal(t, "a:prod:core", AreaID(prod, MustName("core")).String())
	assert.Equal(t, "a:prod:*", AreaID(prod, Origin).String())
	assert.Equal(t, "v:prod:~", VersionID(prod, Unknown).String())
	assert.Equal(t, "t:prod:00000042", TaskID(prod, 42).String())
	assert.Equal(t, "q:prod:core:00000001", PollID(prod, MustName("core"), 1).String())
	assert.Equal(t, "s:dev:board", SiteID(MustName("dev"), MustName("board")).String())
}

func TestID_TaskSerialOrder(t *testing.T) {
	prod := MustName("prod")
	// zero-padded serials keep byte order equal to numeric order
	assert.Negative(t, bytes.Compare(TaskID(prod, 9).Bytes(), TaskID(prod, 10).Bytes()))
	assert.Negative(t, bytes.Compare(TaskID(prod, 99).Bytes(), TaskID(prod, 100).Bytes()))

	prefix := TaskScanPrefix(prod).Bytes()
	assert.True(t, bytes.HasPrefix(TaskID(prod, 1).Bytes(), prefix))
	assert.False(t, bytes.HasPrefix(TaskID(MustName("prodz"), 1).Bytes(), prefix))
}

func TestID_EventKey(t *testing.T) {
	id := EventID(1700000000000)
	assert.Equal(t, KindEvent, id.Kind())
	assert.Equal(t, "e:1700000000000", id.String())

	ts, err := id.EventTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), ts)

	// byte order is chronological order
	assert.Negative(t, bytes.Compare(EventID(1).Bytes(), EventID(2).Bytes()))
	assert.Negative(t, bytes.Compare(EventID(255).Bytes(), EventID(256).Bytes()))

	_, err = UserID(MustName("dev")).EventTimestamp()
	assert.Error(t, err)
}

func TestID_HistoryKey(t *testing.T) {
	subject := TaskID(MustName("prod"), 7)
	id := HistoryID(subject)
	assert.Equal(t, KindHistory, id.Kind())
	assert.Equal(t, "h:t:prod:00000007", id.String())
}

func TestID_ParseRoundTrip(t *testing.T) {
	for _, id := range []ID{
		UserID(MustName("dev")),
		ProductID(MustName("prod")),
		AreaID(MustName("prod"), MustName("core")),
		VersionID(MustName("prod"), MustName("v1")),
		TaskID(MustName("prod"), 42),
		PollID(MustName("prod"), MustName("core"), 3),
		SiteID(MustName("dev"), MustName("board")),
		EventID(123456789),
		HistoryID(TaskID(MustName("prod"), 42)),
	} {
		parsed, err := ParseID(id.String())
		require.NoError(t, err, "id %s should parse", id.String())
		assert.True(t, parsed.EqualTo(id), "id %s should round-trip", id.String())
	}
}

func TestID_ParseRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "u", "u:", "x:dev", "e:notanumber", "h:"} {
		_, err := ParseID(s)
		assert.Error(t, err, "id %q should be rejected", s)
	}
}

func TestID_FromStoredCopies(t *testing.T) {
	raw := []byte("u:dev")
	id := IDFromStored(raw)
	raw[0] = 'p'
	assert.Equal(t, "u:dev", id.String(), "stored id should not alias the input")
}

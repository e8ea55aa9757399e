package store

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) DB {
	t.Helper()
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func eventKey(ts uint64) []byte {
	key := []byte("e:")
	return binary.BigEndian.AppendUint64(key, ts)
}

func TestStore_PutGet(t *testing.T) {
	db := openTemp(t)

	w, err := db.Write()
	require.NoError(t, err)
	require.NoError(t, w.Put([]byte("u:dev"), []byte("payload")))
	require.NoError(t, w.Commit())

	r, err := db.Read()
	require.NoError(t, err)
	defer r.Close()

	value, err := r.Get([]byte("u:dev"))
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), value)

	_, err = r.Get([]byte("u:nobody"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_AbortDiscards(t *testing.T) {
	db := openTemp(t)

	w, err := db.Write()
	require.NoError(t, err)
	require.NoError(t, w.Put([]byte("u:dev"), []byte("payload")))
	w.Abort()

	r, err := db.Read()
	require.NoError(t, err)
	defer r.Close()
	_, err = r.Get([]byte("u:dev"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ReadSnapshotIsolation(t *testing.T) {
	db := openTemp(t)

	r, err := db.Read()
	require.NoError(t, err)
	defer r.Close()

	w, err := db.Write()
	require.NoError(t, err)
	require.NoError(t, w.Put([]byte("u:dev"), []byte("payload")))
	require.NoError(t, w.Commit())

	// the old snapshot does not see the commit
	_, err = r.Get([]byte("u:dev"))
	assert.ErrorIs(t, err, ErrNotFound)

	r2, err := db.Read()
	require.NoError(t, err)
	defer r2.Close()
	_, err = r2.Get([]byte("u:dev"))
	assert.NoError(t, err)
}

func TestStore_RangeAscendingWithEarlyStop(t *testing.T) {
	db := openTemp(t)

	w, err := db.Write()
	require.NoError(t, err)
	for _, key := range []string{"t:prod:00000003", "t:prod:00000001", "t:prodz:00000001", "t:prod:00000002", "p:prod"} {
		require.NoError(t, w.Put([]byte(key), []byte(key)))
	}
	require.NoError(t, w.Commit())

	r, err := db.Read()
	require.NoError(t, err)
	defer r.Close()

	var keys []string
	err = r.Range([]byte("t:prod:"), func(key, value []byte) bool {
		if string(key) >= "t:prodz" {
			return false
		}
		keys = append(keys, string(key))
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"t:prod:00000001", "t:prod:00000002", "t:prod:00000003"}, keys)
}

func TestStore_SingleWriter(t *testing.T) {
	db := openTemp(t)

	w1, err := db.Write()
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		w2, err := db.Write()
		assert.NoError(t, err)
		w2.Abort()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second writer should block while the first is open")
	case <-time.After(50 * time.Millisecond):
	}

	w1.Abort()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second writer should proceed after the first aborts")
	}
}

func TestStore_WriteCloseIsAbort(t *testing.T) {
	db := openTemp(t)

	w, err := db.Write()
	require.NoError(t, err)
	require.NoError(t, w.Put([]byte("k"), []byte("v")))
	w.Close()

	// the write lock is released and the put is gone
	w2, err := db.Write()
	require.NoError(t, err)
	_, err = w2.Get([]byte("k"))
	assert.ErrorIs(t, err, ErrNotFound)
	w2.Abort()
}

func TestStore_LastEventKeySurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	require.NoError(t, err)

	assert.Nil(t, db.LastEventKey(), "fresh store has no event key")

	w, err := db.Write()
	require.NoError(t, err)
	require.NoError(t, w.Put(eventKey(100), []byte("ev1")))
	require.NoError(t, w.Put(eventKey(250), []byte("ev2")))
	require.NoError(t, w.Put([]byte("u:dev"), []byte("not an event")))
	require.NoError(t, w.Commit())
	db.RecordEventKey(eventKey(250))
	assert.Equal(t, eventKey(250), db.LastEventKey())
	require.NoError(t, db.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, eventKey(250), reopened.LastEventKey(), "the highest event key is re-seeded on open")
}

package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "state", "ledger.db")

	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s, path
}

func TestStore_RecordAndSeen(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	seen, err := s.Seen(ctx, "aForm", "00ff")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, s.Record(ctx, Entry{
		FormUID:     "aForm",
		Fingerprint: "00ff",
		InstanceID:  "uuid:1",
		Row:         2,
		SubmittedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}))

	seen, err = s.Seen(ctx, "aForm", "00ff")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = s.Seen(ctx, "otherForm", "00ff")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestStore_RecordReplaces(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Record(ctx, Entry{FormUID: "f", Fingerprint: "a", InstanceID: "uuid:1", Row: 2, SubmittedAt: t0}))
	require.NoError(t, s.Record(ctx, Entry{FormUID: "f", Fingerprint: "b", InstanceID: "uuid:2", Row: 3, SubmittedAt: t0.Add(time.Minute)}))
	require.NoError(t, s.Record(ctx, Entry{FormUID: "f", Fingerprint: "a", InstanceID: "uuid:3", Row: 2, Attachment: "p.jpg", SubmittedAt: t0.Add(time.Hour)}))

	entries, err := s.List(ctx, "f")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "b", entries[0].Fingerprint)
	assert.Equal(t, "a", entries[1].Fingerprint)
	assert.Equal(t, "uuid:3", entries[1].InstanceID)
	assert.Equal(t, "p.jpg", entries[1].Attachment)
	assert.True(t, entries[1].SubmittedAt.Equal(t0.Add(time.Hour)))
}

func TestStore_Persists(t *testing.T) {
	s, path := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, Entry{FormUID: "f", Fingerprint: "x", InstanceID: "uuid:9", Row: 5}))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	seen, err := reopened.Seen(ctx, "f", "x")
	require.NoError(t, err)
	assert.True(t, seen)
}

package local

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xmhha/skill-tracker/pkg/kvstore"
	"github.com/0xmhha/skill-tracker/pkg/logger"
	"github.com/0xmhha/skill-tracker/pkg/model"
	"github.com/0xmhha/skill-tracker/pkg/store"
	"github.com/0xmhha/skill-tracker/pkg/store/storetest"
)

var testNow = time.Date(2024, time.June, 14, 12, 0, 0, 0, time.UTC)

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string { return strconv.FormatInt(n.Add(1), 10) }
}

func newStore(t *testing.T, kv kvstore.Store) *Store {
	t.Helper()

	s, err := New(Config{
		KV:    kv,
		Now:   func() time.Time { return testNow },
		NewID: sequentialIDs(),
	}, logger.Noop())
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestConformanceMemory(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.DataStore {
		return newStore(t, kvstore.NewMemory())
	})
}

func TestConformanceBolt(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.DataStore {
		kv, err := kvstore.New(kvstore.Config{Path: filepath.Join(t.TempDir(), "data.db")}, logger.Noop())
		require.NoError(t, err)
		return newStore(t, kv)
	})
}

func TestNewRequiresKV(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}

func TestInsertSkillFillsDefaults(t *testing.T) {
	s := newStore(t, kvstore.NewMemory())

	sk, err := s.InsertSkill(context.Background(), storetest.UserA, "  Guitar ", model.SkillSettings{})
	require.NoError(t, err)
	assert.Equal(t, "1", sk.ID)
	assert.Equal(t, "Guitar", sk.Name)
	assert.Equal(t, "2024-06-14", sk.CreatedAt.String())
	assert.Equal(t, testNow, sk.UpdatedAt)
	assert.Equal(t, model.SkillSettings{DefaultSessionDuration: 60, TargetHours: 1000}, sk.Settings)
}

func TestUnreadableDocumentsReadAsEmpty(t *testing.T) {
	kv := kvstore.NewMemory()
	require.True(t, kv.Set(keySkills, "garbage"))
	require.True(t, kv.Set(settingsKey(storetest.UserA), []int{1, 2}))

	s := newStore(t, kv)
	ctx := context.Background()

	skills, err := s.ListSkills(ctx, storetest.UserA)
	require.NoError(t, err)
	assert.Empty(t, skills)

	settings, err := s.GetSettings(ctx, storetest.UserA)
	require.NoError(t, err)
	assert.Nil(t, settings)
}

func TestWritesKeepUnreadableDocuments(t *testing.T) {
	kv := kvstore.NewMemory()
	s := newStore(t, kv)
	ctx := context.Background()

	sk, err := s.InsertSkill(ctx, storetest.UserA, "Guitar", model.SkillSettings{})
	require.NoError(t, err)
	require.True(t, kv.Set(keySessions, "garbage"))

	_, err = s.InsertSession(ctx, storetest.UserA, model.NewSession{SkillID: sk.ID, Duration: 30, Date: model.MustParseDate("2024-06-14")})
	var perr *store.PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "insert_session", perr.Op)
	assert.ErrorIs(t, err, store.ErrUnreadableDocument)

	err = s.DeleteSkill(ctx, sk.ID)
	assert.ErrorIs(t, err, store.ErrUnreadableDocument)

	var raw string
	require.True(t, kv.Get(keySessions, &raw))
	assert.Equal(t, "garbage", raw)

	// The skill survives the refused cascade.
	skills, err := s.ListSkills(ctx, storetest.UserA)
	require.NoError(t, err)
	require.Len(t, skills, 1)

	require.True(t, kv.Set(keySkills, 42))
	_, err = s.InsertSkill(ctx, storetest.UserA, "Spanish", model.SkillSettings{})
	assert.ErrorIs(t, err, store.ErrUnreadableDocument)

	var n int
	require.True(t, kv.Get(keySkills, &n))
	assert.Equal(t, 42, n)
}

// failingKV refuses every write.
type failingKV struct {
	kvstore.Store
}

func (failingKV) Set(string, any) bool { return false }

func (failingKV) SetMany(map[string]any) bool { return false }

func TestWriteFailureIsPersistenceError(t *testing.T) {
	inner := kvstore.NewMemory()
	seed := newStore(t, inner)
	sk, err := seed.InsertSkill(context.Background(), storetest.UserA, "Guitar", model.SkillSettings{})
	require.NoError(t, err)

	s := newStore(t, failingKV{Store: inner})
	ctx := context.Background()

	_, err = s.InsertSession(ctx, storetest.UserA, model.NewSession{SkillID: sk.ID, Duration: 30, Date: model.MustParseDate("2024-06-14")})
	var perr *store.PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "insert_session", perr.Op)
	assert.ErrorIs(t, err, store.ErrWriteFailed)

	err = s.DeleteSkill(ctx, sk.ID)
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "delete_skill", perr.Op)

	// Nothing changed underneath.
	skills, err := seed.ListSkills(ctx, storetest.UserA)
	require.NoError(t, err)
	assert.Len(t, skills, 1)
}

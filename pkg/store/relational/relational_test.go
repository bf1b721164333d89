package relational

import (
	"context"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xmhha/skill-tracker/pkg/logger"
	"github.com/0xmhha/skill-tracker/pkg/model"
	"github.com/0xmhha/skill-tracker/pkg/store"
	"github.com/0xmhha/skill-tracker/pkg/store/storetest"
)

var testNow = time.Date(2024, time.June, 14, 12, 0, 0, 0, time.UTC)

func openStore(t *testing.T) *Store {
	t.Helper()

	var n atomic.Int64
	s, err := Open(Config{
		Client: ClientConfig{Path: filepath.Join(t.TempDir(), "db", "skills.sqlite")},
		Now:    func() time.Time { return testNow },
		NewID:  func() string { return strconv.FormatInt(n.Add(1), 10) },
	}, logger.Noop())
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.DataStore { return openStore(t) })
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{}, nil)
	assert.ErrorIs(t, err, ErrNoPath)
}

func TestRowsAreSnakeCase(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	sk, err := s.InsertSkill(ctx, storetest.UserA, "Guitar", model.SkillSettings{DefaultSessionDuration: 90, TargetHours: 1000})
	require.NoError(t, err)

	rows, err := s.client.Select(ctx, tableSkills, Row{"id": sk.ID}, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "Guitar", row["name"])
	assert.Equal(t, storetest.UserA, row["user_id"])
	assert.EqualValues(t, 90, row["default_session_duration"])
	assert.EqualValues(t, 1000, row["target_hours"])
	assert.Equal(t, "2024-06-14", row["created_at"])
	assert.NotContains(t, row, "settings")
}

func TestSkillTransformer(t *testing.T) {
	sk := model.Skill{
		ID:        "1",
		UserID:    storetest.UserA,
		Name:      "Spanish",
		CreatedAt: model.MustParseDate("2024-05-15"),
		UpdatedAt: testNow,
		Settings:  model.SkillSettings{DefaultSessionDuration: 45, TargetHours: 500},
	}

	row := skillToRow(sk)
	assert.Equal(t, Row{
		"id":                       "1",
		"user_id":                  storetest.UserA,
		"name":                     "Spanish",
		"created_at":               "2024-05-15",
		"updated_at":               "2024-06-14T12:00:00Z",
		"default_session_duration": 45,
		"target_hours":             500,
	}, row)

	// Integers come back from the driver as int64.
	row["default_session_duration"] = int64(45)
	row["target_hours"] = int64(500)
	back, err := skillFromRow(row)
	require.NoError(t, err)
	assert.Equal(t, sk, back)
}

func TestSessionTransformer(t *testing.T) {
	s := model.Session{
		ID:       "4",
		UserID:   storetest.UserA,
		SkillID:  "1",
		Duration: 75,
		Date:     model.MustParseDate("2024-06-14"),
		Notes:    "New song practice - Wonderwall",
	}

	row := sessionToRow(s)
	assert.Equal(t, "1", row["skill_id"])
	assert.Equal(t, "2024-06-14", row["date"])

	row["notes"] = []byte(s.Notes)
	back, err := sessionFromRow(row)
	require.NoError(t, err)
	assert.Equal(t, s, back)

	_, err = sessionFromRow(Row{"date": "June 14"})
	assert.Error(t, err)
}

func TestSkillSettingsChanges(t *testing.T) {
	target := 1500
	assert.Equal(t, Row{
		"updated_at":   "2024-06-14T12:00:00Z",
		"target_hours": 1500,
	}, skillSettingsChanges(model.SkillSettingsPatch{TargetHours: &target}, testNow))
}

func TestClientRejectsUnfilteredWrites(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, err := s.client.Delete(ctx, tableSessions, nil)
	assert.ErrorIs(t, err, ErrNoFilter)

	_, err = s.client.Update(ctx, tableSkills, Row{}, Row{"name": "x"})
	assert.ErrorIs(t, err, ErrNoFilter)
}

func TestTransactionRollsBack(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	sk, err := s.InsertSkill(ctx, storetest.UserA, "Guitar", model.SkillSettings{DefaultSessionDuration: 90, TargetHours: 1000})
	require.NoError(t, err)

	err = s.client.Transaction(ctx, func(tx *Client) error {
		if _, delErr := tx.Delete(ctx, tableSkills, Row{"id": sk.ID}); delErr != nil {
			return delErr
		}
		return store.ErrNotFound
	})
	assert.ErrorIs(t, err, store.ErrNotFound)

	skills, err := s.ListSkills(ctx, storetest.UserA)
	require.NoError(t, err)
	assert.Len(t, skills, 1)
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skills.sqlite")
	ctx := context.Background()

	s1, err := Open(Config{Client: ClientConfig{Path: path}}, logger.Noop())
	require.NoError(t, err)
	_, err = s1.InsertSkill(ctx, storetest.UserA, "Guitar", model.SkillSettings{})
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(Config{Client: ClientConfig{Path: path}}, logger.Noop())
	require.NoError(t, err)
	defer s2.Close()

	skills, err := s2.ListSkills(ctx, storetest.UserA)
	require.NoError(t, err)
	require.Len(t, skills, 1)
	assert.Equal(t, model.SkillSettings{DefaultSessionDuration: 60, TargetHours: 1000}, skills[0].Settings)
}

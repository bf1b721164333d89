// Package storetest checks that a store.DataStore implementation honours
// the contract shared by every backend.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xmhha/skill-tracker/pkg/model"
	"github.com/0xmhha/skill-tracker/pkg/store"
)

// Users of the conformance run.
const (
	UserA = "0aa57eea-d614-47a2-88e1-da9ff05606c5"
	UserB = "3f8e1c2a-9b7d-4e5f-a1c3-2d4b6e8f0a1b"
)

// Opener returns an empty store. The store is closed by the caller's
// cleanup, not by Run.
type Opener func(t *testing.T) store.DataStore

// Run executes the conformance suite against stores created by open.
func Run(t *testing.T, open Opener) {
	t.Run("Empty", func(t *testing.T) { testEmpty(t, open(t)) })
	t.Run("InsertSkill", func(t *testing.T) { testInsertSkill(t, open(t)) })
	t.Run("UpdateSkillSettings", func(t *testing.T) { testUpdateSkillSettings(t, open(t)) })
	t.Run("InsertSession", func(t *testing.T) { testInsertSession(t, open(t)) })
	t.Run("DeleteSkillCascades", func(t *testing.T) { testDeleteSkillCascades(t, open(t)) })
	t.Run("Settings", func(t *testing.T) { testSettings(t, open(t)) })
	t.Run("CanceledContext", func(t *testing.T) { testCanceledContext(t, open(t)) })
}

func testEmpty(t *testing.T, s store.DataStore) {
	ctx := context.Background()

	skills, err := s.ListSkills(ctx, UserA)
	require.NoError(t, err)
	assert.Empty(t, skills)

	sessions, err := s.ListSessions(ctx, UserA)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	settings, err := s.GetSettings(ctx, UserA)
	require.NoError(t, err)
	assert.Nil(t, settings)
}

func testInsertSkill(t *testing.T, s store.DataStore) {
	ctx := context.Background()

	guitar, err := s.InsertSkill(ctx, UserA, "Guitar", model.SkillSettings{DefaultSessionDuration: 90, TargetHours: 1000})
	require.NoError(t, err)
	assert.NotEmpty(t, guitar.ID)
	assert.Equal(t, UserA, guitar.UserID)
	assert.Equal(t, "Guitar", guitar.Name)
	assert.False(t, guitar.CreatedAt.IsZero())
	assert.Equal(t, model.SkillSettings{DefaultSessionDuration: 90, TargetHours: 1000}, guitar.Settings)

	spanish, err := s.InsertSkill(ctx, UserA, "Spanish", model.SkillSettings{DefaultSessionDuration: 45, TargetHours: 500})
	require.NoError(t, err)
	assert.NotEqual(t, guitar.ID, spanish.ID)

	_, err = s.InsertSkill(ctx, UserB, "Chess", model.SkillSettings{DefaultSessionDuration: 30, TargetHours: 100})
	require.NoError(t, err)

	skills, err := s.ListSkills(ctx, UserA)
	require.NoError(t, err)
	require.Len(t, skills, 2)
	assert.ElementsMatch(t, []string{"Guitar", "Spanish"}, []string{skills[0].Name, skills[1].Name})
	for _, sk := range skills {
		if sk.ID == guitar.ID {
			assert.Equal(t, guitar.Settings, sk.Settings)
			assert.Equal(t, guitar.CreatedAt, sk.CreatedAt)
		}
	}
}

func testUpdateSkillSettings(t *testing.T, s store.DataStore) {
	ctx := context.Background()

	sk, err := s.InsertSkill(ctx, UserA, "React Development", model.SkillSettings{DefaultSessionDuration: 120, TargetHours: 2000})
	require.NoError(t, err)

	target := 1500
	updated, err := s.UpdateSkillSettings(ctx, sk.ID, model.SkillSettingsPatch{TargetHours: &target})
	require.NoError(t, err)
	assert.Equal(t, model.SkillSettings{DefaultSessionDuration: 120, TargetHours: 1500}, updated.Settings)
	assert.Equal(t, sk.Name, updated.Name)

	skills, err := s.ListSkills(ctx, UserA)
	require.NoError(t, err)
	require.Len(t, skills, 1)
	assert.Equal(t, 1500, skills[0].Settings.TargetHours)

	_, err = s.UpdateSkillSettings(ctx, "missing", model.SkillSettingsPatch{TargetHours: &target})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testInsertSession(t *testing.T, s store.DataStore) {
	ctx := context.Background()

	sk, err := s.InsertSkill(ctx, UserA, "Guitar", model.SkillSettings{DefaultSessionDuration: 90, TargetHours: 1000})
	require.NoError(t, err)

	for _, ns := range []model.NewSession{
		{SkillID: sk.ID, Duration: 120, Date: model.MustParseDate("2024-06-10"), Notes: "Practiced scales and arpeggios"},
		{SkillID: sk.ID, Duration: 75, Date: model.MustParseDate("2024-06-14"), Notes: "New song practice - Wonderwall"},
		{SkillID: sk.ID, Duration: 90, Date: model.MustParseDate("2024-06-12")},
	} {
		got, insertErr := s.InsertSession(ctx, UserA, ns)
		require.NoError(t, insertErr)
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, UserA, got.UserID)
		assert.Equal(t, ns.Duration, got.Duration)
		assert.Equal(t, ns.Date, got.Date)
		assert.Equal(t, ns.Notes, got.Notes)
	}

	sessions, err := s.ListSessions(ctx, UserA)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "2024-06-14", sessions[0].Date.String())
	assert.Equal(t, "2024-06-12", sessions[1].Date.String())
	assert.Equal(t, "2024-06-10", sessions[2].Date.String())
	assert.Equal(t, "New song practice - Wonderwall", sessions[0].Notes)

	others, err := s.ListSessions(ctx, UserB)
	require.NoError(t, err)
	assert.Empty(t, others)

	_, err = s.InsertSession(ctx, UserA, model.NewSession{SkillID: "missing", Duration: 30, Date: model.MustParseDate("2024-06-10")})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testDeleteSkillCascades(t *testing.T, s store.DataStore) {
	ctx := context.Background()

	doomed, err := s.InsertSkill(ctx, UserA, "Guitar", model.SkillSettings{DefaultSessionDuration: 90, TargetHours: 1000})
	require.NoError(t, err)
	kept, err := s.InsertSkill(ctx, UserA, "Spanish", model.SkillSettings{DefaultSessionDuration: 45, TargetHours: 500})
	require.NoError(t, err)

	for _, date := range []string{"2024-06-10", "2024-06-12", "2024-06-14"} {
		_, err = s.InsertSession(ctx, UserA, model.NewSession{SkillID: doomed.ID, Duration: 60, Date: model.MustParseDate(date)})
		require.NoError(t, err)
	}
	keptSession, err := s.InsertSession(ctx, UserA, model.NewSession{SkillID: kept.ID, Duration: 45, Date: model.MustParseDate("2024-06-14")})
	require.NoError(t, err)

	require.NoError(t, s.DeleteSkill(ctx, doomed.ID))

	skills, err := s.ListSkills(ctx, UserA)
	require.NoError(t, err)
	require.Len(t, skills, 1)
	assert.Equal(t, kept.ID, skills[0].ID)

	sessions, err := s.ListSessions(ctx, UserA)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, keptSession.ID, sessions[0].ID)

	err = s.DeleteSkill(ctx, doomed.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testSettings(t *testing.T, s store.DataStore) {
	ctx := context.Background()

	dark := model.ThemeDark
	got, err := s.UpdateSettings(ctx, UserA, model.SettingsPatch{Theme: &dark})
	require.NoError(t, err)
	assert.Equal(t, model.Settings{Theme: model.ThemeDark, DefaultSessionDuration: 60}, got)

	thirty := 30
	got, err = s.UpdateSettings(ctx, UserA, model.SettingsPatch{DefaultSessionDuration: &thirty})
	require.NoError(t, err)
	assert.Equal(t, model.Settings{Theme: model.ThemeDark, DefaultSessionDuration: 30}, got)

	stored, err := s.GetSettings(ctx, UserA)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, got, *stored)

	other, err := s.GetSettings(ctx, UserB)
	require.NoError(t, err)
	assert.Nil(t, other)
}

func testCanceledContext(t *testing.T, s store.DataStore) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ListSkills(ctx, UserA)
	require.Error(t, err)

	var perr *store.PersistenceError
	assert.True(t, errors.As(err, &perr))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.InsertSkill(ctx, UserA, "Guitar", model.SkillSettings{DefaultSessionDuration: 90, TargetHours: 1000})
	assert.ErrorIs(t, err, context.Canceled)
}

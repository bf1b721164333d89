package reconcile

import (
	"context"
	"errors"
	"maps"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xmhha/skill-tracker/pkg/logger"
	"github.com/0xmhha/skill-tracker/pkg/model"
	"github.com/0xmhha/skill-tracker/pkg/validation"
)

// fakeStore records commits and returns the merged record.
type fakeStore struct {
	mu      sync.Mutex
	record  validation.Form
	commits []validation.Form
	err     error
}

func (s *fakeStore) persist(_ context.Context, changes validation.Form) (validation.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	s.commits = append(s.commits, maps.Clone(changes))
	maps.Copy(s.record, changes)
	return maps.Clone(s.record), nil
}

func settingsForm(theme string, duration string) validation.Form {
	return validation.Form{
		model.FieldTheme:                  theme,
		model.FieldDefaultSessionDuration: duration,
	}
}

func setupReconciler(t *testing.T, store *fakeStore) *Reconciler {
	t.Helper()

	r, err := New(Config{
		Schema:        validation.SettingsSchema,
		Authoritative: maps.Clone(store.record),
		Defaults:      settingsForm("system", "60"),
		Persist:       store.persist,
	}, logger.Noop())
	require.NoError(t, err)
	return r
}

func TestNew(t *testing.T) {
	_, err := New(Config{Persist: (&fakeStore{}).persist}, nil)
	assert.ErrorIs(t, err, ErrNoSchema)

	_, err = New(Config{Schema: validation.SettingsSchema}, nil)
	assert.ErrorIs(t, err, ErrNoPersister)

	r, err := New(Config{Schema: validation.SettingsSchema, Persist: (&fakeStore{}).persist}, nil)
	require.NoError(t, err)
	assert.False(t, r.HasUnsavedChanges())
	assert.Empty(t, r.Merged())
}

func TestSetFieldValueDiff(t *testing.T) {
	store := &fakeStore{record: settingsForm("light", "60")}
	r := setupReconciler(t, store)

	require.NoError(t, r.SetField(model.FieldTheme, "dark"))
	assert.True(t, r.HasUnsavedChanges())
	assert.True(t, r.IsDirty(model.FieldTheme))

	// Setting the authoritative value again is a no-op edit.
	require.NoError(t, r.SetField(model.FieldTheme, "light"))
	assert.False(t, r.IsDirty(model.FieldTheme))
	assert.False(t, r.HasUnsavedChanges())
	assert.Empty(t, r.Delta())

	require.NoError(t, r.SetField(model.FieldDefaultSessionDuration, "060"))
	assert.False(t, r.HasUnsavedChanges())

	require.NoError(t, r.SetField(model.FieldDefaultSessionDuration, "45"))
	assert.Equal(t, validation.Form{model.FieldDefaultSessionDuration: "45"}, r.Delta())
	assert.Equal(t, settingsForm("light", "45"), r.Merged())
	assert.Equal(t, settingsForm("light", "60"), r.Authoritative())

	err := r.SetField(model.FieldTargetHours, "10")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestSetFieldLiveErrors(t *testing.T) {
	r := setupReconciler(t, &fakeStore{record: settingsForm("light", "60")})

	require.NoError(t, r.SetField(model.FieldDefaultSessionDuration, "3"))
	assert.Equal(t, validation.Errors{
		model.FieldDefaultSessionDuration: "Session duration must be at least 5 minutes",
	}, r.FieldErrors())

	require.NoError(t, r.SetField(model.FieldDefaultSessionDuration, "30"))
	assert.Empty(t, r.FieldErrors())

	msg, ok := r.ValidateField(model.FieldDefaultSessionDuration, "")
	assert.False(t, ok)
	assert.Equal(t, "Session duration cannot be empty", msg)
	assert.Equal(t, msg, r.FieldErrors()[model.FieldDefaultSessionDuration])
	assert.Equal(t, "30", r.Delta()[model.FieldDefaultSessionDuration])
}

func TestAttemptNavigateAway(t *testing.T) {
	r := setupReconciler(t, &fakeStore{record: settingsForm("light", "60")})

	assert.Equal(t, Proceed, r.AttemptNavigateAway())

	require.NoError(t, r.SetField(model.FieldTheme, "dark"))
	assert.Equal(t, ConfirmRequired, r.AttemptNavigateAway())
	assert.Empty(t, r.ExitError())

	require.NoError(t, r.SetField(model.FieldDefaultSessionDuration, "2000"))
	assert.Equal(t, Blocked, r.AttemptNavigateAway())
	assert.Equal(t, validation.MsgFixBeforeLeaving, r.ExitError())

	require.NoError(t, r.SetField(model.FieldDefaultSessionDuration, "90"))
	assert.Empty(t, r.ExitError())

	r.Discard()
	assert.Equal(t, Proceed, r.AttemptNavigateAway())
	assert.Equal(t, "proceed", Proceed.String())
	assert.Equal(t, "confirm-required", ConfirmRequired.String())
	assert.Equal(t, "blocked", Blocked.String())
}

func TestCommit(t *testing.T) {
	store := &fakeStore{record: settingsForm("light", "60")}
	r := setupReconciler(t, store)
	ctx := context.Background()

	require.NoError(t, r.SetField(model.FieldDefaultSessionDuration, " 045"))
	require.NoError(t, r.Commit(ctx))

	require.Len(t, store.commits, 1)
	assert.Equal(t, validation.Form{model.FieldDefaultSessionDuration: "45"}, store.commits[0])
	assert.False(t, r.HasUnsavedChanges())
	assert.Equal(t, settingsForm("light", "45"), r.Authoritative())

	// Nothing staged, nothing written.
	require.NoError(t, r.Commit(ctx))
	assert.Len(t, store.commits, 1)
}

func TestCommitValidationFailure(t *testing.T) {
	store := &fakeStore{record: settingsForm("light", "60")}
	r := setupReconciler(t, store)

	require.NoError(t, r.SetField(model.FieldDefaultSessionDuration, "3"))
	err := r.Commit(context.Background())

	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "Session duration must be at least 5 minutes", verrs.Field(model.FieldDefaultSessionDuration))
	assert.Equal(t, validation.MsgFixBeforeSaving, r.ExitError())
	assert.Empty(t, store.commits)
	assert.True(t, r.HasUnsavedChanges())
}

func TestCommitPersistenceFailure(t *testing.T) {
	storeErr := errors.New("disk full")
	store := &fakeStore{record: settingsForm("light", "60"), err: storeErr}
	r := setupReconciler(t, store)

	require.NoError(t, r.SetField(model.FieldTheme, "dark"))
	err := r.Commit(context.Background())

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.ErrorIs(t, err, storeErr)
	assert.Equal(t, validation.Form{model.FieldTheme: "dark"}, r.Delta())
	assert.Equal(t, settingsForm("light", "60"), r.Authoritative())
}

func TestCommitInProgress(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	r, err := New(Config{
		Schema:        validation.SettingsSchema,
		Authoritative: settingsForm("light", "60"),
		Persist: func(_ context.Context, changes validation.Form) (validation.Form, error) {
			close(started)
			<-release
			out := settingsForm("light", "60")
			maps.Copy(out, changes)
			return out, nil
		},
	}, logger.Noop())
	require.NoError(t, err)
	require.NoError(t, r.SetField(model.FieldTheme, "dark"))

	done := make(chan error, 1)
	go func() { done <- r.Commit(context.Background()) }()
	<-started

	assert.ErrorIs(t, r.Commit(context.Background()), ErrCommitInProgress)

	// An edit made while the commit is running survives it.
	require.NoError(t, r.SetField(model.FieldDefaultSessionDuration, "30"))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, validation.Form{model.FieldDefaultSessionDuration: "30"}, r.Delta())
	assert.Equal(t, "dark", r.Authoritative()[model.FieldTheme])
}

func TestRevertDuringCommit(t *testing.T) {
	tests := []struct {
		name       string
		persistErr error
		revertTo   string
		wantDelta  validation.Form
	}{
		{
			name:      "revert survives successful commit",
			revertTo:  "light",
			wantDelta: validation.Form{model.FieldTheme: "light"},
		},
		{
			name:      "restaging committed value is pruned",
			revertTo:  "dark",
			wantDelta: validation.Form{},
		},
		{
			name:       "restaging committed value survives failed commit",
			persistErr: errors.New("disk full"),
			revertTo:   "dark",
			wantDelta:  validation.Form{model.FieldTheme: "dark"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			started := make(chan struct{})
			release := make(chan struct{})

			r, err := New(Config{
				Schema:        validation.SettingsSchema,
				Authoritative: settingsForm("light", "60"),
				Persist: func(_ context.Context, changes validation.Form) (validation.Form, error) {
					close(started)
					<-release
					if tt.persistErr != nil {
						return nil, tt.persistErr
					}
					out := settingsForm("light", "60")
					maps.Copy(out, changes)
					return out, nil
				},
			}, logger.Noop())
			require.NoError(t, err)
			require.NoError(t, r.SetField(model.FieldTheme, "dark"))

			done := make(chan error, 1)
			go func() { done <- r.Commit(context.Background()) }()
			<-started

			require.NoError(t, r.SetField(model.FieldTheme, tt.revertTo))

			close(release)
			err = <-done
			if tt.persistErr != nil {
				var perr *PersistenceError
				require.ErrorAs(t, err, &perr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantDelta, r.Delta())
		})
	}
}

func TestResetToDefaults(t *testing.T) {
	r := setupReconciler(t, &fakeStore{record: settingsForm("dark", "60")})

	require.NoError(t, r.SetField(model.FieldDefaultSessionDuration, "1"))
	require.NotEmpty(t, r.FieldErrors())

	r.ResetToDefaults()
	assert.Equal(t, validation.Form{model.FieldTheme: "system"}, r.Delta())
	assert.Empty(t, r.FieldErrors())
	assert.Equal(t, settingsForm("system", "60"), r.Merged())
}

func TestRefresh(t *testing.T) {
	r := setupReconciler(t, &fakeStore{record: settingsForm("light", "60")})

	require.NoError(t, r.SetField(model.FieldTheme, "dark"))
	require.NoError(t, r.SetField(model.FieldDefaultSessionDuration, "30"))

	r.Refresh(settingsForm("dark", "90"))
	assert.Equal(t, validation.Form{model.FieldDefaultSessionDuration: "30"}, r.Delta())
	assert.Equal(t, settingsForm("dark", "30"), r.Merged())
}

func TestSkillSettingsSchema(t *testing.T) {
	record := validation.Form{
		model.FieldDefaultSessionDuration: "90",
		model.FieldTargetHours:            "1000",
	}
	store := &fakeStore{record: maps.Clone(record)}

	r, err := New(Config{
		Schema:        validation.SkillSettingsSchema,
		Authoritative: record,
		Persist:       store.persist,
	}, logger.Noop())
	require.NoError(t, err)

	require.NoError(t, r.SetField(model.FieldTargetHours, "20000"))
	assert.Equal(t, Blocked, r.AttemptNavigateAway())

	require.NoError(t, r.SetField(model.FieldTargetHours, "500"))
	require.NoError(t, r.Commit(context.Background()))
	assert.Equal(t, []validation.Form{{model.FieldTargetHours: "500"}}, store.commits)
}

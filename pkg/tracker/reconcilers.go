package tracker

import (
	"context"
	"strconv"

	"github.com/0xmhha/skill-tracker/pkg/fallback"
	"github.com/0xmhha/skill-tracker/pkg/model"
	"github.com/0xmhha/skill-tracker/pkg/reconcile"
	"github.com/0xmhha/skill-tracker/pkg/validation"
)

// SettingsReconciler returns a reconciler over the user's settings whose
// commits go through UpdateSettings.
func (t *Tracker) SettingsReconciler() (*reconcile.Reconciler, error) {
	return reconcile.New(reconcile.Config{
		Schema:        validation.SettingsSchema,
		Authoritative: t.Settings().Form(),
		Defaults:      fallback.Settings().Form(),
		Persist: func(ctx context.Context, changes validation.Form) (validation.Form, error) {
			updated, err := t.UpdateSettings(ctx, settingsPatch(changes))
			if err != nil {
				return nil, err
			}
			return updated.Form(), nil
		},
	}, t.logger)
}

// SkillSettingsReconciler returns a reconciler over one skill's settings
// whose commits go through UpdateSkillSettings.
func (t *Tracker) SkillSettingsReconciler(id string) (*reconcile.Reconciler, error) {
	sk, err := t.Skill(id)
	if err != nil {
		return nil, err
	}

	return reconcile.New(reconcile.Config{
		Schema:        validation.SkillSettingsSchema,
		Authoritative: sk.Settings.Form(),
		Defaults:      fallback.SkillSettings(t.Settings().DefaultSessionDuration).Form(),
		Persist: func(ctx context.Context, changes validation.Form) (validation.Form, error) {
			updated, err := t.UpdateSkillSettings(ctx, id, skillSettingsPatch(changes))
			if err != nil {
				return nil, err
			}
			return updated.Settings.Form(), nil
		},
	}, t.logger.With("skill_id", id))
}

// settingsPatch converts validated changes into a patch.
func settingsPatch(changes validation.Form) model.SettingsPatch {
	var p model.SettingsPatch
	if v, ok := changes[model.FieldTheme]; ok {
		theme := model.Theme(v)
		p.Theme = &theme
	}
	if v, ok := changes[model.FieldDefaultSessionDuration]; ok {
		p.DefaultSessionDuration = intPtr(v)
	}
	return p
}

func skillSettingsPatch(changes validation.Form) model.SkillSettingsPatch {
	var p model.SkillSettingsPatch
	if v, ok := changes[model.FieldDefaultSessionDuration]; ok {
		p.DefaultSessionDuration = intPtr(v)
	}
	if v, ok := changes[model.FieldTargetHours]; ok {
		p.TargetHours = intPtr(v)
	}
	return p
}

func intPtr(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunargrid/internal/core"
	"lunargrid/internal/recurrence"
)

type fakeTemplateRepo struct {
	created   []core.Template
	updated   []core.Template
	active    map[string]bool
	createErr error
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{active: make(map[string]bool)}
}

func (f *fakeTemplateRepo) CreateTemplate(ctx context.Context, tpl core.Template) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, tpl)
	return nil
}

func (f *fakeTemplateRepo) UpdateTemplate(ctx context.Context, tpl core.Template) error {
	f.updated = append(f.updated, tpl)
	return nil
}

func (f *fakeTemplateRepo) GetTemplate(ctx context.Context, id string) (core.Template, error) {
	for _, tpl := range f.created {
		if tpl.ID == id {
			return tpl, nil
		}
	}
	return core.Template{}, errors.New("not found")
}

func (f *fakeTemplateRepo) ListTemplates(ctx context.Context, userID string) ([]core.Template, error) {
	return f.created, nil
}

func (f *fakeTemplateRepo) SetTemplateActive(ctx context.Context, id string, active bool) error {
	f.active[id] = active
	return nil
}

func TestTemplateService_Create(t *testing.T) {
	repo := newFakeTemplateRepo()
	svc := NewTemplateService(repo, recurrence.DefaultValidationLimits())

	tpl := serviceTemplate("")
	created, result, err := svc.Create(context.Background(), tpl)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	require.Len(t, repo.created, 1)
	assert.Equal(t, created.ID, repo.created[0].ID)
}

func TestTemplateService_CreateRejectsInvalid(t *testing.T) {
	repo := newFakeTemplateRepo()
	svc := NewTemplateService(repo, recurrence.DefaultValidationLimits())

	tpl := serviceTemplate("")
	tpl.Name = ""
	tpl.Amount = decimal.Zero

	_, result, err := svc.Create(context.Background(), tpl)
	require.Error(t, err)

	var invalid ErrTemplateInvalid
	require.ErrorAs(t, err, &invalid)
	assert.False(t, result.IsValid)
	assert.NotEmpty(t, invalid.Result.Errors)
	assert.Empty(t, repo.created, "invalid template must not be persisted")
}

func TestTemplateService_CreateKeepsWarnings(t *testing.T) {
	repo := newFakeTemplateRepo()
	svc := NewTemplateService(repo, recurrence.DefaultValidationLimits())

	tpl := serviceTemplate("")
	tpl.Amount = decimal.NewFromInt(99999)

	_, result, err := svc.Create(context.Background(), tpl)
	require.NoError(t, err, "warnings must not block creation")
	assert.NotEmpty(t, result.Warnings)
	assert.Len(t, repo.created, 1)
}

func TestTemplateService_Validate(t *testing.T) {
	svc := NewTemplateService(newFakeTemplateRepo(), recurrence.DefaultValidationLimits())

	result := svc.Validate(serviceTemplate("tpl-1"))
	assert.True(t, result.IsValid)
	assert.InDelta(t, 1.0, result.EstimatedImpact.TransactionsPerMonth, 0.001)

	bad := serviceTemplate("tpl-2")
	bad.CategoryID = ""
	result = svc.Validate(bad)
	assert.False(t, result.IsValid)
}

func TestTemplateService_DeactivateActivate(t *testing.T) {
	repo := newFakeTemplateRepo()
	svc := NewTemplateService(repo, recurrence.DefaultValidationLimits())

	require.NoError(t, svc.Deactivate(context.Background(), "tpl-1"))
	assert.False(t, repo.active["tpl-1"])

	require.NoError(t, svc.Activate(context.Background(), "tpl-1"))
	assert.True(t, repo.active["tpl-1"])
}

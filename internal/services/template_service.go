package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"lunargrid/internal/core"
	"lunargrid/internal/recurrence"
)

// TemplateRepository is the persistence surface the template service needs.
type TemplateRepository interface {
	CreateTemplate(ctx context.Context, tpl core.Template) error
	UpdateTemplate(ctx context.Context, tpl core.Template) error
	GetTemplate(ctx context.Context, id string) (core.Template, error)
	ListTemplates(ctx context.Context, userID string) ([]core.Template, error)
	SetTemplateActive(ctx context.Context, id string, active bool) error
}

// ErrTemplateInvalid carries the validation result for a rejected template.
type ErrTemplateInvalid struct {
	Result recurrence.ValidationResult
}

func (e ErrTemplateInvalid) Error() string {
	return "template invalid: " + strings.Join(e.Result.Errors, "; ")
}

type TemplateService struct {
	repo   TemplateRepository
	limits recurrence.ValidationLimits
}

func NewTemplateService(repo TemplateRepository, limits recurrence.ValidationLimits) *TemplateService {
	return &TemplateService{repo: repo, limits: limits}
}

// Create validates and persists a new template. Invalid templates are
// rejected with ErrTemplateInvalid; warnings alone never block creation.
func (s *TemplateService) Create(ctx context.Context, tpl core.Template) (core.Template, recurrence.ValidationResult, error) {
	result := recurrence.ValidateTemplate(tpl, s.limits)
	if !result.IsValid {
		return core.Template{}, result, ErrTemplateInvalid{Result: result}
	}

	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now

	if err := s.repo.CreateTemplate(ctx, tpl); err != nil {
		return core.Template{}, result, fmt.Errorf("create template: %w", err)
	}

	slog.InfoContext(ctx, "Template created",
		"template_id", tpl.ID,
		"user_id", tpl.UserID,
		"frequency", recurrence.FormatFrequency(tpl.Frequency),
		"warnings", len(result.Warnings))

	return tpl, result, nil
}

// Update validates and persists changes to an existing template.
func (s *TemplateService) Update(ctx context.Context, tpl core.Template) (core.Template, recurrence.ValidationResult, error) {
	result := recurrence.ValidateTemplate(tpl, s.limits)
	if !result.IsValid {
		return core.Template{}, result, ErrTemplateInvalid{Result: result}
	}

	tpl.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateTemplate(ctx, tpl); err != nil {
		return core.Template{}, result, fmt.Errorf("update template: %w", err)
	}

	return tpl, result, nil
}

// Validate runs validation without persisting anything.
func (s *TemplateService) Validate(tpl core.Template) recurrence.ValidationResult {
	return recurrence.ValidateTemplate(tpl, s.limits)
}

// Get returns a single template by id.
func (s *TemplateService) Get(ctx context.Context, id string) (core.Template, error) {
	return s.repo.GetTemplate(ctx, id)
}

// List returns all of the user's templates, active or not.
func (s *TemplateService) List(ctx context.Context, userID string) ([]core.Template, error) {
	return s.repo.ListTemplates(ctx, userID)
}

// Deactivate pauses a template without deleting it. Future generation runs
// skip paused templates; already stored occurrences are untouched until the
// next run over their window.
func (s *TemplateService) Deactivate(ctx context.Context, id string) error {
	if err := s.repo.SetTemplateActive(ctx, id, false); err != nil {
		return fmt.Errorf("deactivate template: %w", err)
	}
	slog.InfoContext(ctx, "Template deactivated", "template_id", id)
	return nil
}

// Activate re-enables a paused template.
func (s *TemplateService) Activate(ctx context.Context, id string) error {
	if err := s.repo.SetTemplateActive(ctx, id, true); err != nil {
		return fmt.Errorf("activate template: %w", err)
	}
	slog.InfoContext(ctx, "Template activated", "template_id", id)
	return nil
}

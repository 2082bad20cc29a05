package portfolio

import (
	"context"
	"strings"

	"github.com/anhtran/folio-api/internal/domain/portfolio"
	"github.com/anhtran/folio-api/pkg/apperror"
	"github.com/anhtran/folio-api/pkg/logger"
)

// Editor turns form submissions into patches scoped to a single top-level key.
// Sequence-valued scopes always submit the entire sequence: add appends, edit
// replaces the entry matching the id in place, delete filters it out. Each
// submission computes its value from the state inside the manager's critical
// section, so overlapping submissions cannot lose each other's writes.
type Editor struct {
	manager *StateManager
	logger  logger.Logger
}

func NewEditor(m *StateManager, log logger.Logger) *Editor {
	return &Editor{manager: m, logger: log}
}

func (e *Editor) UpdatePersonalInfo(ctx context.Context, info portfolio.PersonalInfo) error {
	info.Name = strings.TrimSpace(info.Name)
	info.Title = strings.TrimSpace(info.Title)
	info.Email = strings.TrimSpace(info.Email)
	return e.manager.Update(ctx, portfolio.Patch{PersonalInfo: &info})
}

// SaveProject adds a new project (empty id) or edits an existing one by id.
// Ids are assigned once at creation and never regenerated on edit.
func (e *Editor) SaveProject(ctx context.Context, p portfolio.Project) (portfolio.Project, error) {
	p.Technologies = cleanList(p.Technologies)
	if err := p.Validate(); err != nil {
		return portfolio.Project{}, apperror.NewInvalidInput("project validation failed", err)
	}

	creating := p.ID == ""
	if creating {
		p.ID = portfolio.NewID()
	}

	err := e.manager.Apply(ctx, func(current portfolio.Data) (portfolio.Patch, error) {
		updated := make([]portfolio.Project, 0, len(current.Projects)+1)
		replaced := false
		for _, existing := range current.Projects {
			if existing.ID == p.ID {
				updated = append(updated, p)
				replaced = true
				continue
			}
			updated = append(updated, existing)
		}
		if !replaced {
			if !creating {
				return portfolio.Patch{}, apperror.NewNotFound("project", p.ID)
			}
			updated = append(updated, p)
		}
		return portfolio.Patch{Projects: &updated}, nil
	})
	if err != nil {
		return portfolio.Project{}, err
	}
	return p, nil
}

func (e *Editor) DeleteProject(ctx context.Context, id string) error {
	return e.manager.Apply(ctx, func(current portfolio.Data) (portfolio.Patch, error) {
		updated := make([]portfolio.Project, 0, len(current.Projects))
		for _, existing := range current.Projects {
			if existing.ID != id {
				updated = append(updated, existing)
			}
		}
		if len(updated) == len(current.Projects) {
			return portfolio.Patch{}, apperror.NewNotFound("project", id)
		}
		return portfolio.Patch{Projects: &updated}, nil
	})
}

// SaveEducation follows the same whole-sequence contract as SaveProject.
func (e *Editor) SaveEducation(ctx context.Context, entry portfolio.Education) (portfolio.Education, error) {
	if err := entry.Validate(); err != nil {
		return portfolio.Education{}, apperror.NewInvalidInput("education validation failed", err)
	}

	creating := entry.ID == ""
	if creating {
		entry.ID = portfolio.NewID()
	}

	err := e.manager.Apply(ctx, func(current portfolio.Data) (portfolio.Patch, error) {
		updated := make([]portfolio.Education, 0, len(current.Education)+1)
		replaced := false
		for _, existing := range current.Education {
			if existing.ID == entry.ID {
				updated = append(updated, entry)
				replaced = true
				continue
			}
			updated = append(updated, existing)
		}
		if !replaced {
			if !creating {
				return portfolio.Patch{}, apperror.NewNotFound("education entry", entry.ID)
			}
			updated = append(updated, entry)
		}
		return portfolio.Patch{Education: &updated}, nil
	})
	if err != nil {
		return portfolio.Education{}, err
	}
	return entry, nil
}

func (e *Editor) DeleteEducation(ctx context.Context, id string) error {
	return e.manager.Apply(ctx, func(current portfolio.Data) (portfolio.Patch, error) {
		updated := make([]portfolio.Education, 0, len(current.Education))
		for _, existing := range current.Education {
			if existing.ID != id {
				updated = append(updated, existing)
			}
		}
		if len(updated) == len(current.Education) {
			return portfolio.Patch{}, apperror.NewNotFound("education entry", id)
		}
		return portfolio.Patch{Education: &updated}, nil
	})
}

// AddSkill appends a trimmed skill. Duplicates are allowed by the model.
func (e *Editor) AddSkill(ctx context.Context, skill string) error {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return apperror.NewInvalidInput("skill must not be empty", portfolio.ErrSkillEmpty)
	}

	return e.manager.Apply(ctx, func(current portfolio.Data) (portfolio.Patch, error) {
		updated := make([]string, 0, len(current.Skills)+1)
		updated = append(updated, current.Skills...)
		updated = append(updated, skill)
		return portfolio.Patch{Skills: &updated}, nil
	})
}

// RemoveSkill filters by exact value. Skills are not uniquely keyed, so every
// occurrence of the value is removed together.
func (e *Editor) RemoveSkill(ctx context.Context, skill string) error {
	return e.manager.Apply(ctx, func(current portfolio.Data) (portfolio.Patch, error) {
		updated := make([]string, 0, len(current.Skills))
		for _, existing := range current.Skills {
			if existing != skill {
				updated = append(updated, existing)
			}
		}
		return portfolio.Patch{Skills: &updated}, nil
	})
}

func cleanList(values []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	return cleaned
}

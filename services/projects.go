package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"citation-hand/domainerrors"
	"citation-hand/models"
	"citation-hand/storage"
)

// MaxProjectNameLength begrenzt Projektnamen (in Zeichen).
const MaxProjectNameLength = 200

// CreateProject legt ein Projekt an. Namen sind ohne Beachtung der Schreibweise eindeutig.
func (e *Engine) CreateProject(ctx context.Context, name string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainerrors.ForField(domainerrors.CodeMissingField, "name", "project name is required")
	}
	if utf8.RuneCountInString(name) > MaxProjectNameLength {
		return nil, domainerrors.ForField(domainerrors.CodeFormat, "name", "project name is too long")
	}

	p := &models.Project{Name: name}
	err := e.Provider.RunInTx(ctx, func(st storage.Store) error {
		existing, err := st.ProjectByName(ctx, name)
		switch {
		case err == nil:
			return domainerrors.Newf(domainerrors.CodeConflict, "project %q already exists (id %d)", existing.Name, existing.ID)
		case !errors.Is(err, storage.ErrNotFound):
			return storageErr(err, "project")
		}
		if err := st.CreateProject(ctx, p); err != nil {
			return storageErr(err, "project")
		}
		return nil
	})
	observe("create_project", OutcomeCreated, err)
	if err != nil {
		return nil, err
	}
	e.Logger.Info("Projekt angelegt.", zap.Uint("project_id", p.ID), zap.String("name", p.Name))
	return p, nil
}

// GetProject liefert ein Projekt.
func (e *Engine) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	var out *models.Project
	err := e.Provider.View(ctx, func(st storage.Store) error {
		p, err := st.GetProject(ctx, id)
		if err != nil {
			return storageErr(err, "project")
		}
		out = p
		return nil
	})
	return out, err
}

// ListProjects liefert alle Projekte nach ID.
func (e *Engine) ListProjects(ctx context.Context) ([]models.Project, error) {
	out := []models.Project{}
	err := e.Provider.View(ctx, func(st storage.Store) error {
		list, err := st.ListProjects(ctx)
		if err != nil {
			return storageErr(err, "project")
		}
		out = append(out, list...)
		return nil
	})
	return out, err
}

// DeleteProject löscht ein Projekt samt Verknüpfungen und entfernt alle Zitationen, die
// danach von keinem Projekt mehr referenziert werden. Geliefert wird die Anzahl der
// gelöschten Zitationen.
func (e *Engine) DeleteProject(ctx context.Context, id uint) (int, error) {
	log := e.Logger.With(zap.Uint("project_id", id))
	removed := 0
	err := e.Provider.RunInTx(ctx, func(st storage.Store) error {
		if err := requireProject(ctx, st, id); err != nil {
			return err
		}
		citations, err := st.ListByProject(ctx, id)
		if err != nil {
			return storageErr(err, "citation")
		}
		if err := st.DeleteProject(ctx, id); err != nil {
			return storageErr(err, "project")
		}
		for _, c := range citations {
			deleted, err := deleteIfOrphan(ctx, st, c.ID)
			if err != nil {
				return err
			}
			if deleted {
				removed++
			}
		}
		return nil
	})
	observe("delete_project", OutcomeDeleted, err)
	if err != nil {
		return 0, err
	}
	log.Info("Projekt gelöscht.", zap.Int("orphans_removed", removed))
	return removed, nil
}

package services

import (
	"context"

	"go.uber.org/zap"

	"citation-hand/domainerrors"
	"citation-hand/models"
	"citation-hand/services/render"
	"citation-hand/services/schema"
	"citation-hand/storage"
)

// Create legt eine Zitation in einem Projekt an. Existiert im Projekt bereits eine
// gleichwertige Zitation, schlägt der Aufruf mit duplicate_citation fehl; existiert sie
// nur in anderen Projekten, wird der vorhandene Datensatz wiederverwendet.
func (e *Engine) Create(ctx context.Context, projectID uint, in *models.CitationFields) (*Result, error) {
	log := e.Logger.With(zap.Uint("project_id", projectID))
	var res *Result
	err := e.Provider.RunInTx(ctx, func(st storage.Store) error {
		if err := requireProject(ctx, st, projectID); err != nil {
			return err
		}
		target, err := e.Validator.ValidateCreate(in)
		if err != nil {
			return err
		}
		candidate := schema.Build(in, target)

		matches, err := e.findMatches(ctx, st, candidate, 0)
		if err != nil {
			return err
		}
		for _, m := range matches {
			has, err := st.HasAssociation(ctx, projectID, m.ID)
			if err != nil {
				return storageErr(err, "citation")
			}
			if has {
				return domainerrors.Duplicate(m.ID)
			}
		}
		if len(matches) > 0 {
			existing := matches[0]
			if err := st.AddAssociation(ctx, projectID, existing.ID); err != nil {
				return storageErr(err, "citation")
			}
			res = &Result{Citation: existing, Outcome: OutcomeReused}
			return nil
		}

		if err := st.InsertCitation(ctx, candidate); err != nil {
			return storageErr(err, "citation")
		}
		if err := st.AddAssociation(ctx, projectID, candidate.ID); err != nil {
			return storageErr(err, "citation")
		}
		res = &Result{Citation: candidate, Outcome: OutcomeCreated}
		return nil
	})
	observe("create", outcomeOf(res), err)
	if err != nil {
		log.Debug("Zitation nicht angelegt.", zap.Error(err))
		return nil, err
	}
	log.Info("Zitation gespeichert.", zap.Uint("citation_id", res.Citation.ID), zap.String("outcome", string(res.Outcome)))
	return res, nil
}

// Get liefert eine Zitation.
func (e *Engine) Get(ctx context.Context, citationID uint) (*models.Citation, error) {
	var out *models.Citation
	err := e.Provider.View(ctx, func(st storage.Store) error {
		c, err := st.GetCitation(ctx, citationID)
		if err != nil {
			return storageErr(err, "citation")
		}
		out = c
		return nil
	})
	return out, err
}

// ListByProject liefert alle Zitationen eines Projekts nach ID.
func (e *Engine) ListByProject(ctx context.Context, projectID uint) ([]*models.Citation, error) {
	var out []*models.Citation
	err := e.Provider.View(ctx, func(st storage.Store) error {
		if err := requireProject(ctx, st, projectID); err != nil {
			return err
		}
		list, err := st.ListByProject(ctx, projectID)
		if err != nil {
			return storageErr(err, "citation")
		}
		out = list
		return nil
	})
	if out == nil && err == nil {
		out = []*models.Citation{}
	}
	return out, err
}

// Update ändert eine Zitation aus Sicht eines Projekts. Andere Projekte, die denselben
// Datensatz referenzieren, sehen die Änderung nie (Copy-on-Write).
func (e *Engine) Update(ctx context.Context, citationID, projectID uint, in *models.CitationFields) (*Result, error) {
	log := e.Logger.With(zap.Uint("citation_id", citationID), zap.Uint("project_id", projectID))
	var res *Result
	err := e.Provider.RunInTx(ctx, func(st storage.Store) error {
		current, err := st.GetCitation(ctx, citationID)
		if err != nil {
			return storageErr(err, "citation")
		}
		if err := requireProject(ctx, st, projectID); err != nil {
			return err
		}
		has, err := st.HasAssociation(ctx, projectID, citationID)
		if err != nil {
			return storageErr(err, "citation")
		}
		if !has {
			return domainerrors.New(domainerrors.CodeNotFound, "citation not found")
		}

		target, err := e.Validator.ValidateUpdate(in, current.Type)
		if err != nil {
			return err
		}
		merged := schema.Merge(current, in, target)

		// 1. Ergebnis existiert bereits: Verknüpfung umhängen, auch ohne Änderung
		matches, err := e.findMatches(ctx, st, merged, citationID)
		if err != nil {
			return err
		}
		if len(matches) > 0 {
			existing, err := preferAssociated(ctx, st, projectID, matches)
			if err != nil {
				return err
			}
			if err := e.repoint(ctx, st, projectID, current.ID, existing.ID); err != nil {
				return err
			}
			res = &Result{Citation: existing, Outcome: OutcomeMerged}
			return nil
		}

		// 2. nichts geändert
		if merged.SameContent(current) {
			res = &Result{Citation: current, Outcome: OutcomeUnchanged}
			return nil
		}

		owners, err := st.ListAssociations(ctx, citationID)
		if err != nil {
			return storageErr(err, "citation")
		}

		// 3. alleiniger Besitzer: direkt ändern
		if len(owners) == 1 {
			if err := st.MutateCitation(ctx, merged); err != nil {
				return storageErr(err, "citation")
			}
			res = &Result{Citation: merged, Outcome: OutcomeUpdated}
			return nil
		}

		// 4. geteilt: neue Kopie nur für dieses Projekt
		fork := merged.Clone()
		fork.ID = 0
		if err := st.InsertCitation(ctx, fork); err != nil {
			return storageErr(err, "citation")
		}
		if err := st.AddAssociation(ctx, projectID, fork.ID); err != nil {
			return storageErr(err, "citation")
		}
		if err := st.RemoveAssociation(ctx, projectID, citationID); err != nil {
			return storageErr(err, "citation")
		}
		res = &Result{Citation: fork, Outcome: OutcomeForked}
		return nil
	})
	observe("update", outcomeOf(res), err)
	if err != nil {
		log.Debug("Zitation nicht aktualisiert.", zap.Error(err))
		return nil, err
	}
	log.Info("Zitation aktualisiert.", zap.Uint("result_id", res.Citation.ID), zap.String("outcome", string(res.Outcome)))
	return res, nil
}

// preferAssociated wählt unter mehreren Treffern den, der bereits zum Projekt gehört.
func preferAssociated(ctx context.Context, st storage.Store, projectID uint, matches []*models.Citation) (*models.Citation, error) {
	for _, m := range matches {
		has, err := st.HasAssociation(ctx, projectID, m.ID)
		if err != nil {
			return nil, storageErr(err, "citation")
		}
		if has {
			return m, nil
		}
	}
	return matches[0], nil
}

// repoint hängt die Projektverknüpfung von from auf to um und löscht from, wenn kein
// Projekt mehr darauf verweist.
func (e *Engine) repoint(ctx context.Context, st storage.Store, projectID, from, to uint) error {
	if err := st.AddAssociation(ctx, projectID, to); err != nil {
		return storageErr(err, "citation")
	}
	if err := st.RemoveAssociation(ctx, projectID, from); err != nil {
		return storageErr(err, "citation")
	}
	_, err := deleteIfOrphan(ctx, st, from)
	return err
}

// deleteIfOrphan löscht eine Zitation ohne verbleibende Projektverknüpfung.
func deleteIfOrphan(ctx context.Context, st storage.Store, citationID uint) (bool, error) {
	owners, err := st.ListAssociations(ctx, citationID)
	if err != nil {
		return false, storageErr(err, "citation")
	}
	if len(owners) > 0 {
		return false, nil
	}
	if err := st.DeleteCitation(ctx, citationID); err != nil {
		return false, storageErr(err, "citation")
	}
	return true, nil
}

// Delete entfernt eine Zitation aus einem Projekt und löscht sie, wenn sie danach
// verwaist ist. Ohne Projekt wird die Zitation überall entfernt.
func (e *Engine) Delete(ctx context.Context, citationID uint, projectID *uint) (*Result, error) {
	log := e.Logger.With(zap.Uint("citation_id", citationID))
	var res *Result
	err := e.Provider.RunInTx(ctx, func(st storage.Store) error {
		current, err := st.GetCitation(ctx, citationID)
		if err != nil {
			return storageErr(err, "citation")
		}

		if projectID == nil {
			owners, err := st.ListAssociations(ctx, citationID)
			if err != nil {
				return storageErr(err, "citation")
			}
			for _, owner := range owners {
				if err := st.RemoveAssociation(ctx, owner, citationID); err != nil {
					return storageErr(err, "citation")
				}
			}
			if err := st.DeleteCitation(ctx, citationID); err != nil {
				return storageErr(err, "citation")
			}
			res = &Result{Citation: current, Outcome: OutcomeDeleted}
			return nil
		}

		if err := st.RemoveAssociation(ctx, *projectID, citationID); err != nil {
			return storageErr(err, "citation")
		}
		deleted, err := deleteIfOrphan(ctx, st, citationID)
		if err != nil {
			return err
		}
		res = &Result{Citation: current, Outcome: OutcomeDetached}
		if deleted {
			res.Outcome = OutcomeDeleted
		}
		return nil
	})
	observe("delete", outcomeOf(res), err)
	if err != nil {
		return nil, err
	}
	log.Info("Zitation entfernt.", zap.String("outcome", string(res.Outcome)))
	return res, nil
}

// Render formatiert eine gespeicherte Zitation im angegebenen Stil.
func (e *Engine) Render(ctx context.Context, citationID uint, style string) (string, error) {
	st, err := render.ParseStyle(style)
	if err != nil {
		return "", err
	}
	c, err := e.Get(ctx, citationID)
	if err != nil {
		return "", err
	}
	return render.Render(c, st)
}

func outcomeOf(res *Result) Outcome {
	if res == nil {
		return ""
	}
	return res.Outcome
}

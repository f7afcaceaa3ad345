package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"citation-hand/domainerrors"
	"citation-hand/models"
	"citation-hand/services/schema"
	"citation-hand/storage"
)

// Outcome beschreibt, was eine Operation mit dem gespeicherten Bestand gemacht hat.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeReused    Outcome = "reused"
	OutcomeUpdated   Outcome = "updated"
	OutcomeForked    Outcome = "forked"
	OutcomeMerged    Outcome = "merged"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeDetached  Outcome = "detached"
	OutcomeDeleted   Outcome = "deleted"
)

// Result ist die Antwort aller schreibenden Operationen auf Zitationen.
type Result struct {
	Citation *models.Citation `json:"citation,omitempty"`
	Outcome  Outcome          `json:"outcome"`
}

// Engine ist die Fassade über Validierung, Dublettenerkennung, Speicher und Rendering.
// Jede schreibende Operation läuft in genau einer Transaktion des Providers.
type Engine struct {
	Provider  storage.Provider
	Registry  *schema.Registry
	Validator *schema.Validator
	Matcher   *schema.Matcher
	Logger    *zap.Logger
}

// NewEngine erstellt eine neue Engine. now bestimmt das aktuelle Jahr für die
// Jahresprüfung; nil bedeutet time.Now.
func NewEngine(provider storage.Provider, logger *zap.Logger, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := schema.NewRegistry()
	return &Engine{
		Provider:  provider,
		Registry:  registry,
		Validator: schema.NewValidator(registry, now),
		Matcher:   schema.NewMatcher(registry),
		Logger:    logger,
	}
}

// requireProject liefert einen not_found-Fehler, wenn das Projekt nicht existiert.
func requireProject(ctx context.Context, st storage.Store, projectID uint) error {
	ok, err := st.ProjectExists(ctx, projectID)
	if err != nil {
		return storageErr(err, "project")
	}
	if !ok {
		return domainerrors.New(domainerrors.CodeNotFound, "project not found")
	}
	return nil
}

// storageErr übersetzt Speicherfehler: ErrNotFound wird zu not_found, Domänenfehler
// bleiben, alles andere wird als interner Fehler verpackt.
func storageErr(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return domainerrors.Wrap(err, domainerrors.CodeNotFound, entity+" not found")
	}
	var de *domainerrors.Error
	if errors.As(err, &de) {
		return err
	}
	return domainerrors.Wrap(err, domainerrors.CodeInternal, "storage failure")
}

// findMatches liefert alle gespeicherten Zitationen gleichen Typs, die strukturell
// gleich c sind. skip schließt eine ID aus (0 = keine).
func (e *Engine) findMatches(ctx context.Context, st storage.Store, c *models.Citation, skip uint) ([]*models.Citation, error) {
	candidates, err := st.ListByType(ctx, c.Type)
	if err != nil {
		return nil, storageErr(err, "citation")
	}
	var out []*models.Citation
	for _, cand := range candidates {
		if cand.ID == skip {
			continue
		}
		if e.Matcher.IsDuplicate(c, cand) {
			out = append(out, cand)
		}
	}
	return out, nil
}

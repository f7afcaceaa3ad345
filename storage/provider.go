package storage

import (
	"context"
	"errors"

	"citation-hand/models"
)

// ErrNotFound wird von allen Implementierungen für fehlende Datensätze geliefert.
var ErrNotFound = errors.New("record not found")

// ErrReadOnly meldet einen Schreibversuch innerhalb von View.
var ErrReadOnly = errors.New("store is read-only")

// Store ist die Sicht auf Projekte, Zitationen und deren Verknüpfungen innerhalb einer
// Arbeitseinheit. Alle Lesemethoden liefern Kopien.
type Store interface {
	ProjectExists(ctx context.Context, id uint) (bool, error)
	GetProject(ctx context.Context, id uint) (*models.Project, error)
	ProjectByName(ctx context.Context, name string) (*models.Project, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
	CreateProject(ctx context.Context, p *models.Project) error
	// DeleteProject entfernt das Projekt samt Verknüpfungen, nicht aber die Zitationen.
	DeleteProject(ctx context.Context, id uint) error

	GetCitation(ctx context.Context, id uint) (*models.Citation, error)
	// InsertCitation vergibt die ID und setzt sie in c.
	InsertCitation(ctx context.Context, c *models.Citation) error
	// MutateCitation überschreibt alle Felder des Datensatzes mit c.ID.
	MutateCitation(ctx context.Context, c *models.Citation) error
	DeleteCitation(ctx context.Context, id uint) error
	// ListByProject liefert die Zitationen eines Projekts nach ID sortiert.
	ListByProject(ctx context.Context, projectID uint) ([]*models.Citation, error)
	// ListByType liefert alle Zitationen eines Typs für die Dublettensuche.
	ListByType(ctx context.Context, t models.CitationType) ([]*models.Citation, error)

	// ListAssociations liefert die Projekt-IDs, die eine Zitation referenzieren.
	ListAssociations(ctx context.Context, citationID uint) ([]uint, error)
	HasAssociation(ctx context.Context, projectID, citationID uint) (bool, error)
	// AddAssociation ist idempotent.
	AddAssociation(ctx context.Context, projectID, citationID uint) error
	// RemoveAssociation liefert ErrNotFound, wenn die Verknüpfung nicht existiert.
	RemoveAssociation(ctx context.Context, projectID, citationID uint) error
}

// Provider kapselt die Transaktionsgrenzen. Schlägt fn fehl, wird nichts übernommen.
type Provider interface {
	View(ctx context.Context, fn func(Store) error) error
	RunInTx(ctx context.Context, fn func(Store) error) error
	Close() error
}

package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"citation-hand/services/render"
	"citation-hand/storage"
)

// exportPrefix ist der Ordner aller exportierten Literaturverzeichnisse im Bucket.
const exportPrefix = "bibliographies"

// ObjectStore ist das Ablageziel des Exports (in Produktion storage.S3Store).
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
	List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

// Exporter schreibt die Literaturverzeichnisse aller Projekte in einen Object Store und
// behält pro Projekt und Stil nur die neuesten Keep Dateien.
type Exporter struct {
	Engine *Engine
	Store  ObjectStore
	Keep   int
	Logger *zap.Logger

	now func() time.Time
}

// ExportReport fasst einen Exportlauf zusammen.
type ExportReport struct {
	RunID    string   `json:"run_id"`
	Uploaded []string `json:"uploaded"`
	Removed  int      `json:"removed"`
}

// NewExporter erstellt einen neuen Exporter.
func NewExporter(engine *Engine, store ObjectStore, keep int, logger *zap.Logger) *Exporter {
	if keep < 1 {
		keep = 1
	}
	return &Exporter{Engine: engine, Store: store, Keep: keep, Logger: logger, now: time.Now}
}

// ExportKey liefert den Objektschlüssel eines Exports.
func ExportKey(projectID uint, at time.Time, style render.Style) string {
	return fmt.Sprintf("%s/%d/%s-%s.txt", exportPrefix, projectID, at.UTC().Format("20060102T150405Z"), style)
}

// Run exportiert die angegebenen Projekte (leer = alle) in den angegebenen Stilen
// (leer = alle unterstützten Stile).
func (x *Exporter) Run(ctx context.Context, projectIDs []uint, styles []render.Style) (*ExportReport, error) {
	report := &ExportReport{RunID: uuid.NewString(), Uploaded: []string{}}
	log := x.Logger.With(zap.String("run_id", report.RunID))

	if len(projectIDs) == 0 {
		projects, err := x.Engine.ListProjects(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range projects {
			projectIDs = append(projectIDs, p.ID)
		}
	}
	if len(styles) == 0 {
		styles = render.Styles()
	}
	log.Info("Starte Export der Literaturverzeichnisse.", zap.Int("projects", len(projectIDs)))

	at := x.now()
	for _, id := range projectIDs {
		for _, style := range styles {
			bib, err := x.Engine.AssembleBibliography(ctx, id, style)
			if err != nil {
				return report, fmt.Errorf("bibliography for project %d: %w", id, err)
			}
			key := ExportKey(id, at, style)
			link, err := x.Store.Put(ctx, key, []byte(formatExport(bib)))
			if err != nil {
				return report, err
			}
			bibliographiesExported.Inc()
			report.Uploaded = append(report.Uploaded, key)
			log.Info("Literaturverzeichnis hochgeladen.", zap.Uint("project_id", id), zap.String("style", string(style)), zap.String("link", link))

			removed, err := x.rotate(ctx, id, style)
			if err != nil {
				return report, err
			}
			report.Removed += removed
		}
	}
	log.Info("Export abgeschlossen.", zap.Int("uploaded", len(report.Uploaded)), zap.Int("removed", report.Removed))
	return report, nil
}

// rotate löscht alte Exporte eines Projekts in einem Stil. Fehler beim Löschen einzelner
// Objekte werden nur protokolliert.
func (x *Exporter) rotate(ctx context.Context, projectID uint, style render.Style) (int, error) {
	objects, err := x.Store.List(ctx, fmt.Sprintf("%s/%d/", exportPrefix, projectID))
	if err != nil {
		return 0, err
	}
	suffix := "-" + string(style) + ".txt"
	var own []storage.ObjectInfo
	for _, obj := range objects {
		if strings.HasSuffix(obj.Key, suffix) {
			own = append(own, obj)
		}
	}
	if len(own) <= x.Keep {
		return 0, nil
	}

	sort.Slice(own, func(i, j int) bool {
		if own[i].LastModified.Equal(own[j].LastModified) {
			return own[i].Key > own[j].Key
		}
		return own[i].LastModified.After(own[j].LastModified)
	})

	removed := 0
	for _, obj := range own[x.Keep:] {
		x.Logger.Info("Lösche alten Export.", zap.String("key", obj.Key))
		if err := x.Store.Delete(ctx, obj.Key); err != nil {
			x.Logger.Error("Fehler beim Löschen des Exports.", zap.String("key", obj.Key), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}

func formatExport(bib *Bibliography) string {
	var b strings.Builder
	for _, e := range bib.Entries {
		b.WriteString(e)
		b.WriteByte('\n')
	}
	return b.String()
}

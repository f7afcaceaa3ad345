package services

import (
	"cmp"
	"context"
	"slices"

	"citation-hand/models"
	"citation-hand/services/render"
	"citation-hand/services/schema"
	"citation-hand/storage"
)

// Bibliography ist das gerenderte Literaturverzeichnis eines Projekts.
type Bibliography struct {
	ProjectID     uint         `json:"project_id"`
	Style         render.Style `json:"format"`
	CitationCount int          `json:"citation_count"`
	Entries       []string     `json:"entries"`
}

// AssembleBibliography rendert alle Zitationen eines Projekts im Stil style, sortiert
// nach dem Nachnamen des ersten Autors und danach nach dem vollständigen Eintrag.
func (e *Engine) AssembleBibliography(ctx context.Context, projectID uint, style render.Style) (*Bibliography, error) {
	renderer, err := render.For(style)
	if err != nil {
		return nil, err
	}
	var citations []*models.Citation
	err = e.Provider.View(ctx, func(st storage.Store) error {
		if err := requireProject(ctx, st, projectID); err != nil {
			return err
		}
		list, err := st.ListByProject(ctx, projectID)
		if err != nil {
			return storageErr(err, "citation")
		}
		citations = list
		return nil
	})
	if err != nil {
		return nil, err
	}

	type entry struct {
		key  string
		text string
	}
	entries := make([]entry, 0, len(citations))
	for _, c := range citations {
		entries = append(entries, entry{
			key:  schema.NormalizeText(render.SortKey(c.Authors)),
			text: renderer.Render(c),
		})
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		return cmp.Or(cmp.Compare(a.key, b.key), cmp.Compare(a.text, b.text))
	})

	out := &Bibliography{
		ProjectID:     projectID,
		Style:         style,
		CitationCount: len(entries),
		Entries:       make([]string, 0, len(entries)),
	}
	for _, en := range entries {
		out.Entries = append(out.Entries, en.text)
	}
	return out, nil
}

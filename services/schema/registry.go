package schema

import (
	"citation-hand/domainerrors"
	"citation-hand/models"
)

// FieldSet ist eine Bitmenge über models.Field.
type FieldSet uint32

// NewFieldSet baut eine Menge aus einzelnen Feldern.
func NewFieldSet(fields ...models.Field) FieldSet {
	var s FieldSet
	for _, f := range fields {
		s |= 1 << f
	}
	return s
}

func (s FieldSet) Has(f models.Field) bool   { return s&(1<<f) != 0 }
func (s FieldSet) Union(o FieldSet) FieldSet { return s | o }
func (s FieldSet) Minus(o FieldSet) FieldSet { return s &^ o }

// Fields liefert die enthaltenen Felder in kanonischer Reihenfolge.
func (s FieldSet) Fields() []models.Field {
	var out []models.Field
	for _, f := range models.AllFields() {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Schema beschreibt Pflicht- und erlaubte Felder eines Zitationstyps.
// Required ist immer eine Teilmenge von Valid.
type Schema struct {
	Type     models.CitationType
	Required FieldSet
	Valid    FieldSet
}

// Registry ist die unveränderliche Typtabelle. Sie wird einmal gebaut und an
// Validator, Matcher und Engine übergeben.
type Registry struct {
	schemas map[models.CitationType]Schema
	order   []models.CitationType
}

var baseRequired = NewFieldSet(models.FieldType, models.FieldTitle, models.FieldAuthors, models.FieldYear)

// NewRegistry baut die Tabelle für book, article, website und report.
func NewRegistry() *Registry {
	r := &Registry{schemas: make(map[models.CitationType]Schema)}
	r.add(models.TypeBook,
		NewFieldSet(models.FieldPublisher, models.FieldPlace),
		NewFieldSet(models.FieldEdition))
	r.add(models.TypeArticle,
		NewFieldSet(models.FieldJournal, models.FieldVolume, models.FieldPages),
		NewFieldSet(models.FieldIssue, models.FieldDOI))
	r.add(models.TypeWebsite,
		NewFieldSet(models.FieldPublisher, models.FieldURL, models.FieldAccessDate),
		0)
	r.add(models.TypeReport,
		NewFieldSet(models.FieldPublisher, models.FieldPlace),
		NewFieldSet(models.FieldURL))
	return r
}

func (r *Registry) add(t models.CitationType, required, optional FieldSet) {
	req := baseRequired.Union(required)
	r.schemas[t] = Schema{Type: t, Required: req, Valid: req.Union(optional)}
	r.order = append(r.order, t)
}

// Lookup liefert das Schema für einen Typ (Groß-/Kleinschreibung egal).
func (r *Registry) Lookup(t models.CitationType) (Schema, error) {
	s, ok := r.schemas[models.NormalizeType(string(t))]
	if !ok {
		return Schema{}, &domainerrors.Error{
			Code:    domainerrors.CodeUnknownType,
			Field:   models.FieldType.String(),
			Message: "unknown citation type " + string(t),
		}
	}
	return s, nil
}

// Types liefert alle bekannten Typen in Registrierungsreihenfolge.
func (r *Registry) Types() []models.CitationType {
	return append([]models.CitationType(nil), r.order...)
}

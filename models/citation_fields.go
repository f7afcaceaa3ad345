package models

import (
	"bytes"
	"encoding/json"
)

// Optional unterscheidet drei Zustände eines Eingabefelds: nicht gesendet, explizit null
// und gesetzt. Nicht gesendete Felder bleiben bei Updates unverändert.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some erzeugt ein gesetztes Feld.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null erzeugt ein explizit geleertes Feld.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// IsZero ermöglicht `omitzero` beim Serialisieren.
func (o Optional[T]) IsZero() bool {
	return !o.Set
}

// HasValue ist true, wenn das Feld gesendet wurde und nicht null ist.
func (o Optional[T]) HasValue() bool {
	return o.Set && !o.Null
}

// Ptr liefert den Wert als Zeiger oder nil bei null.
func (o Optional[T]) Ptr() *T {
	if !o.HasValue() {
		return nil
	}
	v := o.Value
	return &v
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// CitationFields ist die Eingabe für Anlegen und Aktualisieren. Nur gesendete Felder
// werden validiert und übernommen.
type CitationFields struct {
	Type       Optional[string]   `json:"type,omitzero"`
	Title      Optional[string]   `json:"title,omitzero"`
	Authors    Optional[[]string] `json:"authors,omitzero"`
	Year       Optional[int]      `json:"year,omitzero"`
	Publisher  Optional[string]   `json:"publisher,omitzero"`
	Place      Optional[string]   `json:"place,omitzero"`
	Edition    Optional[int]      `json:"edition,omitzero"`
	Journal    Optional[string]   `json:"journal,omitzero"`
	Volume     Optional[int]      `json:"volume,omitzero"`
	Issue      Optional[string]   `json:"issue,omitzero"`
	Pages      Optional[string]   `json:"pages,omitzero"`
	DOI        Optional[string]   `json:"doi,omitzero"`
	URL        Optional[string]   `json:"url,omitzero"`
	AccessDate Optional[string]   `json:"access_date,omitzero"`
}

// state liefert (gesendet, null) für ein Feld.
func (f *CitationFields) state(field Field) (bool, bool) {
	switch field {
	case FieldType:
		return f.Type.Set, f.Type.Null
	case FieldTitle:
		return f.Title.Set, f.Title.Null
	case FieldAuthors:
		return f.Authors.Set, f.Authors.Null
	case FieldYear:
		return f.Year.Set, f.Year.Null
	case FieldPublisher:
		return f.Publisher.Set, f.Publisher.Null
	case FieldPlace:
		return f.Place.Set, f.Place.Null
	case FieldEdition:
		return f.Edition.Set, f.Edition.Null
	case FieldJournal:
		return f.Journal.Set, f.Journal.Null
	case FieldVolume:
		return f.Volume.Set, f.Volume.Null
	case FieldIssue:
		return f.Issue.Set, f.Issue.Null
	case FieldPages:
		return f.Pages.Set, f.Pages.Null
	case FieldDOI:
		return f.DOI.Set, f.DOI.Null
	case FieldURL:
		return f.URL.Set, f.URL.Null
	case FieldAccessDate:
		return f.AccessDate.Set, f.AccessDate.Null
	}
	return false, false
}

// Has meldet, ob das Feld gesendet wurde (auch als null).
func (f *CitationFields) Has(field Field) bool {
	set, _ := f.state(field)
	return set
}

// IsNull meldet, ob das Feld explizit als null gesendet wurde.
func (f *CitationFields) IsNull(field Field) bool {
	set, null := f.state(field)
	return set && null
}

// Present liefert die gesendeten Felder in kanonischer Reihenfolge.
func (f *CitationFields) Present() []Field {
	var out []Field
	for _, field := range AllFields() {
		if f.Has(field) {
			out = append(out, field)
		}
	}
	return out
}

// Apply überträgt die gesendeten Felder auf c. Null leert das Feld.
func (f *CitationFields) Apply(c *Citation) {
	if f.Type.HasValue() {
		c.Type = NormalizeType(f.Type.Value)
	}
	if f.Title.HasValue() {
		c.Title = f.Title.Value
	}
	if f.Authors.HasValue() {
		c.Authors = append(c.Authors[:0:0], f.Authors.Value...)
	}
	applyRef(&c.Year, f.Year)
	applyRef(&c.Publisher, f.Publisher)
	applyRef(&c.Place, f.Place)
	applyRef(&c.Edition, f.Edition)
	applyRef(&c.Journal, f.Journal)
	applyRef(&c.Volume, f.Volume)
	applyRef(&c.Issue, f.Issue)
	applyRef(&c.Pages, f.Pages)
	applyRef(&c.DOI, f.DOI)
	applyRef(&c.URL, f.URL)
	applyRef(&c.AccessDate, f.AccessDate)
}

func applyRef[T any](dst **T, o Optional[T]) {
	if !o.Set {
		return
	}
	*dst = o.Ptr()
}

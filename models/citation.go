package models

import (
	"slices"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// CitationType ist der Quellentyp einer Zitation.
type CitationType string

const (
	TypeBook    CitationType = "book"
	TypeArticle CitationType = "article"
	TypeWebsite CitationType = "website"
	TypeReport  CitationType = "report"
)

// NormalizeType vereinheitlicht Schreibweise und Leerzeichen ("Book " -> "book").
func NormalizeType(s string) CitationType {
	return CitationType(strings.ToLower(strings.TrimSpace(s)))
}

// Citation ist ein bibliografischer Eintrag. Ein Eintrag kann von mehreren Projekten
// gleichzeitig referenziert werden (siehe ProjectCitation).
type Citation struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Type    CitationType                `json:"type" gorm:"size:20;index;not null"`
	Title   string                      `json:"title" gorm:"size:500;not null"`
	Authors datatypes.JSONSlice[string] `json:"authors" gorm:"not null"`
	Year    *int                        `json:"year"`

	// Typabhängige Felder, NULL wenn für den Typ nicht gültig oder nicht gesetzt
	Publisher  *string `json:"publisher,omitempty" gorm:"size:200"`
	Place      *string `json:"place,omitempty" gorm:"size:100"`
	Edition    *int    `json:"edition,omitempty"`
	Journal    *string `json:"journal,omitempty" gorm:"size:200"`
	Volume     *int    `json:"volume,omitempty"`
	Issue      *string `json:"issue,omitempty" gorm:"size:50"`
	Pages      *string `json:"pages,omitempty" gorm:"size:50"`
	DOI        *string `json:"doi,omitempty" gorm:"column:doi;size:300"`
	URL        *string `json:"url,omitempty" gorm:"column:url;size:2000"`
	AccessDate *string `json:"access_date,omitempty" gorm:"size:10"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Citation) TableName() string {
	return "citations"
}

// Clone liefert eine tiefe Kopie, die unabhängig vom Original verändert werden kann.
func (c *Citation) Clone() *Citation {
	if c == nil {
		return nil
	}
	out := *c
	out.Authors = slices.Clone(c.Authors)
	out.Year = cloneRef(c.Year)
	out.Publisher = cloneRef(c.Publisher)
	out.Place = cloneRef(c.Place)
	out.Edition = cloneRef(c.Edition)
	out.Journal = cloneRef(c.Journal)
	out.Volume = cloneRef(c.Volume)
	out.Issue = cloneRef(c.Issue)
	out.Pages = cloneRef(c.Pages)
	out.DOI = cloneRef(c.DOI)
	out.URL = cloneRef(c.URL)
	out.AccessDate = cloneRef(c.AccessDate)
	return &out
}

// IsNull meldet, ob ein Feld in diesem Datensatz keinen Wert trägt.
func (c *Citation) IsNull(f Field) bool {
	switch f {
	case FieldType:
		return c.Type == ""
	case FieldTitle:
		return c.Title == ""
	case FieldAuthors:
		return len(c.Authors) == 0
	case FieldYear:
		return c.Year == nil
	case FieldPublisher:
		return c.Publisher == nil
	case FieldPlace:
		return c.Place == nil
	case FieldEdition:
		return c.Edition == nil
	case FieldJournal:
		return c.Journal == nil
	case FieldVolume:
		return c.Volume == nil
	case FieldIssue:
		return c.Issue == nil
	case FieldPages:
		return c.Pages == nil
	case FieldDOI:
		return c.DOI == nil
	case FieldURL:
		return c.URL == nil
	case FieldAccessDate:
		return c.AccessDate == nil
	}
	return true
}

// Clear setzt ein optionales Feld auf NULL. Typ, Titel und Autoren bleiben unberührt.
func (c *Citation) Clear(f Field) {
	switch f {
	case FieldYear:
		c.Year = nil
	case FieldPublisher:
		c.Publisher = nil
	case FieldPlace:
		c.Place = nil
	case FieldEdition:
		c.Edition = nil
	case FieldJournal:
		c.Journal = nil
	case FieldVolume:
		c.Volume = nil
	case FieldIssue:
		c.Issue = nil
	case FieldPages:
		c.Pages = nil
	case FieldDOI:
		c.DOI = nil
	case FieldURL:
		c.URL = nil
	case FieldAccessDate:
		c.AccessDate = nil
	}
}

// SameContent vergleicht alle bibliografischen Felder exakt (ohne ID und Zeitstempel).
// Anders als die Dublettenerkennung zählt hier auch die Schreibweise.
func (c *Citation) SameContent(o *Citation) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.Type == o.Type &&
		c.Title == o.Title &&
		slices.Equal(c.Authors, o.Authors) &&
		refEqual(c.Year, o.Year) &&
		refEqual(c.Publisher, o.Publisher) &&
		refEqual(c.Place, o.Place) &&
		refEqual(c.Edition, o.Edition) &&
		refEqual(c.Journal, o.Journal) &&
		refEqual(c.Volume, o.Volume) &&
		refEqual(c.Issue, o.Issue) &&
		refEqual(c.Pages, o.Pages) &&
		refEqual(c.DOI, o.DOI) &&
		refEqual(c.URL, o.URL) &&
		refEqual(c.AccessDate, o.AccessDate)
}

// Ref liefert einen Zeiger auf v, praktisch für optionale Felder.
func Ref[T any](v T) *T {
	return &v
}

func cloneRef[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func refEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

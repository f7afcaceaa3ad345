package models

import "strings"

// Field identifiziert ein Zitationsfeld. Die Reihenfolge der Konstanten ist die kanonische
// Feldreihenfolge für Validierung und Fehlermeldungen.
type Field uint8

const (
	FieldType Field = iota
	FieldTitle
	FieldAuthors
	FieldYear
	FieldPublisher
	FieldPlace
	FieldEdition
	FieldJournal
	FieldVolume
	FieldIssue
	FieldPages
	FieldDOI
	FieldURL
	FieldAccessDate

	fieldCount
)

var fieldNames = [fieldCount]string{
	"type", "title", "authors", "year", "publisher", "place", "edition",
	"journal", "volume", "issue", "pages", "doi", "url", "access_date",
}

func (f Field) String() string {
	if f >= fieldCount {
		return "unknown"
	}
	return fieldNames[f]
}

// AllFields liefert alle Felder in kanonischer Reihenfolge.
func AllFields() []Field {
	out := make([]Field, 0, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		out = append(out, f)
	}
	return out
}

// ParseField löst einen Feldnamen (z.B. "access_date") auf.
func ParseField(name string) (Field, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range fieldNames {
		if n == name {
			return Field(i), true
		}
	}
	return 0, false
}

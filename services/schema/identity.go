package schema

import (
	"slices"
	"strings"

	"citation-hand/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Matcher entscheidet, ob zwei Zitationen strukturell gleich sind.
type Matcher struct {
	registry *Registry
}

// NewMatcher erzeugt einen Matcher auf Basis der Registry.
func NewMatcher(registry *Registry) *Matcher {
	return &Matcher{registry: registry}
}

// IsDuplicate ist symmetrisch und ohne Seiteneffekte. Verglichen werden nur die für den
// Typ gültigen Felder: Texte getrimmt und case-folded, Autoren als Multimenge
// (Reihenfolge egal), Zahlen nach Wert, null ist nur gleich null.
func (m *Matcher) IsDuplicate(a, b *models.Citation) bool {
	if a == nil || b == nil {
		return false
	}
	if models.NormalizeType(string(a.Type)) != models.NormalizeType(string(b.Type)) {
		return false
	}
	fields := models.AllFields()
	if s, err := m.registry.Lookup(a.Type); err == nil {
		fields = s.Valid.Fields()
	}
	for _, f := range fields {
		if !fieldEqual(f, a, b) {
			return false
		}
	}
	return true
}

func fieldEqual(f models.Field, a, b *models.Citation) bool {
	switch f {
	case models.FieldType:
		return true
	case models.FieldTitle:
		return NormalizeText(a.Title) == NormalizeText(b.Title)
	case models.FieldAuthors:
		return slices.Equal(authorKey(a.Authors), authorKey(b.Authors))
	case models.FieldYear:
		return intEqual(a.Year, b.Year)
	case models.FieldPublisher:
		return textEqual(a.Publisher, b.Publisher)
	case models.FieldPlace:
		return textEqual(a.Place, b.Place)
	case models.FieldEdition:
		return intEqual(a.Edition, b.Edition)
	case models.FieldJournal:
		return textEqual(a.Journal, b.Journal)
	case models.FieldVolume:
		return intEqual(a.Volume, b.Volume)
	case models.FieldIssue:
		return textEqual(a.Issue, b.Issue)
	case models.FieldPages:
		return pagesEqual(a.Pages, b.Pages)
	case models.FieldDOI:
		return textEqual(a.DOI, b.DOI)
	case models.FieldURL:
		return textEqual(a.URL, b.URL)
	case models.FieldAccessDate:
		return textEqual(a.AccessDate, b.AccessDate)
	}
	return true
}

// ligatures aus PDF-Kopien werden vor dem Vergleich aufgelöst
var ligatures = strings.NewReplacer(
	"ﬁ", "fi",
	"ﬂ", "fl",
	"ﬀ", "ff",
	"ﬃ", "ffi",
	"ﬄ", "ffl",
	"ﬆ", "st",
)

// NormalizeText: Ligaturen auflösen, NFC, Whitespace zusammenfassen, Unicode-Case-Folding.
func NormalizeText(s string) string {
	s = ligatures.Replace(s)
	normalized, _, err := transform.String(transform.Chain(norm.NFC, cases.Fold()), s)
	if err != nil {
		normalized = cases.Fold().String(norm.NFC.String(s))
	}
	return strings.Join(strings.Fields(normalized), " ")
}

func authorKey(authors []string) []string {
	out := make([]string, len(authors))
	for i, a := range authors {
		out[i] = NormalizeText(a)
	}
	slices.Sort(out)
	return out
}

func textEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return NormalizeText(*a) == NormalizeText(*b)
}

// pagesEqual vergleicht Seitenangaben ohne Leerzeichen: "1-3, 5-7" == "1-3,5-7".
func pagesEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return stripSpace(*a) == stripSpace(*b)
}

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func intEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

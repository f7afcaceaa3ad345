package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"citation-hand/domainerrors"
	"citation-hand/models"

	"github.com/go-playground/validator/v10"
)

// Längengrenzen der Textfelder.
const (
	MaxTitleLength     = 500
	MaxAuthorLength    = 150
	MaxPublisherLength = 200
	MaxJournalLength   = 200
	MaxPlaceLength     = 100
	MaxURLLength       = 2000
	MaxDOILength       = 300
	MaxPagesLength     = 50
	MaxIssueLength     = 50
)

var (
	doiPattern        = regexp.MustCompile(`^10\.\d{4,}/.+$`)
	pagesPattern      = regexp.MustCompile(`^\d+-\d+(?:\s*,\s*\d+-\d+)*$`)
	pageRangePattern  = regexp.MustCompile(`(\d+)-(\d+)`)
	datePattern       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	personNamePattern = regexp.MustCompile(`^[\p{L}\p{M}\s\-'.]+$`)
	placePattern      = regexp.MustCompile(`^[\p{L}\p{M}\s\-'.,]+$`)
)

// Formats prüft die Feldinhalte. Die Uhr ist injizierbar, damit die Jahresgrenze testbar bleibt.
type Formats struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewFormats erzeugt die Formatprüfung. now == nil bedeutet time.Now.
func NewFormats(now func() time.Time) *Formats {
	if now == nil {
		now = time.Now
	}
	return &Formats{validate: validator.New(), now: now}
}

// Check prüft alle gesendeten, nicht-null Felder in kanonischer Reihenfolge und bricht
// beim ersten Fehler ab.
func (f *Formats) Check(fields *models.CitationFields) error {
	for _, field := range fields.Present() {
		if fields.IsNull(field) {
			continue
		}
		if err := f.checkField(field, fields); err != nil {
			return err
		}
	}
	return nil
}

func (f *Formats) checkField(field models.Field, in *models.CitationFields) error {
	switch field {
	case models.FieldTitle:
		return checkText(field, in.Title.Value, MaxTitleLength)
	case models.FieldAuthors:
		return CheckAuthors(in.Authors.Value)
	case models.FieldYear:
		return f.CheckYear(in.Year.Value)
	case models.FieldPublisher:
		return checkText(field, in.Publisher.Value, MaxPublisherLength)
	case models.FieldPlace:
		return CheckPlace(in.Place.Value)
	case models.FieldEdition:
		return checkPositive(field, in.Edition.Value)
	case models.FieldJournal:
		return checkText(field, in.Journal.Value, MaxJournalLength)
	case models.FieldVolume:
		return checkPositive(field, in.Volume.Value)
	case models.FieldIssue:
		return checkText(field, in.Issue.Value, MaxIssueLength)
	case models.FieldPages:
		return CheckPages(in.Pages.Value)
	case models.FieldDOI:
		return CheckDOI(in.DOI.Value)
	case models.FieldURL:
		return f.CheckURL(in.URL.Value)
	case models.FieldAccessDate:
		return f.CheckAccessDate(in.AccessDate.Value)
	}
	return nil
}

func formatErr(field models.Field, format string, args ...any) error {
	return domainerrors.ForField(domainerrors.CodeFormat, field.String(), fmt.Sprintf(format, args...))
}

func checkText(field models.Field, s string, max int) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return formatErr(field, "must not be empty")
	}
	if utf8.RuneCountInString(s) > max {
		return formatErr(field, "must be at most %d characters", max)
	}
	return nil
}

func checkPositive(field models.Field, n int) error {
	if n <= 0 {
		return formatErr(field, "must be a positive integer")
	}
	return nil
}

// CheckAuthors verlangt mindestens einen Namen; jeder Name besteht nur aus Buchstaben
// (inkl. diakritischer Zeichen), Leerzeichen, Bindestrichen, Apostrophen und Punkten.
func CheckAuthors(authors []string) error {
	if len(authors) == 0 {
		return formatErr(models.FieldAuthors, "at least one author is required")
	}
	for i, a := range authors {
		a = strings.TrimSpace(a)
		if a == "" {
			return formatErr(models.FieldAuthors, "author %d must not be empty", i+1)
		}
		if utf8.RuneCountInString(a) > MaxAuthorLength {
			return formatErr(models.FieldAuthors, "author %d must be at most %d characters", i+1, MaxAuthorLength)
		}
		if !personNamePattern.MatchString(a) {
			return formatErr(models.FieldAuthors, "author %d contains invalid characters", i+1)
		}
	}
	return nil
}

// CheckYear erlaubt Jahre von 0 bis einschließlich zum aktuellen Jahr.
func (f *Formats) CheckYear(year int) error {
	current := f.now().Year()
	if year < 0 || year > current {
		return formatErr(models.FieldYear, "must be between 0 and %d", current)
	}
	return nil
}

// CheckDOI prüft das Präfix 10.<registrant>/<suffix>. Geprüft wird der Wert so, wie er
// gespeichert wird; umgebende Leerzeichen sind ein Formatfehler.
func CheckDOI(doi string) error {
	if utf8.RuneCountInString(doi) > MaxDOILength {
		return formatErr(models.FieldDOI, "must be at most %d characters", MaxDOILength)
	}
	if !doiPattern.MatchString(doi) {
		return formatErr(models.FieldDOI, "must look like 10.XXXX/suffix")
	}
	return nil
}

// CheckPages erlaubt "start-end" sowie kommagetrennte Bereiche, jeweils mit start <= end.
func CheckPages(pages string) error {
	if len(pages) > MaxPagesLength {
		return formatErr(models.FieldPages, "must be at most %d characters", MaxPagesLength)
	}
	if !pagesPattern.MatchString(pages) {
		return formatErr(models.FieldPages, "must look like 12-34 or 12-34, 56-78")
	}
	for _, m := range pageRangePattern.FindAllStringSubmatch(pages, -1) {
		start, err1 := strconv.Atoi(m[1])
		end, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil {
			return formatErr(models.FieldPages, "page number out of range")
		}
		if start > end {
			return formatErr(models.FieldPages, "start page %d is after end page %d", start, end)
		}
	}
	return nil
}

// CheckPlace erlaubt zusätzlich Kommas ("Cambridge, MA").
func CheckPlace(place string) error {
	place = strings.TrimSpace(place)
	if place == "" {
		return formatErr(models.FieldPlace, "must not be empty")
	}
	if utf8.RuneCountInString(place) > MaxPlaceLength {
		return formatErr(models.FieldPlace, "must be at most %d characters", MaxPlaceLength)
	}
	if !placePattern.MatchString(place) {
		return formatErr(models.FieldPlace, "contains invalid characters")
	}
	return nil
}

// CheckURL verlangt eine absolute http(s)-URL ohne Leerzeichen.
func (f *Formats) CheckURL(raw string) error {
	if len(raw) > MaxURLLength {
		return formatErr(models.FieldURL, "must be at most %d characters", MaxURLLength)
	}
	if strings.ContainsFunc(raw, unicode.IsSpace) {
		return formatErr(models.FieldURL, "must not contain whitespace")
	}
	if err := f.validate.Var(raw, "required,http_url"); err != nil {
		return formatErr(models.FieldURL, "must be an absolute http(s) URL")
	}
	return nil
}

// CheckAccessDate verlangt YYYY-MM-DD und ein existierendes Kalenderdatum.
func (f *Formats) CheckAccessDate(date string) error {
	if !datePattern.MatchString(date) {
		return formatErr(models.FieldAccessDate, "must be formatted as YYYY-MM-DD")
	}
	if err := f.validate.Var(date, "datetime=2006-01-02"); err != nil {
		return formatErr(models.FieldAccessDate, "is not a valid calendar date")
	}
	return nil
}

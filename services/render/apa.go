package render

import (
	"strconv"
	"strings"

	"citation-hand/models"
)

type apaRenderer struct{}

func (apaRenderer) Render(c *models.Citation) string {
	switch models.NormalizeType(string(c.Type)) {
	case models.TypeBook:
		return apaBook(c)
	case models.TypeArticle:
		return apaArticle(c)
	case models.TypeWebsite:
		return apaWebsite(c)
	case models.TypeReport:
		return apaReport(c)
	}
	return unsupported(c)
}

// apaHead liefert Autoren (ohne abschließenden Punkt) und Jahr bzw. "(n.d.)".
func apaHead(c *models.Citation) []string {
	var parts []string
	if authors := APAAuthors(c.Authors); authors != "" {
		parts = append(parts, strings.TrimRight(authors, "."))
	}
	if c.Year != nil {
		parts = append(parts, "("+strconv.Itoa(*c.Year)+")")
	} else {
		parts = append(parts, "(n.d.)")
	}
	return parts
}

// apaJoin verbindet mit ". ". Endet der Eintrag mit einem Link, folgt kein Punkt.
func apaJoin(parts []string, endsWithLink bool) string {
	out := strings.Join(parts, ". ")
	if endsWithLink || strings.HasSuffix(out, ".") {
		return out
	}
	return out + "."
}

func apaBook(c *models.Citation) string {
	parts := apaHead(c)
	if c.Title != "" {
		title := italic(SentenceCase(c.Title))
		if ed := EditionOrdinal(c.Edition); ed != "" {
			title += " (" + ed + ")"
		}
		parts = append(parts, title)
	}
	if c.Publisher != nil {
		parts = append(parts, *c.Publisher)
	}
	return apaJoin(parts, false)
}

func apaArticle(c *models.Citation) string {
	parts := apaHead(c)
	if c.Title != "" {
		parts = append(parts, SentenceCase(c.Title))
	}
	if c.Journal != nil {
		source := italic(*c.Journal)
		if c.Volume != nil {
			source += ", " + italic(strconv.Itoa(*c.Volume))
			if c.Issue != nil {
				source += "(" + *c.Issue + ")"
			}
		}
		if c.Pages != nil {
			source += ", " + EnDash(*c.Pages)
		}
		parts = append(parts, source)
	}
	if c.DOI != nil {
		parts = append(parts, doiURL(*c.DOI))
		return apaJoin(parts, true)
	}
	return apaJoin(parts, false)
}

func apaWebsite(c *models.Citation) string {
	parts := apaHead(c)
	if c.Title != "" {
		parts = append(parts, SentenceCase(c.Title))
	}
	if c.Publisher != nil {
		parts = append(parts, italic(*c.Publisher))
	}
	if c.URL != nil {
		parts = append(parts, *c.URL)
		return apaJoin(parts, true)
	}
	return apaJoin(parts, false)
}

func apaReport(c *models.Citation) string {
	parts := apaHead(c)
	if c.Title != "" {
		parts = append(parts, italic(SentenceCase(c.Title))+" [Report]")
	}
	if c.Publisher != nil {
		parts = append(parts, *c.Publisher)
	}
	if c.URL != nil {
		parts = append(parts, *c.URL)
		return apaJoin(parts, true)
	}
	return apaJoin(parts, false)
}

package render

import (
	"strconv"
	"strings"

	"citation-hand/models"
)

type mlaRenderer struct{}

func (mlaRenderer) Render(c *models.Citation) string {
	switch models.NormalizeType(string(c.Type)) {
	case models.TypeBook:
		return mlaBook(c)
	case models.TypeArticle:
		return mlaArticle(c)
	case models.TypeWebsite:
		return mlaWebsite(c)
	case models.TypeReport:
		return mlaReport(c)
	}
	return unsupported(c)
}

// mlaHead liefert die Autorenangabe mit genau einem abschließenden Punkt.
func mlaHead(c *models.Citation) []string {
	authors := MLAAuthors(c.Authors)
	if authors == "" {
		return nil
	}
	if !strings.HasSuffix(authors, ".") {
		authors += "."
	}
	return []string{authors}
}

func mlaYear(c *models.Citation) string {
	if c.Year == nil {
		return "n.d."
	}
	return strconv.Itoa(*c.Year)
}

func mlaBook(c *models.Citation) string {
	parts := mlaHead(c)
	if c.Title != "" {
		parts = append(parts, italic(TitleCase(c.Title))+".")
	}
	if ed := EditionOrdinal(c.Edition); ed != "" {
		parts = append(parts, ed+",")
	}
	if c.Publisher != nil {
		parts = append(parts, *c.Publisher+",")
	}
	if c.Year != nil {
		parts = append(parts, strconv.Itoa(*c.Year)+".")
	} else {
		parts = append(parts, "n.d.")
	}
	return strings.Join(parts, " ")
}

func mlaArticle(c *models.Citation) string {
	parts := mlaHead(c)
	if c.Title != "" {
		parts = append(parts, `"`+TitleCase(c.Title)+`."`)
	}
	if c.Journal != nil {
		source := []string{italic(TitleCase(*c.Journal))}
		if c.Volume != nil {
			vol := "vol. " + strconv.Itoa(*c.Volume)
			if c.Issue != nil {
				vol += ", no. " + *c.Issue
			}
			source = append(source, vol)
		}
		source = append(source, mlaYear(c))
		if c.Pages != nil {
			source = append(source, "pp. "+EnDash(*c.Pages))
		}
		parts = append(parts, strings.Join(source, ", ")+".")
	}
	switch {
	case c.DOI != nil:
		parts = append(parts, doiURL(*c.DOI))
	case c.URL != nil:
		parts = append(parts, *c.URL)
	}
	return strings.Join(parts, " ")
}

// mlaWebsite: mit Jahr "Site, 2023, URL", ohne Jahr "Site, URL. Accessed 2 Oct. 2025."
func mlaWebsite(c *models.Citation) string {
	parts := mlaHead(c)
	if c.Title != "" {
		parts = append(parts, `"`+TitleCase(c.Title)+`."`)
	}
	if c.Publisher != nil {
		parts = append(parts, italic(TitleCase(*c.Publisher))+",")
	}
	if c.Year != nil {
		parts = append(parts, strconv.Itoa(*c.Year)+",")
		if c.URL != nil {
			parts = append(parts, *c.URL)
		}
		return strings.Join(parts, " ")
	}
	if c.URL != nil {
		parts = append(parts, *c.URL+".")
	}
	if c.AccessDate != nil {
		parts = append(parts, AccessedDate(*c.AccessDate)+".")
	} else {
		parts = append(parts, "Accessed [Date].")
	}
	return strings.Join(parts, " ")
}

func mlaReport(c *models.Citation) string {
	parts := mlaHead(c)
	if c.Title != "" {
		parts = append(parts, italic(TitleCase(c.Title))+".")
	}
	if c.Publisher != nil {
		parts = append(parts, *c.Publisher+", "+mlaYear(c)+".")
	}
	if c.URL != nil {
		parts = append(parts, *c.URL)
	}
	return strings.Join(parts, " ")
}

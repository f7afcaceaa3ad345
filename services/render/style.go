// Package render erzeugt Literaturangaben im APA- und MLA-Stil. Alle Funktionen sind rein
// und deterministisch; Kursivschrift wird als <i>…</i> ausgegeben.
package render

import (
	"fmt"
	"strings"

	"citation-hand/domainerrors"
	"citation-hand/models"
)

// Style ist ein unterstützter Zitierstil.
type Style string

const (
	APA Style = "apa"
	MLA Style = "mla"
)

// Renderer formatiert einen validierten Datensatz.
type Renderer interface {
	Render(c *models.Citation) string
}

var renderers = map[Style]Renderer{
	APA: apaRenderer{},
	MLA: mlaRenderer{},
}

// Styles liefert alle unterstützten Stile.
func Styles() []Style {
	return []Style{APA, MLA}
}

// ParseStyle akzeptiert "apa" und "mla" unabhängig von Groß-/Kleinschreibung.
func ParseStyle(s string) (Style, error) {
	style := Style(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := renderers[style]; !ok {
		return "", domainerrors.Newf(domainerrors.CodeUnknownStyle, "unknown citation style %q", s)
	}
	return style, nil
}

// For liefert den Renderer eines Stils.
func For(style Style) (Renderer, error) {
	r, ok := renderers[style]
	if !ok {
		return nil, domainerrors.Newf(domainerrors.CodeUnknownStyle, "unknown citation style %q", style)
	}
	return r, nil
}

// Render formatiert c im gewünschten Stil.
func Render(c *models.Citation, style Style) (string, error) {
	r, err := For(style)
	if err != nil {
		return "", err
	}
	return r.Render(c), nil
}

func italic(s string) string {
	return "<i>" + s + "</i>"
}

func doiURL(doi string) string {
	return "https://doi.org/" + strings.TrimSpace(doi)
}

func unsupported(c *models.Citation) string {
	return fmt.Sprintf("Unsupported citation type: %s", c.Type)
}

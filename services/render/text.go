package render

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// trailingPunct sind Satzzeichen, die beim Umformen von Titelwörtern erhalten bleiben.
const trailingPunct = `.,;:!?"()[]{}`

// ambiguousAcronyms sind zugleich englische Wörter und gelten nur in Großschreibung als Akronym.
var ambiguousAcronyms = map[string]struct{}{"IT": {}}

// acronyms bleiben in Satzschreibweise immer groß.
var acronyms = map[string]struct{}{
	"API": {}, "AI": {}, "ML": {}, "IT": {}, "UI": {}, "UX": {}, "CEO": {}, "CTO": {}, "HTML": {},
	"CSS": {}, "JS": {}, "SQL": {}, "XML": {}, "HTTP": {}, "HTTPS": {}, "URL": {}, "JSON": {}, "PDF": {},
}

// minorWords werden in Titelschreibweise klein geschrieben, außer am Anfang oder Ende.
var minorWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "nor": {}, "for": {}, "so": {}, "yet": {},
	"of": {}, "in": {}, "on": {}, "at": {}, "by": {}, "to": {}, "up": {}, "as": {}, "is": {}, "if": {}, "be": {},
	"with": {}, "from": {}, "into": {}, "over": {}, "upon": {}, "onto": {}, "than": {}, "like": {},
	"via": {}, "per": {}, "vs": {}, "vs.": {}, "v.": {}, "v": {},
}

var mlaMonths = [...]string{"Jan.", "Feb.", "Mar.", "Apr.", "May", "Jun.", "Jul.", "Aug.", "Sep.", "Oct.", "Nov.", "Dec."}

// EditionOrdinal liefert z.B. "2nd ed." und "" für die erste Auflage oder ohne Angabe.
// 11, 12 und 13 (auch 111 bis 113) enden immer auf "th".
func EditionOrdinal(edition *int) string {
	if edition == nil || *edition == 1 {
		return ""
	}
	n := *edition
	suffix := "th"
	if mod := n % 100; mod < 10 || mod > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s ed.", n, suffix)
}

// EnDash ersetzt Bindestriche in Seitenangaben durch Halbgeviertstriche.
func EnDash(pages string) string {
	return strings.ReplaceAll(pages, "-", "–")
}

// SentenceCase: nur das erste Wort jedes durch ":" getrennten Abschnitts wird groß
// geschrieben, bekannte Akronyme und kurze Großbuchstaben-Wörter (2 bis 5 Zeichen) bleiben.
func SentenceCase(title string) string {
	if title == "" {
		return ""
	}
	parts := strings.Split(title, ":")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		words := strings.Fields(part)
		converted := make([]string, 0, len(words))
		for i, word := range words {
			core, punct := splitTrailingPunct(word)
			switch {
			case core == "":
				converted = append(converted, word)
			case isAcronym(core):
				converted = append(converted, strings.ToUpper(core)+punct)
			case isShortCaps(core):
				converted = append(converted, word)
			case i == 0:
				converted = append(converted, capitalize(core)+punct)
			default:
				converted = append(converted, strings.ToLower(core)+punct)
			}
		}
		out = append(out, strings.Join(converted, " "))
	}
	return strings.Join(out, ": ")
}

// TitleCase: jedes Wort groß außer kleinen Funktionswörtern; erstes und letztes Wort jedes
// Abschnitts immer groß. Kurze Großbuchstaben-Wörter wie "AI" bleiben erhalten.
func TitleCase(title string) string {
	if title == "" {
		return ""
	}
	parts := strings.Split(title, ":")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		words := strings.Fields(part)
		converted := make([]string, 0, len(words))
		for i, word := range words {
			core := strings.ToLower(strings.Trim(word, trailingPunct))
			_, minor := minorWords[core]
			switch {
			case isShortCaps(strings.Trim(word, trailingPunct)):
				converted = append(converted, word)
			case i == 0 || i == len(words)-1:
				converted = append(converted, capitalize(word))
			case minor:
				converted = append(converted, strings.ToLower(word))
			default:
				converted = append(converted, capitalize(word))
			}
		}
		out = append(out, strings.Join(converted, " "))
	}
	return strings.Join(out, ": ")
}

// AccessedDate formatiert "2025-10-02" als "Accessed 2 Oct. 2025".
func AccessedDate(date string) string {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return "Accessed " + date
	}
	return fmt.Sprintf("Accessed %d %s %d", t.Day(), mlaMonths[t.Month()-1], t.Year())
}

func splitTrailingPunct(word string) (string, string) {
	core := strings.TrimRight(word, trailingPunct)
	return core, word[len(core):]
}

func isAcronym(word string) bool {
	upper := strings.ToUpper(word)
	if _, ok := acronyms[upper]; !ok {
		return false
	}
	if _, ok := ambiguousAcronyms[upper]; ok {
		return word == upper
	}
	return true
}

// isShortCaps: 2 bis 5 Zeichen, mindestens ein Buchstabe, keine Kleinbuchstaben.
func isShortCaps(word string) bool {
	n := utf8.RuneCountInString(word)
	if n < 2 || n > 5 {
		return false
	}
	hasLetter := false
	for _, r := range word {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// capitalize: erstes Zeichen groß, Rest klein.
func capitalize(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError {
		return word
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(word[size:])
}

func surname(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

func givenNames(name string) []string {
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return nil
	}
	return parts[:len(parts)-1]
}

// SortKey liefert den Nachnamen des Erstautors für die Sortierung im Literaturverzeichnis.
func SortKey(authors []string) string {
	if len(authors) == 0 {
		return ""
	}
	return strings.ToLower(surname(authors[0]))
}

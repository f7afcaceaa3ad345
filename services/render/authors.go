package render

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// apaMaxListed ist die Grenze, ab der APA die Autorenliste kürzt.
const apaMaxListed = 20

// APAName wandelt "John Michael Smith" in "Smith, J. M." um. Einzelne Namen bleiben unverändert.
func APAName(name string) string {
	name = strings.TrimSpace(name)
	given := givenNames(name)
	if len(given) == 0 {
		return name
	}
	initials := make([]string, len(given))
	for i, g := range given {
		r, _ := utf8.DecodeRuneInString(g)
		initials[i] = string(unicode.ToUpper(r)) + "."
	}
	return surname(name) + ", " + strings.Join(initials, " ")
}

// APAAuthors verbindet die Autoren nach APA: zwei mit ", &", bis zwanzig mit Kommas und
// "&" vor dem letzten, darüber die ersten 19, "..." und der letzte Autor.
func APAAuthors(authors []string) string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		if n := APAName(a); n != "" {
			names = append(names, n)
		}
	}
	switch n := len(names); {
	case n == 0:
		return ""
	case n == 1:
		return names[0]
	case n == 2:
		return names[0] + ", & " + names[1]
	case n <= apaMaxListed:
		return strings.Join(names[:n-1], ", ") + ", & " + names[n-1]
	default:
		return strings.Join(names[:apaMaxListed-1], ", ") + ", ..., & " + names[n-1]
	}
}

// MLAName wandelt "John Michael Smith" in "Smith, John Michael" um.
func MLAName(name string) string {
	name = strings.TrimSpace(name)
	given := givenNames(name)
	if len(given) == 0 {
		return name
	}
	return surname(name) + ", " + strings.Join(given, " ")
}

// MLAAuthors: nur der erste Autor wird umgestellt; bis drei Autoren werden ausgeschrieben,
// ab vier folgt "et al.".
func MLAAuthors(authors []string) string {
	if len(authors) == 0 {
		return ""
	}
	first := MLAName(authors[0])
	switch len(authors) {
	case 1:
		return first
	case 2:
		return first + ", and " + strings.TrimSpace(authors[1])
	case 3:
		return first + ", " + strings.TrimSpace(authors[1]) + ", and " + strings.TrimSpace(authors[2])
	default:
		return first + ", et al."
	}
}

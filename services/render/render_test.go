package render

import (
	"fmt"
	"strings"
	"testing"

	"citation-hand/domainerrors"
	"citation-hand/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func greatBook() *models.Citation {
	return &models.Citation{
		Type:      models.TypeBook,
		Title:     "The Great Book",
		Authors:   []string{"John Smith", "Alice Doe"},
		Year:      models.Ref(2023),
		Publisher: models.Ref("Academic Press"),
		Place:     models.Ref("New York"),
		Edition:   models.Ref(2),
	}
}

func deepLearning() *models.Citation {
	return &models.Citation{
		Type:    models.TypeArticle,
		Title:   "Deep learning",
		Authors: []string{"Yann LeCun", "Yoshua Bengio", "Geoffrey Hinton"},
		Year:    models.Ref(2015),
		Journal: models.Ref("Nature"),
		Volume:  models.Ref(521),
		Issue:   models.Ref("7553"),
		Pages:   models.Ref("436-444"),
		DOI:     models.Ref("10.1038/nature14539"),
	}
}

func guide() *models.Citation {
	return &models.Citation{
		Type:       models.TypeWebsite,
		Title:      "How to write: a guide",
		Authors:    []string{"Jane Roe"},
		Publisher:  models.Ref("Writing Center"),
		URL:        models.Ref("https://example.org/guide"),
		AccessDate: models.Ref("2025-10-02"),
	}
}

func annualReport() *models.Citation {
	return &models.Citation{
		Type:      models.TypeReport,
		Title:     "Annual report on AI safety",
		Authors:   []string{"Ann Lee"},
		Year:      models.Ref(2020),
		Publisher: models.Ref("Policy Institute"),
		Place:     models.Ref("London"),
		URL:       models.Ref("https://example.org/r.pdf"),
	}
}

func TestRenderAPA(t *testing.T) {
	noURL := annualReport()
	noURL.URL = nil
	firstEdition := greatBook()
	firstEdition.Edition = models.Ref(1)
	noDOI := deepLearning()
	noDOI.DOI = nil
	noDOI.Issue = nil

	tests := []struct {
		name string
		in   *models.Citation
		want string
	}{
		{"book with edition", greatBook(), "Smith, J., & Doe, A. (2023). <i>The great book</i> (2nd ed.). Academic Press."},
		{"first edition is omitted", firstEdition, "Smith, J., & Doe, A. (2023). <i>The great book</i>. Academic Press."},
		{"article with doi", deepLearning(), "LeCun, Y., Bengio, Y., & Hinton, G. (2015). Deep learning. <i>Nature</i>, <i>521</i>(7553), 436–444. https://doi.org/10.1038/nature14539"},
		{"article without doi", noDOI, "LeCun, Y., Bengio, Y., & Hinton, G. (2015). Deep learning. <i>Nature</i>, <i>521</i>, 436–444."},
		{"website without year", guide(), "Roe, J. (n.d.). How to write: A guide. <i>Writing Center</i>. https://example.org/guide"},
		{"report with url", annualReport(), "Lee, A. (2020). <i>Annual report on AI safety</i> [Report]. Policy Institute. https://example.org/r.pdf"},
		{"report without url", noURL, "Lee, A. (2020). <i>Annual report on AI safety</i> [Report]. Policy Institute."},
		{"unknown type", &models.Citation{Type: "thesis", Title: "X", Authors: []string{"A B"}}, "Unsupported citation type: thesis"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.in, APA)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderMLA(t *testing.T) {
	withYear := guide()
	withYear.Year = models.Ref(2024)
	noAccess := guide()
	noAccess.AccessDate = nil
	noYear := greatBook()
	noYear.Year = nil
	noYear.Edition = nil
	many := greatBook()
	many.Authors = []string{"John Smith", "Alice Doe", "Bob Roe", "Carl Poe"}
	many.Edition = nil

	tests := []struct {
		name string
		in   *models.Citation
		want string
	}{
		{"book with edition", greatBook(), "Smith, John, and Alice Doe. <i>The Great Book</i>. 2nd ed., Academic Press, 2023."},
		{"book without year", noYear, "Smith, John, and Alice Doe. <i>The Great Book</i>. Academic Press, n.d."},
		{"four authors use et al", many, "Smith, John, et al. <i>The Great Book</i>. Academic Press, 2023."},
		{"article", deepLearning(), `LeCun, Yann, Yoshua Bengio, and Geoffrey Hinton. "Deep Learning." <i>Nature</i>, vol. 521, no. 7553, 2015, pp. 436–444. https://doi.org/10.1038/nature14539`},
		{"website with year", withYear, `Roe, Jane. "How to Write: A Guide." <i>Writing Center</i>, 2024, https://example.org/guide`},
		{"website with access date", guide(), `Roe, Jane. "How to Write: A Guide." <i>Writing Center</i>, https://example.org/guide. Accessed 2 Oct. 2025.`},
		{"website without access date", noAccess, `Roe, Jane. "How to Write: A Guide." <i>Writing Center</i>, https://example.org/guide. Accessed [Date].`},
		{"report", annualReport(), "Lee, Ann. <i>Annual Report on AI Safety</i>. Policy Institute, 2020. https://example.org/r.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.in, MLA)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEditionOrdinal(t *testing.T) {
	want := map[int]string{
		1: "", 2: "2nd ed.", 3: "3rd ed.", 4: "4th ed.", 10: "10th ed.",
		11: "11th ed.", 12: "12th ed.", 13: "13th ed.",
		21: "21st ed.", 22: "22nd ed.", 23: "23rd ed.",
		101: "101st ed.", 102: "102nd ed.", 103: "103rd ed.", 104: "104th ed.", 105: "105th ed.",
		106: "106th ed.", 107: "107th ed.", 108: "108th ed.", 109: "109th ed.", 110: "110th ed.",
		111: "111th ed.", 112: "112th ed.", 113: "113th ed.",
	}
	for n, w := range want {
		assert.Equal(t, w, EditionOrdinal(models.Ref(n)), "edition %d", n)
	}
	assert.Equal(t, "", EditionOrdinal(nil))
}

func TestEditionInRenderedBook(t *testing.T) {
	for _, n := range []int{3, 11, 21, 22, 23, 112} {
		c := greatBook()
		c.Edition = models.Ref(n)
		apa, err := Render(c, APA)
		require.NoError(t, err)
		assert.Contains(t, apa, "<i>The great book</i> ("+EditionOrdinal(c.Edition)+"). Academic Press.")

		mla, err := Render(c, MLA)
		require.NoError(t, err)
		assert.Contains(t, mla, "<i>The Great Book</i>. "+EditionOrdinal(c.Edition)+", Academic Press")
	}
}

func numberedAuthors(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Ann Surname%c", 'A'+i)
	}
	return out
}

func TestAPAAuthorTruncation(t *testing.T) {
	twenty := APAAuthors(numberedAuthors(20))
	assert.Equal(t, 20, strings.Count(twenty, "Surname"))
	assert.NotContains(t, twenty, "...")
	assert.True(t, strings.HasSuffix(twenty, ", & SurnameT, A."))

	twentyFive := APAAuthors(numberedAuthors(25))
	assert.Equal(t, 20, strings.Count(twentyFive, "Surname"))
	assert.True(t, strings.HasSuffix(twentyFive, "SurnameS, A., ..., & SurnameY, A."))
	assert.NotContains(t, twentyFive, "SurnameT")
}

func TestAuthorNames(t *testing.T) {
	assert.Equal(t, "Smith, J. M.", APAName("John Michael Smith"))
	assert.Equal(t, "Plato", APAName(" Plato "))
	assert.Equal(t, "Ñúñez, J.", APAName("josé Ñúñez"))
	assert.Equal(t, "Smith, John Michael", MLAName("John Michael Smith"))
	assert.Equal(t, "Plato", MLAName("Plato"))

	assert.Equal(t, "Smith, J.", APAAuthors([]string{"John Smith"}))
	assert.Equal(t, "Smith, J., & Doe, A.", APAAuthors([]string{"John Smith", "Alice Doe"}))
	assert.Equal(t, "Smith, J., Doe, A., & Roe, B.", APAAuthors([]string{"John Smith", "Alice Doe", "Bob Roe"}))
	assert.Equal(t, "Smith, John, Alice Doe, and Bob Roe", MLAAuthors([]string{"John Smith", "Alice Doe", "Bob Roe"}))
	assert.Equal(t, "", MLAAuthors(nil))
}

func TestSentenceCase(t *testing.T) {
	tests := map[string]string{
		"The Great Book":                             "The great book",
		"Machine Learning With Api Design: a primer": "Machine learning with API design: A primer",
		"NASA and the Moon":                          "NASA and the moon",
		"What Is It? An IT Story":                    "What is it? an IT story",
		"understanding json (and xml).":              "Understanding JSON (and XML).",
		"":                                           "",
	}
	for in, want := range tests {
		assert.Equal(t, want, SentenceCase(in), in)
	}
}

func TestTitleCase(t *testing.T) {
	tests := map[string]string{
		"the lord of the rings":                        "The Lord of the Rings",
		"a tale of two cities: the return of the king": "A Tale of Two Cities: The Return of the King",
		"war and peace":                                "War and Peace",
		"what is AI for":                               "What is AI For",
	}
	for in, want := range tests {
		assert.Equal(t, want, TitleCase(in), in)
	}
}

func TestDashAndAccessDate(t *testing.T) {
	assert.Equal(t, "12–34, 40–41", EnDash("12-34, 40-41"))
	assert.Equal(t, "Accessed 9 May 2025", AccessedDate("2025-05-09"))
	assert.Equal(t, "Accessed soon", AccessedDate("soon"))
}

func TestParseStyle(t *testing.T) {
	s, err := ParseStyle(" MLA ")
	require.NoError(t, err)
	assert.Equal(t, MLA, s)

	_, err = ParseStyle("chicago")
	assert.True(t, domainerrors.HasCode(err, domainerrors.CodeUnknownStyle))

	_, err = Render(greatBook(), Style("harvard"))
	assert.True(t, domainerrors.HasCode(err, domainerrors.CodeUnknownStyle))
}

func TestRenderIsDeterministic(t *testing.T) {
	for _, style := range Styles() {
		first, err := Render(deepLearning(), style)
		require.NoError(t, err)
		for range 5 {
			again, _ := Render(deepLearning(), style)
			assert.Equal(t, first, again)
		}
	}
}

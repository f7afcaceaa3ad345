package europepmc

import "time"

// SearchResponse ist die Top-Level-Struktur der Europe PMC API-Antwort (resultType=core).
type SearchResponse struct {
	HitCount   int `json:"hitCount"`
	ResultList struct {
		Result []Article `json:"result"`
	} `json:"resultList"`
}

// Article repräsentiert einen einzelnen Artikel in der API-Antwort.
type Article struct {
	ID                   string `json:"id"`
	Source               string `json:"source"`
	PMID                 string `json:"pmid"`
	DOI                  string `json:"doi"`
	Title                string `json:"title"`
	AuthorString         string `json:"authorString"`
	PubYear              string `json:"pubYear"`
	PageInfo             string `json:"pageInfo"`
	FirstPublicationDate string `json:"firstPublicationDate"`
	AuthorList           struct {
		Author []Author `json:"author"`
	} `json:"authorList"`
	JournalInfo JournalInfo `json:"journalInfo"`
}

// Author ist ein Eintrag der Autorenliste.
type Author struct {
	FullName  string `json:"fullName"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// JournalInfo enthält die Angaben zur Ausgabe.
type JournalInfo struct {
	Issue             string `json:"issue"`
	Volume            string `json:"volume"`
	YearOfPublication int    `json:"yearOfPublication"`
	Journal           struct {
		Title string `json:"title"`
	} `json:"journal"`
}

// Hilfsfunktion zum sicheren Parsen von Daten.
func parseEuroDate(dateStr string) *time.Time {
	layouts := []string{"2006-01-02", "2006-01", "2006"}
	for _, layout := range layouts {
		t, err := time.Parse(layout, dateStr)
		if err == nil {
			return &t
		}
	}
	return nil
}

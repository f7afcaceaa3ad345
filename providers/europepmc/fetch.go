package europepmc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"citation-hand/domainerrors"
	"citation-hand/models"
)

// DefaultBaseURL ist der Such-Endpunkt der Europe PMC REST-API.
const DefaultBaseURL = "https://www.ebi.ac.uk/europepmc/webservices/rest/search"

// Client sucht Artikel per DOI und liefert sie als Zitationsfelder.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *zap.Logger
}

// NewClient erstellt einen neuen Europe PMC Client.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
		Logger:  logger,
	}
}

// Lookup sucht einen Artikel über seine DOI. Gibt es keinen Treffer, wird ein
// not_found-Fehler geliefert.
func (c *Client) Lookup(ctx context.Context, doi string) (*models.CitationFields, error) {
	doi = strings.TrimSpace(doi)
	if doi == "" {
		return nil, domainerrors.ForField(domainerrors.CodeMissingField, "doi", "doi is required")
	}
	log := c.Logger.With(zap.String("doi", doi))

	searchURL := fmt.Sprintf("%s?query=%s&format=json&resultType=core&pageSize=1",
		c.BaseURL, url.QueryEscape(fmt.Sprintf("DOI:%q", doi)))
	log.Debug("Rufe Europe PMC API auf", zap.String("url", searchURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("europe pmc request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("europe pmc returned status %d", resp.StatusCode)
	}

	var searchResponse SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResponse); err != nil {
		return nil, fmt.Errorf("decode europe pmc response: %w", err)
	}
	for _, article := range searchResponse.ResultList.Result {
		if strings.EqualFold(article.DOI, doi) {
			log.Info("Artikel auf Europe PMC gefunden.", zap.String("id", article.ID))
			return mapArticleToFields(&article), nil
		}
	}
	log.Info("Kein Artikel zur DOI gefunden.")
	return nil, domainerrors.Newf(domainerrors.CodeNotFound, "no article found for doi %s", doi)
}

// mapArticleToFields konvertiert einen Europe PMC Artikel in Eingabefelder einer
// Zitation vom Typ article. Fehlende Angaben bleiben ungesetzt und fallen in der
// Validierung auf.
func mapArticleToFields(article *Article) *models.CitationFields {
	f := &models.CitationFields{
		Type:  models.Some(string(models.TypeArticle)),
		Title: models.Some(strings.TrimSuffix(strings.TrimSpace(article.Title), ".")),
	}
	if authors := authorNames(article); len(authors) > 0 {
		f.Authors = models.Some(authors)
	}
	if year := publicationYear(article); year > 0 {
		f.Year = models.Some(year)
	}
	if t := strings.TrimSpace(article.JournalInfo.Journal.Title); t != "" {
		f.Journal = models.Some(t)
	}
	if v, err := strconv.Atoi(strings.TrimSpace(article.JournalInfo.Volume)); err == nil {
		f.Volume = models.Some(v)
	}
	if issue := strings.TrimSpace(article.JournalInfo.Issue); issue != "" {
		f.Issue = models.Some(issue)
	}
	if pages := strings.TrimSpace(article.PageInfo); pages != "" {
		f.Pages = models.Some(pages)
	}
	if article.DOI != "" {
		f.DOI = models.Some(article.DOI)
	}
	return f
}

// authorNames bevorzugt "Vorname Nachname" aus der Autorenliste und fällt sonst auf den
// authorString ("LeCun Y, Bengio Y.") zurück.
func authorNames(article *Article) []string {
	var out []string
	for _, a := range article.AuthorList.Author {
		switch {
		case a.FirstName != "" && a.LastName != "":
			out = append(out, a.FirstName+" "+a.LastName)
		case a.FullName != "":
			out = append(out, a.FullName)
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, name := range strings.Split(strings.TrimSuffix(article.AuthorString, "."), ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func publicationYear(article *Article) int {
	if y := article.JournalInfo.YearOfPublication; y > 0 {
		return y
	}
	if y, err := strconv.Atoi(article.PubYear); err == nil {
		return y
	}
	if t := parseEuroDate(article.FirstPublicationDate); t != nil {
		return t.Year()
	}
	return 0
}

package europepmc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"citation-hand/domainerrors"
)

const coreResponse = `{
  "hitCount": 1,
  "resultList": {"result": [{
    "id": "26017442",
    "source": "MED",
    "pmid": "26017442",
    "doi": "10.1038/nature14539",
    "title": "Deep learning.",
    "authorString": "LeCun Y, Bengio Y, Hinton G.",
    "pubYear": "2015",
    "pageInfo": "436-444",
    "authorList": {"author": [
      {"fullName": "LeCun Y", "firstName": "Yann", "lastName": "LeCun"},
      {"fullName": "Bengio Y", "firstName": "Yoshua", "lastName": "Bengio"},
      {"fullName": "Hinton G"}
    ]},
    "journalInfo": {"issue": "7553", "volume": "521", "yearOfPublication": 2015, "journal": {"title": "Nature"}}
  }]}
}`

func TestLookup(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		assert.Equal(t, "core", r.URL.Query().Get("resultType"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(coreResponse))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zap.NewNop())
	f, err := c.Lookup(context.Background(), " 10.1038/NATURE14539 ")
	require.NoError(t, err)

	assert.Equal(t, `DOI:"10.1038/NATURE14539"`, gotQuery)
	assert.Equal(t, "article", f.Type.Value)
	assert.Equal(t, "Deep learning", f.Title.Value)
	assert.Equal(t, []string{"Yann LeCun", "Yoshua Bengio", "Hinton G"}, f.Authors.Value)
	assert.Equal(t, 2015, f.Year.Value)
	assert.Equal(t, "Nature", f.Journal.Value)
	assert.Equal(t, 521, f.Volume.Value)
	assert.Equal(t, "7553", f.Issue.Value)
	assert.Equal(t, "436-444", f.Pages.Value)
	assert.Equal(t, "10.1038/nature14539", f.DOI.Value)
	assert.False(t, f.Publisher.Set)
}

func TestLookupNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hitCount":0,"resultList":{"result":[]}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, zap.NewNop()).Lookup(context.Background(), "10.1/none")
	require.Error(t, err)
	assert.True(t, domainerrors.HasCode(err, domainerrors.CodeNotFound))
}

func TestLookupUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, zap.NewNop()).Lookup(context.Background(), "10.1/x")
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeInternal, domainerrors.CodeOf(err))
}

func TestLookupRequiresDOI(t *testing.T) {
	_, err := NewClient("", zap.NewNop()).Lookup(context.Background(), "  ")
	assert.True(t, domainerrors.HasCode(err, domainerrors.CodeMissingField))
}

func TestAuthorNamesFallsBackToAuthorString(t *testing.T) {
	a := &Article{AuthorString: "LeCun Y, Bengio Y."}
	assert.Equal(t, []string{"LeCun Y", "Bengio Y"}, authorNames(a))
}

func TestPublicationYearFallbacks(t *testing.T) {
	assert.Equal(t, 2019, publicationYear(&Article{FirstPublicationDate: "2019-04"}))
	assert.Equal(t, 0, publicationYear(&Article{}))
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"citation-hand/config"
	"citation-hand/domainerrors"
	"citation-hand/models"
	"citation-hand/services"
	"citation-hand/storage"
)

type stubLookup struct {
	fields *models.CitationFields
	err    error
}

func (s stubLookup) Lookup(context.Context, string) (*models.CitationFields, error) {
	return s.fields, s.err
}

const bookJSON = `{
	"type": "book",
	"title": "The Great Book",
	"authors": ["John Smith", "Alice Doe"],
	"year": 2023,
	"publisher": "Academic Press",
	"place": "New York"
}`

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T, cfg *config.Config, lookup DOILookup) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	now := func() time.Time { return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC) }
	engine := services.NewEngine(storage.NewMemoryProvider(), zap.NewNop(), now)
	if cfg == nil {
		cfg = &config.Config{DefaultStyle: "apa"}
	}
	return &testServer{t: t, router: newRouter(cfg, engine, lookup, zap.NewNop())}
}

func (s *testServer) do(method, path, body string, headers ...string) (*httptest.ResponseRecorder, map[string]any) {
	s.t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func (s *testServer) project(name string) int {
	s.t.Helper()
	w, body := s.do(http.MethodPost, "/projects", fmt.Sprintf(`{"name": %q}`, name))
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return int(body["id"].(float64))
}

func citationID(body map[string]any) int {
	return int(body["citation"].(map[string]any)["id"].(float64))
}

func TestCitationLifecycle(t *testing.T) {
	s := newTestServer(t, nil, stubLookup{})
	p1 := s.project("Thesis")
	p2 := s.project("Paper")

	w, body := s.do(http.MethodPost, fmt.Sprintf("/projects/%d/citations", p1), bookJSON)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "created", body["outcome"])
	id := citationID(body)

	w, body = s.do(http.MethodPost, fmt.Sprintf("/projects/%d/citations", p1), bookJSON)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, string(domainerrors.CodeDuplicateCitation), body["code"])
	assert.EqualValues(t, id, body["existing_id"])

	w, body = s.do(http.MethodPost, fmt.Sprintf("/projects/%d/citations", p2), bookJSON)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "reused", body["outcome"])
	assert.Equal(t, id, citationID(body))

	w, body = s.do(http.MethodPut, fmt.Sprintf("/projects/%d/citations/%d", p1, id), `{"edition": 2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "forked", body["outcome"])
	forkID := citationID(body)
	assert.NotEqual(t, id, forkID)

	w, body = s.do(http.MethodGet, fmt.Sprintf("/citations/%d?format=apa", forkID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Smith, J., & Doe, A. (2023). <i>The great book</i> (2nd ed.). Academic Press.", body["rendered"])

	w, _ = s.do(http.MethodGet, fmt.Sprintf("/citations/%d?format=chicago", forkID), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = s.do(http.MethodDelete, fmt.Sprintf("/projects/%d/citations/%d", p2, id), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "deleted", body["outcome"])

	w, _ = s.do(http.MethodGet, fmt.Sprintf("/citations/%d", id), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = s.do(http.MethodDelete, fmt.Sprintf("/citations/%d", forkID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "deleted", body["outcome"])
}

func TestValidationErrors(t *testing.T) {
	s := newTestServer(t, nil, stubLookup{})
	p := s.project("Thesis")
	path := fmt.Sprintf("/projects/%d/citations", p)

	w, body := s.do(http.MethodPost, path, `{"type": "book", "title": "X", "authors": ["Ann Lee"], "year": 2020, "publisher": "P"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(domainerrors.CodeMissingField), body["code"])
	assert.Equal(t, "place", body["field"])

	w, body = s.do(http.MethodPost, path, `{"type": "podcast"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(domainerrors.CodeUnknownType), body["code"])

	w, _ = s.do(http.MethodPost, path, `{"type": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPost, "/projects/999/citations", bookJSON)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodGet, "/citations/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBibliographyFallsBackToDefaultStyle(t *testing.T) {
	s := newTestServer(t, &config.Config{DefaultStyle: "mla"}, stubLookup{})
	p := s.project("Thesis")
	w, _ := s.do(http.MethodPost, fmt.Sprintf("/projects/%d/citations", p), bookJSON)
	require.Equal(t, http.StatusCreated, w.Code)

	w, body := s.do(http.MethodGet, fmt.Sprintf("/projects/%d/bibliography?format=harvard", p), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "mla", body["format"])
	assert.EqualValues(t, 1, body["citation_count"])
	assert.Equal(t, []any{"Smith, John, and Alice Doe. <i>The Great Book</i>. Academic Press, 2023."}, body["entries"])

	w, body = s.do(http.MethodGet, fmt.Sprintf("/projects/%d/bibliography?format=APA", p), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "apa", body["format"])

	w, _ = s.do(http.MethodGet, "/projects/999/bibliography", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjectRoutes(t *testing.T) {
	s := newTestServer(t, nil, stubLookup{})
	p := s.project("Thesis")

	w, body := s.do(http.MethodPost, "/projects", `{"name": "THESIS"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, string(domainerrors.CodeConflict), body["code"])

	w, _ = s.do(http.MethodPost, fmt.Sprintf("/projects/%d/citations", p), bookJSON)
	require.Equal(t, http.StatusCreated, w.Code)

	w, body = s.do(http.MethodDelete, fmt.Sprintf("/projects/%d", p), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["orphans_removed"])

	w, _ = s.do(http.MethodGet, fmt.Sprintf("/projects/%d", p), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImportByDOI(t *testing.T) {
	fields := &models.CitationFields{
		Type:    models.Some("article"),
		Title:   models.Some("Deep learning"),
		Authors: models.Some([]string{"Yann LeCun", "Yoshua Bengio"}),
		Year:    models.Some(2015),
		Journal: models.Some("Nature"),
		Volume:  models.Some(521),
		Pages:   models.Some("436-444"),
		DOI:     models.Some("10.1038/nature14539"),
	}
	s := newTestServer(t, nil, stubLookup{fields: fields})
	p := s.project("Thesis")

	w, body := s.do(http.MethodPost, fmt.Sprintf("/projects/%d/citations/import", p), `{"doi": "10.1038/nature14539"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "article", body["citation"].(map[string]any)["type"])

	failing := newTestServer(t, nil, stubLookup{err: fmt.Errorf("connection refused")})
	p = failing.project("Thesis")
	w, _ = failing.do(http.MethodPost, fmt.Sprintf("/projects/%d/citations/import", p), `{"doi": "10.1/x"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	missing := newTestServer(t, nil, stubLookup{err: domainerrors.New(domainerrors.CodeNotFound, "no article found")})
	p = missing.project("Thesis")
	w, _ = missing.do(http.MethodPost, fmt.Sprintf("/projects/%d/citations/import", p), `{"doi": "10.1/x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMiddleware(t *testing.T) {
	s := newTestServer(t, &config.Config{DefaultStyle: "apa", APISecretKey: "secret"}, stubLookup{})

	w, body := s.do(http.MethodGet, "/projects", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized: Invalid API Key", body["error"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w, _ = s.do(http.MethodGet, "/projects", "", "X-API-KEY", "secret", "X-Request-ID", "abc-123")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "[]", w.Body.String())
}

func TestStatusFor(t *testing.T) {
	tests := map[domainerrors.Code]int{
		domainerrors.CodeNotFound:          http.StatusNotFound,
		domainerrors.CodeFormat:            http.StatusBadRequest,
		domainerrors.CodeUnknownStyle:      http.StatusBadRequest,
		domainerrors.CodeDuplicateCitation: http.StatusConflict,
		domainerrors.CodeInternal:          http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, statusFor(code), code)
	}
}

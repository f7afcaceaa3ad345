package main

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"citation-hand/config"
	"citation-hand/domainerrors"
	"citation-hand/models"
	"citation-hand/services"
	"citation-hand/services/render"
)

// DOILookup liefert die Felder eines Artikels zu einer DOI (providers/europepmc).
type DOILookup interface {
	Lookup(ctx context.Context, doi string) (*models.CitationFields, error)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

// requestIDMiddleware übernimmt X-Request-ID oder vergibt eine neue ID.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func newRouter(cfg *config.Config, engine *services.Engine, lookup DOILookup, log *zap.Logger) *gin.Engine {
	router := gin.Default()
	router.Use(requestIDMiddleware())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupProjectRoutes(router, cfg, engine, log)
	setupProjectCitationRoutes(router, engine, lookup, log)
	setupCitationRoutes(router, engine, log)
	return router
}

// statusFor bildet Domänencodes auf HTTP-Status ab.
func statusFor(code domainerrors.Code) int {
	switch code {
	case domainerrors.CodeNotFound:
		return http.StatusNotFound
	case domainerrors.CodeMissingField, domainerrors.CodeInvalidField, domainerrors.CodeFormat,
		domainerrors.CodeUnknownType, domainerrors.CodeUnknownStyle, domainerrors.CodeBadRequest:
		return http.StatusBadRequest
	case domainerrors.CodeDuplicateCitation, domainerrors.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, log *zap.Logger, err error) {
	code := domainerrors.CodeOf(err)
	status := statusFor(code)
	if status == http.StatusInternalServerError {
		log.Error("Request failed", zap.String("path", c.FullPath()), zap.String("request_id", c.GetString("request_id")), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal server error", "code": domainerrors.CodeInternal})
		return
	}
	body := gin.H{"error": err.Error(), "code": code}
	if field := domainerrors.FieldOf(err); field != "" {
		body["field"] = field
	}
	if id, ok := domainerrors.ExistingID(err); ok {
		body["existing_id"] = id
	}
	c.JSON(status, body)
}

// paramID liest eine numerische Pfad-ID.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name, "code": domainerrors.CodeBadRequest})
		return 0, false
	}
	return uint(id), true
}

func bindFields(c *gin.Context) (*models.CitationFields, bool) {
	var fields models.CitationFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": domainerrors.CodeBadRequest})
		return nil, false
	}
	return &fields, true
}

func resultStatus(res *services.Result) int {
	if res.Outcome == services.OutcomeCreated {
		return http.StatusCreated
	}
	return http.StatusOK
}

// bibliographyStyle fällt bei unbekanntem Format auf den Standardstil zurück.
func bibliographyStyle(cfg *config.Config, format string, log *zap.Logger) render.Style {
	if format != "" {
		style, err := render.ParseStyle(format)
		if err == nil {
			return style
		}
		log.Warn("Unbekanntes Format, verwende Standardstil.", zap.String("format", format), zap.String("default", cfg.DefaultStyle))
	}
	style, err := render.ParseStyle(cfg.DefaultStyle)
	if err != nil {
		return render.APA
	}
	return style
}

func setupProjectRoutes(router *gin.Engine, cfg *config.Config, engine *services.Engine, log *zap.Logger) {
	rg := router.Group("/projects")

	rg.POST("", func(c *gin.Context) {
		var req struct {
			Name string `json:"name" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. 'name' field is required.", "code": domainerrors.CodeBadRequest})
			return
		}
		project, err := engine.CreateProject(c.Request.Context(), req.Name)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, project)
	})

	rg.GET("", func(c *gin.Context) {
		projects, err := engine.ListProjects(c.Request.Context())
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, projects)
	})

	rg.GET("/:id", func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		project, err := engine.GetProject(c.Request.Context(), id)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, project)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		removed, err := engine.DeleteProject(c.Request.Context(), id)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true, "orphans_removed": removed})
	})

	// Literaturverzeichnis; unbekannte Formate fallen auf den Standardstil zurück
	rg.GET("/:id/bibliography", func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		style := bibliographyStyle(cfg, c.Query("format"), log)
		bib, err := engine.AssembleBibliography(c.Request.Context(), id, style)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, bib)
	})
}

func setupProjectCitationRoutes(router *gin.Engine, engine *services.Engine, lookup DOILookup, log *zap.Logger) {
	rg := router.Group("/projects/:id/citations")

	rg.GET("", func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		citations, err := engine.ListByProject(c.Request.Context(), id)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, citations)
	})

	rg.POST("", func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		fields, ok := bindFields(c)
		if !ok {
			return
		}
		res, err := engine.Create(c.Request.Context(), id, fields)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(resultStatus(res), res)
	})

	// Import über Europe PMC: die DOI wird aufgelöst und wie eine normale Eingabe angelegt
	rg.POST("/import", func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req struct {
			DOI string `json:"doi" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. 'doi' field is required.", "code": domainerrors.CodeBadRequest})
			return
		}
		fields, err := lookup.Lookup(c.Request.Context(), req.DOI)
		if err != nil {
			if domainerrors.CodeOf(err) == domainerrors.CodeInternal {
				log.Error("DOI lookup failed", zap.String("doi", req.DOI), zap.Error(err))
				c.JSON(http.StatusBadGateway, gin.H{"error": "doi lookup failed", "code": domainerrors.CodeInternal})
				return
			}
			respondError(c, log, err)
			return
		}
		res, err := engine.Create(c.Request.Context(), id, fields)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(resultStatus(res), res)
	})

	rg.PUT("/:citation_id", func(c *gin.Context) {
		projectID, ok := paramID(c, "id")
		if !ok {
			return
		}
		citationID, ok := paramID(c, "citation_id")
		if !ok {
			return
		}
		fields, ok := bindFields(c)
		if !ok {
			return
		}
		res, err := engine.Update(c.Request.Context(), citationID, projectID, fields)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, res)
	})

	rg.DELETE("/:citation_id", func(c *gin.Context) {
		projectID, ok := paramID(c, "id")
		if !ok {
			return
		}
		citationID, ok := paramID(c, "citation_id")
		if !ok {
			return
		}
		res, err := engine.Delete(c.Request.Context(), citationID, &projectID)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, res)
	})
}

func setupCitationRoutes(router *gin.Engine, engine *services.Engine, log *zap.Logger) {
	rg := router.Group("/citations")

	// GET - einzelne Zitation, mit ?format=apa|mla zusätzlich formatiert
	rg.GET("/:id", func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		citation, err := engine.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, log, err)
			return
		}
		format := c.Query("format")
		if format == "" {
			c.JSON(http.StatusOK, citation)
			return
		}
		rendered, err := engine.Render(c.Request.Context(), id, format)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"citation": citation, "rendered": rendered})
	})

	// DELETE - entfernt die Zitation aus allen Projekten
	rg.DELETE("/:id", func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		res, err := engine.Delete(c.Request.Context(), id, nil)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, res)
	})
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Skufu/MedIntel/internal/analysis"
	"github.com/Skufu/MedIntel/internal/history"
	"github.com/Skufu/MedIntel/internal/intake"
	"github.com/Skufu/MedIntel/internal/knowledge"
)

type deps struct {
	analyzer   *analysis.Analyzer
	store      history.Store
	cache      *resultCache
	limiter    *rateLimiter
	staticRoot string
	proxies    []string
}

type analyzeRequest struct {
	Symptoms *string `json:"symptoms"`
}

type bookmarkRequest struct {
	Query string `json:"query"`
	ID    string `json:"id"`
}

type conditionSummary struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Emergency bool               `json:"emergency"`
	Severity  knowledge.Severity `json:"severity"`
}

func setupRouter(d deps) *gin.Engine {
	router := gin.New()
	// Forwarded headers are honoured only from these peers; nil trusts none.
	if err := router.SetTrustedProxies(d.proxies); err != nil {
		log.Printf("trusted proxies ignored: %v", err)
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(
		gin.Logger(),
		gin.Recovery(),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
			MaxAge:       12 * time.Hour,
		}),
	)

	if d.staticRoot != "" {
		router.StaticFile("/", filepath.Join(d.staticRoot, "index.html"))
		router.Static("/static", filepath.Join(d.staticRoot, "static"))
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := d.store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"store":  fmt.Sprintf("unhealthy: %v", err),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok", "store": "ok"})
	})

	api := router.Group("/api")
	limited := rateLimit(d.limiter)

	api.GET("/version", func(c *gin.Context) {
		kb := d.analyzer.Knowledge()
		c.JSON(http.StatusOK, gin.H{
			"version":    kb.Version(),
			"conditions": len(kb.Conditions()),
		})
	})

	api.POST("/analyze", limited, func(c *gin.Context) {
		var payload analyzeRequest
		if !bindJSON(c, &payload) {
			return
		}
		if payload.Symptoms == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No symptoms provided"})
			return
		}

		query, ok := validateQuery(c, *payload.Symptoms)
		if !ok {
			return
		}

		res := d.analyze(query)
		if err := d.store.AddHistory(c.Request.Context(), history.NewEntry("", query, res)); err != nil {
			log.Printf("record history failed: %v", err)
		}
		c.JSON(http.StatusOK, res)
	})

	api.GET("/conditions", func(c *gin.Context) {
		conditions := d.analyzer.Knowledge().Conditions()
		out := make([]conditionSummary, 0, len(conditions))
		for _, cond := range conditions {
			out = append(out, conditionSummary{
				ID:        cond.ID,
				Name:      cond.Name,
				Emergency: cond.Emergency,
				Severity:  cond.Severity,
			})
		}
		c.JSON(http.StatusOK, gin.H{"conditions": out})
	})

	api.GET("/conditions/:id", func(c *gin.Context) {
		cond, ok := d.analyzer.Knowledge().Condition(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "condition not found"})
			return
		}
		c.JSON(http.StatusOK, cond)
	})

	api.GET("/history", func(c *gin.Context) {
		entries, err := d.store.History(c.Request.Context())
		if err != nil {
			storeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"history": nonNil(entries)})
	})

	api.DELETE("/history", func(c *gin.Context) {
		if err := d.store.ClearHistory(c.Request.Context()); err != nil {
			storeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "cleared"})
	})

	api.DELETE("/history/:id", func(c *gin.Context) {
		if err := d.store.DeleteHistory(c.Request.Context(), c.Param("id")); err != nil {
			storeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	})

	api.GET("/bookmarks", func(c *gin.Context) {
		entries, err := d.store.Bookmarks(c.Request.Context())
		if err != nil {
			storeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"bookmarks": nonNil(entries)})
	})

	api.POST("/bookmarks", limited, func(c *gin.Context) {
		var payload bookmarkRequest
		if !bindJSON(c, &payload) {
			return
		}

		query, ok := validateQuery(c, payload.Query)
		if !ok {
			return
		}

		entry := history.NewEntry(payload.ID, query, d.analyze(query))
		if err := d.store.AddBookmark(c.Request.Context(), entry); err != nil {
			storeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, entry)
	})

	api.DELETE("/bookmarks/:id", func(c *gin.Context) {
		if err := d.store.DeleteBookmark(c.Request.Context(), c.Param("id")); err != nil {
			storeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	})

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	})

	return router
}

// analyze serves query from the cache or runs a fresh analysis and caches it.
func (d deps) analyze(query string) analysis.Result {
	if res, ok := d.cache.Get(query); ok {
		log.Printf("returning cached result")
		return res
	}

	res := d.analyzer.Analyze(query)
	d.cache.Set(query, res)

	if top, ok := res.Top(); ok {
		log.Printf("analysis complete. top condition: %s, score: %d", top.ConditionName, top.Score)
	} else {
		log.Printf("analysis complete. no matching conditions")
	}
	return res
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return false
	}
	return true
}

func validateQuery(c *gin.Context, raw string) (string, bool) {
	query, err := intake.Validate(raw)
	if err != nil {
		log.Printf("validation failed: %v", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "validation_failed",
			"details": intake.Message(err),
		})
		return "", false
	}
	return query, true
}

func storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, history.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, history.ErrDuplicateBookmark), errors.Is(err, history.ErrDuplicateID):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("history store error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func nonNil(entries []history.Entry) []history.Entry {
	if entries == nil {
		return []history.Entry{}
	}
	return entries
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

package transport

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Oustad/kortly-pokemon-api-sub001/internal/config"
	apperrors "github.com/Oustad/kortly-pokemon-api-sub001/internal/errors"
	"github.com/Oustad/kortly-pokemon-api-sub001/internal/logger"
	"github.com/Oustad/kortly-pokemon-api-sub001/internal/metrics"
	"github.com/Oustad/kortly-pokemon-api-sub001/internal/pipeline"
	"github.com/Oustad/kortly-pokemon-api-sub001/internal/tcg"
	"github.com/Oustad/kortly-pokemon-api-sub001/pkg/models"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// CardLookup is the database half of a scan: find candidates for the
// extracted attributes and rank them.
type CardLookup interface {
	Search(ctx context.Context, attrs *models.CardAttributes) ([]models.Card, []tcg.SearchAttempt, error)
}

// StatsSource exposes the TCG client's cache and rate limiter state
// for the stats endpoint.
type StatsSource interface {
	CacheStats() tcg.CacheStats
	RateLimitStats() tcg.RateLimitStats
}

// ImageFetcher downloads card photos referenced by URL in the scan
// request body.
type ImageFetcher interface {
	Fetch(ctx context.Context, imageURL string) ([]byte, error)
}

func NewHandler(p *pipeline.Pipeline, lookup CardLookup, fetcher ImageFetcher, stats StatsSource, recorder *metrics.Recorder, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck)

	v1 := r.Group("/api/v1")
	v1.POST("/scan", scanCard(p, lookup, fetcher, recorder, cfg))
	v1.GET("/tiers", listTiers(p))
	v1.GET("/stats", serviceStats(stats, recorder))

	return r
}

func scanCard(p *pipeline.Pipeline, lookup CardLookup, fetcher ImageFetcher, recorder *metrics.Recorder, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		scanID := uuid.NewString()
		logger.WithFields(logrus.Fields{
			"scan_id":    scanID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing card scan request")

		data, filename, prefs, err := readScanInput(ctx, c, fetcher)
		if err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"scan_id": scanID,
				"ip":      c.ClientIP(),
			}).Error("Invalid scan request")
			respondError(c, apperrors.GetStatusCode(err), "invalid scan request", err)
			return
		}

		result := p.Process(ctx, data, filename, prefs)

		if result.Success() {
			attachMatches(ctx, lookup, result, scanID)
		}

		recorder.RecordScan(result)

		logger.WithFields(logrus.Fields{
			"scan_id":            scanID,
			"kind":               result.Kind,
			"quality":            result.Processing.QualityScore,
			"tier":               result.Processing.Tier,
			"matches":            len(result.Matches),
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Card scan completed")

		c.JSON(http.StatusOK, models.ScanResponse{
			ScanID: scanID,
			Result: result,
		})
	}
}

// attachMatches looks the identified card up in the TCG database and
// ranks the candidates. Lookup failures degrade the response to an
// unmatched identification instead of failing the scan.
func attachMatches(ctx context.Context, lookup CardLookup, result *models.ProcessingResult, scanID string) {
	cards, attempts, err := lookup.Search(ctx, result.Card)
	if err != nil {
		logger.WithError(err).WithField("scan_id", scanID).Warn("Card database lookup failed")
		return
	}
	if len(cards) == 0 {
		logger.WithFields(logrus.Fields{
			"scan_id":    scanID,
			"strategies": len(attempts),
		}).Info("No database candidates for identified card")
		return
	}
	result.Matches = tcg.RankMatches(cards, result.Card)
}

// readScanInput accepts a multipart upload with an "image" file field,
// a JSON body with base64 image data, or a JSON body naming an image
// URL for the server to download.
func readScanInput(ctx context.Context, c *gin.Context, fetcher ImageFetcher) ([]byte, string, *models.ScanPreferences, error) {
	if file, err := c.FormFile("image"); err == nil {
		f, err := file.Open()
		if err != nil {
			return nil, "", nil, apperrors.NewValidationError("cannot open uploaded image", err)
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return nil, "", nil, apperrors.NewValidationError("cannot read uploaded image", err)
		}
		prefs := preferencesFromQuery(c)
		return data, file.Filename, prefs, nil
	}

	var req models.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, "", nil, apperrors.NewValidationError("request must carry an image file, base64 image data, or an image URL", err)
	}
	switch {
	case req.ImageBase64 != "":
		data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			return nil, "", nil, apperrors.NewValidationError("image_base64 is not valid base64", err)
		}
		return data, req.Filename, req.Preferences, nil
	case req.ImageURL != "":
		data, err := fetcher.Fetch(ctx, req.ImageURL)
		if err != nil {
			return nil, "", nil, err
		}
		return data, req.Filename, req.Preferences, nil
	default:
		return nil, "", nil, apperrors.NewValidationError("one of image_base64 or image_url is required", nil)
	}
}

// preferencesFromQuery reads processing hints off multipart requests,
// which have no JSON body to carry them.
func preferencesFromQuery(c *gin.Context) *models.ScanPreferences {
	prefs := &models.ScanPreferences{
		PreferSpeed:   c.Query("prefer_speed") == "true",
		PreferQuality: c.Query("prefer_quality") == "true",
	}
	if v := c.Query("max_processing_time_ms"); v != "" {
		var ms int64
		if _, err := fmt.Sscanf(v, "%d", &ms); err == nil && ms > 0 {
			prefs.MaxProcessingTimeMS = ms
		}
	}
	if !prefs.PreferSpeed && !prefs.PreferQuality && prefs.MaxProcessingTimeMS == 0 {
		return nil
	}
	return prefs
}

func listTiers(p *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, p.TierInfo())
	}
}

func serviceStats(stats StatsSource, recorder *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"scans":      recorder.Snapshot(),
			"cache":      stats.CacheStats(),
			"rate_limit": stats.RateLimitStats(),
		})
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}

package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/decyphr-net/practice-engine/internal/lexicon"
	"github.com/decyphr-net/practice-engine/internal/logger"
	"github.com/decyphr-net/practice-engine/internal/phrases"
	"github.com/decyphr-net/practice-engine/internal/practice"
	"github.com/decyphr-net/practice-engine/pkg/models"
)

// Handler carries the services behind the HTTP surface
type Handler struct {
	practice *practice.Service
	ingestor *lexicon.Ingestor
	decay    *lexicon.DecayEngine
	assessor *lexicon.Assessor
	log      *logger.Logger
}

// NewHandler creates the handler set
func NewHandler(
	practiceSvc *practice.Service,
	ingestor *lexicon.Ingestor,
	decay *lexicon.DecayEngine,
	assessor *lexicon.Assessor,
	log *logger.Logger,
) *Handler {
	return &Handler{
		practice: practiceSvc,
		ingestor: ingestor,
		decay:    decay,
		assessor: assessor,
		log:      log.With("service", "HTTP"),
	}
}

// HealthCheck reports liveness
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ingest consumes a tokenized-sentence event batch
func (h *Handler) Ingest(c *gin.Context) {
	var event lexicon.Event
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ingestion event: " + err.Error()})
		return
	}
	if event.ClientID == "" || event.Language == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "clientId and language are required"})
		return
	}

	summary, err := h.ingestor.Ingest(c.Request.Context(), event)
	if err != nil {
		h.log.Error("ingestion failed", "clientId", event.ClientID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ingestion failed"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetDue serves the learner's prioritized exercise queue
func (h *Handler) GetDue(c *gin.Context) {
	clientID := c.Query("clientId")
	if clientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "clientId is required"})
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = v
	}
	exerciseType := models.ExerciseType(c.Query("exerciseType"))

	queue, err := h.practice.GetDue(c.Request.Context(), clientID, limit, exerciseType)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, queue)
}

type attemptBody struct {
	practice.AttemptRequest
	ClientID string `json:"clientId"`
}

// SubmitAttempt grades a submission and returns the next review state
func (h *Handler) SubmitAttempt(c *gin.Context) {
	var body attemptBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attempt: " + err.Error()})
		return
	}
	if body.ClientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "clientId is required"})
		return
	}

	result, err := h.practice.SubmitAttempt(c.Request.Context(), body.ClientID, body.AttemptRequest)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Progress returns aggregate accuracy by exercise type
func (h *Handler) Progress(c *gin.Context) {
	clientID := c.Query("clientId")
	if clientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "clientId is required"})
		return
	}
	from, to, err := parseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accuracy, err := h.practice.Progress(c.Request.Context(), clientID, from, to)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accuracy": accuracy})
}

// History returns a page of the learner's attempts
func (h *Handler) History(c *gin.Context) {
	clientID := c.Query("clientId")
	if clientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "clientId is required"})
		return
	}
	from, to, err := parseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a positive integer"})
		return
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if err != nil || pageSize < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pageSize must be a positive integer"})
		return
	}

	attempts, total, err := h.practice.History(c.Request.Context(), clientID, from, to, page, pageSize)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
		"attempts": attempts,
	})
}

type resetBody struct {
	ClientID string `json:"clientId"`
	PhraseID *int64 `json:"phraseId,omitempty"`
}

// Reset clears the learner's scheduling state for one phrase or all phrases
func (h *Handler) Reset(c *gin.Context) {
	var body resetBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reset request: " + err.Error()})
		return
	}
	if body.ClientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "clientId is required"})
		return
	}

	if err := h.practice.Reset(c.Request.Context(), body.ClientID, body.PhraseID); err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

// Snapshot returns the learner's ranked word list and CEFR estimate
func (h *Handler) Snapshot(c *gin.Context) {
	clientID := c.Param("clientId")
	lang := c.Param("language")

	words, err := h.decay.Snapshot(c.Request.Context(), clientID, lang)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	assessment, err := h.assessor.Assess(c.Request.Context(), clientID, lang)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"words":      words,
		"level":      assessment.Level,
		"confidence": assessment.Confidence,
		"coverage":   assessment.Coverage,
		"signals":    assessment.Signals,
	})
}

// respondServiceError maps sentinel errors to status codes
func (h *Handler) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, phrases.ErrPhraseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, phrases.ErrSourceUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "phrase source unavailable"})
	case errors.Is(err, practice.ErrInvalidExerciseType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// parseDateRange validates optional from/to bounds before any query runs
func parseDateRange(fromRaw, toRaw string) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error
	if fromRaw != "" {
		if from, err = parseDate(fromRaw); err != nil {
			return from, to, errors.New("invalid 'from' date")
		}
	}
	if toRaw != "" {
		if to, err = parseDate(toRaw); err != nil {
			return from, to, errors.New("invalid 'to' date")
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return from, to, errors.New("'from' must not be after 'to'")
	}
	return from, to, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

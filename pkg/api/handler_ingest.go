package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kodiak-labs/sessioncontext/pkg/models"
)

// ingestEnvelope is the PostHog-shaped payload accepted by POST /ingest.
type ingestEnvelope struct {
	Event struct {
		Event         string         `json:"event"`
		DistinctID    string         `json:"distinct_id"`
		Properties    map[string]any `json:"properties"`
		Timestamp     *time.Time     `json:"timestamp"`
		ElementsChain *string        `json:"elements_chain"`
	} `json:"event"`
}

// ingestHandler handles POST /ingest. It does no enrichment itself; it only
// queues the raw event for the worker to pick up.
func (s *Server) ingestHandler(c *gin.Context) {
	var body ingestEnvelope
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "malformed request body: " + err.Error()})
		return
	}
	if body.Event.Event == "" || body.Event.DistinctID == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "event.event and event.distinct_id are required"})
		return
	}

	ts := time.Now().UTC()
	if body.Event.Timestamp != nil {
		ts = *body.Event.Timestamp
	}

	raw := models.RawEvent{
		ID:            uuid.New(),
		DistinctID:    body.Event.DistinctID,
		EventName:     body.Event.Event,
		Properties:    body.Event.Properties,
		ElementsChain: body.Event.ElementsChain,
		Timestamp:     ts,
		Status:        models.RawEventStatusPending,
	}

	_, err := s.pool.Exec(c.Request.Context(), `
		INSERT INTO raw_event (id, distinct_id, event_name, properties, elements_chain, timestamp, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, raw.ID, raw.DistinctID, raw.EventName, raw.Properties, raw.ElementsChain, raw.Timestamp, raw.Status)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"id": raw.ID, "status": raw.Status})
}

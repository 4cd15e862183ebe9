package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ============================================================================
// PROGRESS — Cosmetic Upload Progress over SSE
// ============================================================================
// Ingestion is synchronous and atomic; no partial results exist to report.
// The tracker is therefore a pending flag per upload, and the stream walks
// a fixed percentage ramp while the flag is set, always culminating in 100.
// finish removes the entry outright, so the registry only ever holds
// in-flight uploads; a stream for an unknown id reports completion
// immediately. Nothing here is cancellable or resumable.
// ============================================================================

type progressRegistry struct {
	mu      sync.RWMutex
	pending map[string]struct{}
}

func newProgressRegistry() *progressRegistry {
	return &progressRegistry{pending: make(map[string]struct{})}
}

func (p *progressRegistry) start(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending[id] = struct{}{}
}

func (p *progressRegistry) finish(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.pending, id)
}

func (p *progressRegistry) inFlight(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.pending[id]
	return ok
}

// handleProgress streams integer percentages for an upload as SSE events.
func (s *Server) handleProgress(c *gin.Context) {
	id := c.Param("id")

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "streaming not supported"})
		return
	}

	emit := func(pct int) {
		fmt.Fprintf(c.Writer, "data: %d\n\n", pct)
		flusher.Flush()
	}

	ramp := []int{10, 30, 55, 80}
	for _, pct := range ramp {
		if !s.progress.inFlight(id) {
			break
		}
		emit(pct)

		select {
		case <-c.Request.Context().Done():
			return
		case <-time.After(200 * time.Millisecond):
		}
	}

	emit(100)
}

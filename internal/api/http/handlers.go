package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentOS/romd/internal/domain/dataspace"
	"github.com/GriffinCanCode/AgentOS/romd/internal/domain/rom"
	"github.com/GriffinCanCode/AgentOS/romd/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/romd/internal/shared/id"
)

// Handlers contains the ROM session HTTP handlers
type Handlers struct {
	service *rom.Service
	metrics *monitoring.Metrics
	started time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(service *rom.Service, metrics *monitoring.Metrics) *Handlers {
	return &Handlers{
		service: service,
		metrics: metrics,
		started: time.Now(),
	}
}

// OpenRequest is the body of POST /rom/sessions. Empty args are passed on
// and refused like any other unusable label.
type OpenRequest struct {
	Args string `json:"args"`
}

// DataspaceInfo describes a dataspace to API clients
type DataspaceInfo struct {
	Kind        string `json:"kind"`
	Filename    string `json:"filename,omitempty"`
	Size        uint64 `json:"size"`
	BaseAddress uint64 `json:"base_address"`
	Writable    bool   `json:"writable"`
	Capability  string `json:"capability,omitempty"`
	Owner       string `json:"owner,omitempty"`
}

// SessionInfo describes an open ROM session
type SessionInfo struct {
	ID        string        `json:"id"`
	OpenedAt  time.Time     `json:"opened_at"`
	Dataspace DataspaceInfo `json:"dataspace"`
}

func dataspaceInfo(ds *dataspace.Component) DataspaceInfo {
	info := DataspaceInfo{
		Kind:        ds.Kind().String(),
		Filename:    ds.Filename().String(),
		Size:        ds.Size(),
		BaseAddress: ds.BaseAddress(),
		Writable:    ds.Writable(),
		Owner:       string(ds.Owner()),
	}
	if c := ds.Capability(); c.IsValid() {
		info.Capability = c.String()
	}
	return info
}

func sessionInfo(sess *rom.Session) SessionInfo {
	return SessionInfo{
		ID:        sess.ID.String(),
		OpenedAt:  sess.OpenedAt,
		Dataspace: dataspaceInfo(sess.Dataspace),
	}
}

// Health handles health checks
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"sessions": h.service.Count(),
		"uptime":   time.Since(h.started).Round(time.Second).String(),
	})
}

// OpenSession creates a ROM session from session arguments
func (h *Handlers) OpenSession(c *gin.Context) {
	var req OpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	timer := monitoring.NewTimer(h.metrics)
	sess, err := h.service.Open(req.Args)
	if err != nil {
		timer.Stop("denied")
		// never tell the client why
		c.JSON(http.StatusForbidden, gin.H{"error": dataspace.ErrServiceDenied.Error()})
		return
	}
	timer.Stop("success")

	c.JSON(http.StatusCreated, sessionInfo(sess))
}

// ListSessions lists open ROM sessions
func (h *Handlers) ListSessions(c *gin.Context) {
	sessions := h.service.List()

	infos := make([]SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, sessionInfo(sess))
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": infos,
		"count":    len(infos),
	})
}

// GetSession returns one ROM session
func (h *Handlers) GetSession(c *gin.Context) {
	sess, ok := h.service.Get(id.SessionID(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": rom.ErrSessionNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, sessionInfo(sess))
}

// CloseSession closes a ROM session and releases its dataspace
func (h *Handlers) CloseSession(c *gin.Context) {
	err := h.service.Close(id.SessionID(c.Param("id")))
	switch {
	case errors.Is(err, rom.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to release dataspace"})
	default:
		c.Status(http.StatusNoContent)
	}
}

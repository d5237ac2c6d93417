package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Handler serves the driver tracking endpoints over the Manager. All routes
// sit behind the passcode-gate auth middleware.
type Handler struct {
	Manager *Manager
}

func NewHandler(m *Manager) *Handler {
	return &Handler{Manager: m}
}

func (h *Handler) RegisterRoutes(router gin.IRoutes) {
	router.POST("/driver/sessions", h.startSession)
	router.GET("/driver/sessions/:plate", h.getSession)
	router.POST("/driver/sessions/:plate/position", h.pushPosition)
	router.POST("/driver/sessions/:plate/errors", h.pushWatchError)
	router.DELETE("/driver/sessions/:plate", h.stopSession)
}

type StartSessionRequest struct {
	LicensePlate string   `json:"licensePlate" binding:"required"`
	RouteID      int64    `json:"routeId"      binding:"required"`
	Latitude     *float64 `json:"latitude"     binding:"required"`
	Longitude    *float64 `json:"longitude"    binding:"required"`
}

type PositionRequest struct {
	Latitude  *float64 `json:"latitude"  binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

type WatchErrorRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *Handler) startSession(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "licensePlate, routeId, latitude dan longitude wajib diisi",
		})
		return
	}

	initial := Fix{Latitude: *req.Latitude, Longitude: *req.Longitude, At: time.Now().UTC()}
	sess, err := h.Manager.StartSession(c.Request.Context(), req.LicensePlate, req.RouteID, initial)

	switch {
	case err == nil:
		c.JSON(http.StatusCreated, sess.Status(time.Now()))
	case errors.Is(err, ErrNoVehicle) || errors.Is(err, ErrNoRoute):
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
	case errors.Is(err, ErrVehicleInUse) || errors.Is(err, ErrAlreadyActive):
		c.JSON(http.StatusConflict, gin.H{"error": "vehicle_in_use", "message": "bus sedang dipakai session lain"})
	default:
		var initErr *InitialSampleError
		if errors.As(err, &initErr) {
			// Session is live but the first upload failed; blocking feedback
			// for the operator, who keeps broadcasting.
			c.JSON(http.StatusCreated, gin.H{
				"data":    sess.Status(time.Now()),
				"warning": initErr.Error(),
			})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store_unreachable", "message": err.Error()})
	}
}

func (h *Handler) getSession(c *gin.Context) {
	status, _ := h.Manager.StatusFor(c.Param("plate"), time.Now())
	c.JSON(http.StatusOK, status)
}

func (h *Handler) pushPosition(c *gin.Context) {
	var req PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "latitude dan longitude wajib diisi",
		})
		return
	}

	f := Fix{Latitude: *req.Latitude, Longitude: *req.Longitude, At: time.Now().UTC()}
	if err := h.Manager.PushFix(c.Param("plate"), f); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "session_not_active", "message": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "ok"})
}

// pushWatchError receives geolocation failures from the driver's device, the
// counterpart of the position posts.
func (h *Handler) pushWatchError(c *gin.Context) {
	var req WatchErrorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "message wajib diisi",
		})
		return
	}

	if err := h.Manager.PushWatchError(c.Param("plate"), errors.New(req.Message)); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "session_not_active", "message": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "ok"})
}

func (h *Handler) stopSession(c *gin.Context) {
	h.Manager.StopSession(c.Request.Context(), c.Param("plate"))
	status, _ := h.Manager.StatusFor(c.Param("plate"), time.Now())
	c.JSON(http.StatusOK, status)
}

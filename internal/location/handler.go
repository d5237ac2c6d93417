package location

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// Handler serves the rider-facing read endpoints over the Store.
type Handler struct {
	Store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/locations", h.listActiveOnRoute)
	router.GET("/locations/active-plates", h.listActivePlates)
	router.GET("/paths", h.listPaths)
}

// listActiveOnRoute returns the active buses on ?route_id=, joined with the
// bus reference data. This is the map's primary query; the websocket feed
// tells clients when to re-run it.
func (h *Handler) listActiveOnRoute(c *gin.Context) {
	routeStr := c.Query("route_id")
	routeID, err := strconv.ParseInt(routeStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "route_id harus berupa angka",
		})
		return
	}

	rows, err := h.Store.ActiveOnRoute(c.Request.Context(), routeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}
	if rows == nil {
		rows = []ActiveBus{}
	}

	c.JSON(http.StatusOK, gin.H{"data": rows})
}

func (h *Handler) listActivePlates(c *gin.Context) {
	plates, err := h.Store.ActivePlates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}
	if plates == nil {
		plates = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"data": plates})
}

// listPaths returns the trip traces for ?plates=A,B ordered oldest first.
func (h *Handler) listPaths(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("plates"))
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "plates parameter wajib diisi",
		})
		return
	}

	var plates []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			plates = append(plates, p)
		}
	}

	points, err := h.Store.PathPoints(c.Request.Context(), plates)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}
	if points == nil {
		points = []TripPath{}
	}

	c.JSON(http.StatusOK, gin.H{"data": points})
}

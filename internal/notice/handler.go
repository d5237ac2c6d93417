package notice

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/srkulkarni196974-max/SDMCET-bus-tracking/internal/realtime"
)

type Handler struct {
	DB     *gorm.DB
	Hub    *realtime.Hub
	Expiry time.Duration
}

func NewHandler(db *gorm.DB, hub *realtime.Hub, expiry time.Duration) *Handler {
	return &Handler{DB: db, Hub: hub, Expiry: expiry}
}

type CreateNoticeRequest struct {
	Content string `json:"content" binding:"required"`
}

// RegisterRoutes mounts the rider read endpoint.
func (h *Handler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/notices/latest", h.latestNotice)
}

// RegisterDriverRoutes mounts the authenticated broadcast endpoint.
func (h *Handler) RegisterDriverRoutes(router gin.IRoutes) {
	router.POST("/notices", h.createNotice)
}

func (h *Handler) createNotice(c *gin.Context) {
	var req CreateNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "invalid JSON body",
		})
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "content wajib diisi",
		})
		return
	}

	n := Notice{Content: req.Content, CreatedAt: time.Now().UTC()}
	if err := h.DB.Create(&n).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}

	h.Hub.Publish(realtime.Change{Table: Notice{}.TableName(), Event: realtime.EventInsert, New: n})
	c.JSON(http.StatusCreated, n)
}

// latestNotice returns the most recent notice still inside the freshness
// window, or 204 when there is none. Dismissal bookkeeping stays on the
// rider's device; staleness is enforced here so an expired notice is never
// served, dismissed or not.
func (h *Handler) latestNotice(c *gin.Context) {
	var n Notice
	err := h.DB.Order("created_at DESC").First(&n).Error
	if err == gorm.ErrRecordNotFound {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}

	if !n.Fresh(time.Now().UTC(), h.Expiry) {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, n)
}

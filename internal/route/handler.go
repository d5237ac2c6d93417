package route

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/srkulkarni196974-max/SDMCET-bus-tracking/internal/pagination"
)

type Handler struct {
	DB *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db}
}

func (h *Handler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/routes", h.listRoutes)
	router.GET("/routes/regions", h.listRegions)
}

// listRoutes returns all routes, optionally filtered by ?region=
func (h *Handler) listRoutes(c *gin.Context) {
	p := pagination.ParsePagination(c)
	if c.IsAborted() {
		return
	}

	query := h.DB.Model(&Route{})
	if region := strings.TrimSpace(c.Query("region")); region != "" {
		query = query.Where("region = ?", region)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}

	var routes []Route
	if err := query.Order("route_name").Limit(p.Limit).Offset(p.Offset).Find(&routes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": routes, "pagination": gin.H{"total": total, "limit": p.Limit, "page": p.Page, "max_limit": p.MaxLimit}})
}

// listRegions returns the distinct region labels, for the sidebar tabs.
func (h *Handler) listRegions(c *gin.Context) {
	var regions []string
	if err := h.DB.Model(&Route{}).Distinct("region").Order("region").Pluck("region", &regions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": regions})
}

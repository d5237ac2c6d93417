package bus

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/srkulkarni196974-max/SDMCET-bus-tracking/internal/pagination"
)

// Handler menampung dependency untuk handler bus
type Handler struct {
	DB *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db}
}

func (h *Handler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/buses", h.listBuses)
}

func (h *Handler) listBuses(c *gin.Context) {
	p := pagination.ParsePagination(c)
	if c.IsAborted() {
		return
	}

	var buses []Bus
	var total int64

	query := h.DB.Model(&Bus{})
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}

	if err := query.Order("bus_number").Limit(p.Limit).Offset(p.Offset).Find(&buses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db_error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": buses, "pagination": gin.H{"total": total, "limit": p.Limit, "page": p.Page, "max_limit": p.MaxLimit}})
}

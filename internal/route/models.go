package route

import (
	"time"

	"gorm.io/datatypes"
)

// Model untuk tabel routes. Reference data grouped by region; metadata holds
// stop names and display hints as JSONB.
type Route struct {
	ID          int64             `json:"id"          gorm:"column:id;primaryKey"`
	Region      string            `json:"region"      gorm:"column:region"`
	RouteName   string            `json:"routeName"   gorm:"column:route_name"`
	Description string            `json:"description" gorm:"column:description"`
	Metadata    datatypes.JSONMap `json:"metadata"    gorm:"column:metadata"`
	CreatedAt   time.Time         `json:"createdAt"   gorm:"column:created_at"`
}

func (Route) TableName() string {
	return "routes"
}

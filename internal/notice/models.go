package notice

import "time"

// Model untuk tabel notices. Short text broadcasts from drivers; only
// meaningful within the freshness window after creation.
type Notice struct {
	ID        int64     `json:"id"        gorm:"column:id;primaryKey"`
	Content   string    `json:"content"   gorm:"column:content"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at"`
}

func (Notice) TableName() string {
	return "notices"
}

// Fresh reports whether the notice is still inside the freshness window at
// the given instant. Expired notices must not be shown regardless of
// dismissal state.
func (n Notice) Fresh(now time.Time, window time.Duration) bool {
	return now.Sub(n.CreatedAt) < window
}

package bus

import "time"

// Model untuk tabel buses. Reference data: rows are seeded by the operator and
// never mutated by the application.
type Bus struct {
	ID           int64     `json:"id"           gorm:"column:id;primaryKey"`
	BusNumber    string    `json:"busNumber"    gorm:"column:bus_number"`
	LicensePlate string    `json:"licensePlate" gorm:"column:license_plate;uniqueIndex"` // correlation key across locations/paths
	CreatedAt    time.Time `json:"createdAt"    gorm:"column:created_at"`
}

func (Bus) TableName() string {
	return "buses"
}

package location

import "time"

// Model untuk tabel bus_locations. One row per vehicle, keyed by license
// plate; is_active is the sole signal that the vehicle is broadcasting. Rows
// are upserted while a session runs and flipped inactive on stop, never
// deleted.
type BusLocation struct {
	LicensePlate string    `json:"licensePlate" gorm:"column:license_plate;primaryKey"`
	RouteID      int64     `json:"routeId"      gorm:"column:route_id"`
	Latitude     float64   `json:"latitude"     gorm:"column:latitude"`
	Longitude    float64   `json:"longitude"    gorm:"column:longitude"`
	IsActive     bool      `json:"isActive"     gorm:"column:is_active"`
	UpdatedAt    time.Time `json:"updatedAt"    gorm:"column:updated_at"`
}

func (BusLocation) TableName() string {
	return "bus_locations"
}

// Model untuk tabel trip_paths. Append-only trace of the current trip;
// purged in bulk when the session ends, so it never outlives the trip.
type TripPath struct {
	ID           int64     `json:"id"           gorm:"column:id;primaryKey"`
	LicensePlate string    `json:"licensePlate" gorm:"column:license_plate;index"`
	Latitude     float64   `json:"latitude"     gorm:"column:latitude"`
	Longitude    float64   `json:"longitude"    gorm:"column:longitude"`
	CreatedAt    time.Time `json:"createdAt"    gorm:"column:created_at"`
}

func (TripPath) TableName() string {
	return "trip_paths"
}

// ActiveBus is a bus_locations row joined with its bus, as served to riders.
type ActiveBus struct {
	BusLocation
	BusID     int64  `json:"busId"     gorm:"column:bus_id"`
	BusNumber string `json:"busNumber" gorm:"column:bus_number"`
}

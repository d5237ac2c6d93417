package location

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/srkulkarni196974-max/SDMCET-bus-tracking/internal/realtime"
)

// Store owns all reads and writes against bus_locations and trip_paths.
// Every successful mutation is published to the hub, which is what riders and
// the active-plates cache subscribe to.
type Store struct {
	DB  *gorm.DB
	Hub *realtime.Hub
}

func NewStore(db *gorm.DB, hub *realtime.Hub) *Store {
	return &Store{DB: db, Hub: hub}
}

// Ping is the connectivity probe run before a session may start. It issues a
// real count against bus_locations so a missing table fails here instead of
// mid-session.
func (s *Store) Ping(ctx context.Context) error {
	var n int64
	return s.DB.WithContext(ctx).Model(&BusLocation{}).Count(&n).Error
}

// AppendPathPoint records one coordinate sample on the trip trace.
func (s *Store) AppendPathPoint(ctx context.Context, plate string, lat, lng float64) error {
	p := TripPath{
		LicensePlate: plate,
		Latitude:     lat,
		Longitude:    lng,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.DB.WithContext(ctx).Create(&p).Error; err != nil {
		return err
	}
	s.Hub.Publish(realtime.Change{Table: TripPath{}.TableName(), Event: realtime.EventInsert, New: p})
	return nil
}

// UpsertLocation writes the vehicle's live position, keyed on license plate
// with conflict target license plate, marking it active.
func (s *Store) UpsertLocation(ctx context.Context, plate string, routeID int64, lat, lng float64) error {
	var old BusLocation
	existed := s.DB.WithContext(ctx).Where("license_plate = ?", plate).First(&old).Error == nil

	row := BusLocation{
		LicensePlate: plate,
		RouteID:      routeID,
		Latitude:     lat,
		Longitude:    lng,
		IsActive:     true,
		UpdatedAt:    time.Now().UTC(),
	}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "license_plate"}},
		DoUpdates: clause.AssignmentColumns([]string{"route_id", "latitude", "longitude", "is_active", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return err
	}

	change := realtime.Change{Table: BusLocation{}.TableName(), Event: realtime.EventInsert, New: row}
	if existed {
		change.Event = realtime.EventUpdate
		change.Old = old
	}
	s.Hub.Publish(change)
	return nil
}

// Deactivate flips is_active off for the plate. The row is retained.
func (s *Store) Deactivate(ctx context.Context, plate string) error {
	var old BusLocation
	if err := s.DB.WithContext(ctx).Where("license_plate = ?", plate).First(&old).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil // nothing to deactivate
		}
		return err
	}

	err := s.DB.WithContext(ctx).Model(&BusLocation{}).
		Where("license_plate = ?", plate).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now().UTC()}).Error
	if err != nil {
		return err
	}

	updated := old
	updated.IsActive = false
	s.Hub.Publish(realtime.Change{Table: BusLocation{}.TableName(), Event: realtime.EventUpdate, New: updated, Old: old})
	return nil
}

// PurgePath deletes the whole trip trace for the plate.
func (s *Store) PurgePath(ctx context.Context, plate string) error {
	res := s.DB.WithContext(ctx).Where("license_plate = ?", plate).Delete(&TripPath{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		s.Hub.Publish(realtime.Change{
			Table: TripPath{}.TableName(),
			Event: realtime.EventDelete,
			Old:   TripPath{LicensePlate: plate},
		})
	}
	return nil
}

// ActivePlates projects the license plates currently marked broadcasting.
func (s *Store) ActivePlates(ctx context.Context) ([]string, error) {
	var plates []string
	err := s.DB.WithContext(ctx).Model(&BusLocation{}).
		Where("is_active = ?", true).
		Pluck("license_plate", &plates).Error
	return plates, err
}

// ActiveOnRoute returns the active locations for one route, joined with the
// bus reference row.
func (s *Store) ActiveOnRoute(ctx context.Context, routeID int64) ([]ActiveBus, error) {
	var rows []ActiveBus
	err := s.DB.WithContext(ctx).Model(&BusLocation{}).
		Select("bus_locations.*, buses.id AS bus_id, buses.bus_number AS bus_number").
		Joins("JOIN buses ON buses.license_plate = bus_locations.license_plate").
		Where("bus_locations.route_id = ? AND bus_locations.is_active = ?", routeID, true).
		Find(&rows).Error
	return rows, err
}

// PathPoints returns the trip traces for a set of plates, oldest first.
func (s *Store) PathPoints(ctx context.Context, plates []string) ([]TripPath, error) {
	var points []TripPath
	err := s.DB.WithContext(ctx).
		Where("license_plate IN ?", plates).
		Order("created_at ASC").
		Find(&points).Error
	return points, err
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/njnj03/homewatch/pkg/models"
)

// InsertHouse persists a house reference record. Used by demo seeding.
func (db *DB) InsertHouse(ctx context.Context, house *models.House) error {
	var lat, lng any
	if house.Latitude != nil {
		lat = *house.Latitude
	}
	if house.Longitude != nil {
		lng = *house.Longitude
	}
	_, err := db.writeDB.ExecContext(ctx,
		"INSERT INTO houses (house_id, name, latitude, longitude) VALUES (?, ?, ?, ?)",
		string(house.ID), house.Name, lat, lng,
	)
	if err != nil {
		return fmt.Errorf("failed to insert house: %w", err)
	}
	return nil
}

// ListHouses returns every house, ordered by name.
func (db *DB) ListHouses(ctx context.Context) ([]*models.House, error) {
	rows, err := db.readDB.QueryContext(ctx,
		"SELECT house_id, name, latitude, longitude FROM houses ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list houses: %w", err)
	}
	defer rows.Close()

	var houses []*models.House
	for rows.Next() {
		var (
			id, name string
			lat, lng sql.NullFloat64
		)
		if err := rows.Scan(&id, &name, &lat, &lng); err != nil {
			return nil, fmt.Errorf("failed to scan house: %w", err)
		}
		house := &models.House{ID: models.HouseID(id), Name: name}
		if lat.Valid {
			house.Latitude = &lat.Float64
		}
		if lng.Valid {
			house.Longitude = &lng.Float64
		}
		houses = append(houses, house)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating houses: %w", err)
	}
	return houses, nil
}

// CountHouses returns the total number of houses. Zero means first boot.
func (db *DB) CountHouses(ctx context.Context) (int, error) {
	var n int
	if err := db.readDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM houses").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count houses: %w", err)
	}
	return n, nil
}

// InsertDevice persists a device reference record. Used by demo seeding.
func (db *DB) InsertDevice(ctx context.Context, device *models.Device) error {
	var heartbeat any
	if device.LastHeartbeat != nil {
		heartbeat = device.LastHeartbeat.UTC()
	}
	_, err := db.writeDB.ExecContext(ctx,
		"INSERT INTO devices (device_id, house_id, name, location, status, last_heartbeat) VALUES (?, ?, ?, ?, ?, ?)",
		string(device.ID), string(device.HouseID), device.Name,
		nullableString(device.Location), string(device.Status), heartbeat,
	)
	if err != nil {
		return fmt.Errorf("failed to insert device: %w", err)
	}
	return nil
}

// ListDevices returns devices, optionally scoped to one house, ordered by name.
func (db *DB) ListDevices(ctx context.Context, houseID models.HouseID) ([]*models.Device, error) {
	query := "SELECT device_id, house_id, name, location, status, last_heartbeat FROM devices"
	var args []any
	if houseID != "" {
		query += " WHERE house_id = ?"
		args = append(args, string(houseID))
	}
	query += " ORDER BY name"

	rows, err := db.readDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	var devices []*models.Device
	for rows.Next() {
		var (
			id, hID, name string
			location      sql.NullString
			status        string
			heartbeat     sql.NullTime
		)
		if err := rows.Scan(&id, &hID, &name, &location, &status, &heartbeat); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		device := &models.Device{
			ID:       models.DeviceID(id),
			HouseID:  models.HouseID(hID),
			Name:     name,
			Location: location.String,
			Status:   models.DeviceStatus(status),
		}
		if heartbeat.Valid {
			t := heartbeat.Time
			device.LastHeartbeat = &t
		}
		devices = append(devices, device)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating devices: %w", err)
	}
	return devices, nil
}

// CountDevices returns the total number of devices.
func (db *DB) CountDevices(ctx context.Context) (int, error) {
	var n int
	if err := db.readDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM devices").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count devices: %w", err)
	}
	return n, nil
}

// CountOnlineDevices returns the number of devices reporting online.
func (db *DB) CountOnlineDevices(ctx context.Context) (int, error) {
	var n int
	if err := db.readDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM devices WHERE status = 'online'").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count online devices: %w", err)
	}
	return n, nil
}

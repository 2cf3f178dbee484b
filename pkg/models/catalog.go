package models

import "time"

// HouseID identifies a monitored house.
type HouseID string

// DeviceID identifies an IoT device installed in a house.
type DeviceID string

// DeviceStatus reflects the last known health of a device.
type DeviceStatus string

const (
	DeviceStatusOnline   DeviceStatus = "online"
	DeviceStatusOffline  DeviceStatus = "offline"
	DeviceStatusDegraded DeviceStatus = "degraded"
	DeviceStatusUnknown  DeviceStatus = "unknown"
)

// House is read-only reference data: alerts and devices point at it.
type House struct {
	ID        HouseID  `json:"id"`
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Device is read-only reference data describing a sensor in a house.
type Device struct {
	ID            DeviceID     `json:"id"`
	HouseID       HouseID      `json:"house_id"`
	Name          string       `json:"name"`
	Location      string       `json:"location,omitempty"`
	Status        DeviceStatus `json:"status"`
	LastHeartbeat *time.Time   `json:"last_heartbeat,omitempty"`
}

// SystemHealth carries the simulated latency/queue numbers shown on the
// dashboard header.
type SystemHealth struct {
	APILatencyMs int `json:"api_latency"`
	QueueDepth   int `json:"queue_depth"`
}

// DashboardMetrics summarises the fleet for the overview page.
type DashboardMetrics struct {
	ActiveHouses  int          `json:"active_houses"`
	TotalDevices  int          `json:"total_devices"`
	OnlineDevices int          `json:"online_devices"`
	ActiveAlerts  int          `json:"active_alerts"`
	SystemHealth  SystemHealth `json:"system_health"`
}

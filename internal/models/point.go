package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// WGS84SRID is the geographic coordinate reference system (lng/lat).
const WGS84SRID = 4326

// LocalSRID is the projected coordinate reference system of the upstream
// dataset (Florida East state-plane, feet). Raw geometry is stored in this
// CRS before being transformed to WGS84.
const LocalSRID = 2236

// Point represents a PostGIS Point geometry.
// Coordinates follow the GeoJSON convention: [lng, lat] for WGS84, or
// [x, y] in the local projected CRS for raw geometry.
type Point struct {
	Coordinates [2]float64
	SRID        int
}

// Scan implements sql.Scanner for reading point geometry from the database.
// The queries select geometry through ST_AsGeoJSON, so the driver hands us
// GeoJSON as []byte.
func (p *Point) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan Point: expected []byte, got %T", value)
	}

	var geom struct {
		Type        string     `json:"type"`
		Coordinates [2]float64 `json:"coordinates"`
	}

	if err := json.Unmarshal(bytes, &geom); err != nil {
		return fmt.Errorf("failed to unmarshal point geometry: %w", err)
	}

	if geom.Type != "Point" {
		return fmt.Errorf("expected Point type, got %s", geom.Type)
	}

	p.Coordinates = geom.Coordinates
	p.SRID = WGS84SRID

	return nil
}

// Value implements driver.Valuer for writing point geometry to the database.
// Returns GeoJSON to be used with ST_GeomFromGeoJSON in raw SQL.
func (p Point) Value() (driver.Value, error) {
	geom := map[string]interface{}{
		"type":        "Point",
		"coordinates": p.Coordinates,
	}

	geoJSON, err := json.Marshal(geom)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal point to GeoJSON: %w", err)
	}

	return string(geoJSON), nil
}

// MarshalJSON implements json.Marshaler for API responses.
func (p Point) MarshalJSON() ([]byte, error) {
	geom := struct {
		Type        string     `json:"type"`
		Coordinates [2]float64 `json:"coordinates"`
	}{
		Type:        "Point",
		Coordinates: p.Coordinates,
	}
	return json.Marshal(geom)
}

// UnmarshalJSON implements json.Unmarshaler for parsing GeoJSON input.
func (p *Point) UnmarshalJSON(data []byte) error {
	var geom struct {
		Type        string     `json:"type"`
		Coordinates [2]float64 `json:"coordinates"`
	}

	if err := json.Unmarshal(data, &geom); err != nil {
		return fmt.Errorf("failed to unmarshal point: %w", err)
	}

	if geom.Type != "" && geom.Type != "Point" {
		return fmt.Errorf("expected Point type, got %s", geom.Type)
	}

	p.Coordinates = geom.Coordinates
	p.SRID = WGS84SRID

	return nil
}

// Lng returns the first coordinate (longitude for WGS84 points).
func (p Point) Lng() float64 {
	return p.Coordinates[0]
}

// Lat returns the second coordinate (latitude for WGS84 points).
func (p Point) Lat() float64 {
	return p.Coordinates[1]
}

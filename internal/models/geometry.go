package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// MultiPolygon represents a PostGIS MultiPolygon district boundary.
// It stores coordinates in GeoJSON format: [polygons][rings][points][lon,lat]
// SRID 4326 (WGS84) is used for lat/lng coordinates.
type MultiPolygon struct {
	Coordinates [][][][2]float64 // GeoJSON coordinate structure for MultiPolygon
	SRID        int              // Spatial Reference ID (default: 4326)
}

type geoJSONGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// decode accepts Polygon or MultiPolygon GeoJSON. A Polygon is promoted to a
// single-member MultiPolygon since zoning layers mix both.
func (mp *MultiPolygon) decode(data []byte, allowUntyped bool) error {
	var geom geoJSONGeometry
	if err := json.Unmarshal(data, &geom); err != nil {
		return fmt.Errorf("failed to unmarshal multipolygon geometry: %w", err)
	}

	switch geom.Type {
	case "MultiPolygon":
		var coords [][][][2]float64
		if err := json.Unmarshal(geom.Coordinates, &coords); err != nil {
			return fmt.Errorf("failed to unmarshal multipolygon coordinates: %w", err)
		}
		mp.Coordinates = coords
	case "Polygon":
		var coords [][][2]float64
		if err := json.Unmarshal(geom.Coordinates, &coords); err != nil {
			return fmt.Errorf("failed to unmarshal polygon coordinates: %w", err)
		}
		mp.Coordinates = [][][][2]float64{coords}
	case "":
		if !allowUntyped {
			return fmt.Errorf("expected MultiPolygon type, got none")
		}
		if len(geom.Coordinates) > 0 {
			var coords [][][][2]float64
			if err := json.Unmarshal(geom.Coordinates, &coords); err != nil {
				return fmt.Errorf("failed to unmarshal multipolygon coordinates: %w", err)
			}
			mp.Coordinates = coords
		}
	default:
		return fmt.Errorf("expected MultiPolygon type, got %s", geom.Type)
	}

	mp.SRID = 4326
	return nil
}

// Scan implements sql.Scanner for geometry read with ST_AsGeoJSON.
func (mp *MultiPolygon) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return mp.decode(v, false)
	case string:
		return mp.decode([]byte(v), false)
	default:
		return fmt.Errorf("failed to scan MultiPolygon: expected []byte, got %T", value)
	}
}

// Value implements driver.Valuer. It returns GeoJSON text for use with
// ST_GeomFromGeoJSON in raw SQL.
func (mp MultiPolygon) Value() (driver.Value, error) {
	if len(mp.Coordinates) == 0 {
		return nil, nil
	}

	geoJSON, err := json.Marshal(mp)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal multipolygon to GeoJSON: %w", err)
	}

	return string(geoJSON), nil
}

// MarshalJSON implements json.Marshaler for API responses.
func (mp MultiPolygon) MarshalJSON() ([]byte, error) {
	geom := struct {
		Type        string           `json:"type"`
		Coordinates [][][][2]float64 `json:"coordinates"`
	}{
		Type:        "MultiPolygon",
		Coordinates: mp.Coordinates,
	}
	return json.Marshal(geom)
}

// UnmarshalJSON implements json.Unmarshaler for parsing GeoJSON input.
func (mp *MultiPolygon) UnmarshalJSON(data []byte) error {
	return mp.decode(data, true)
}

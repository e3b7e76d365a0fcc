package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/neurastate/datahub/internal/database"
	"github.com/neurastate/datahub/internal/models"
)

// BoundingBox is a rectangular geographic region in WGS84.
type BoundingBox struct {
	MinLng float64
	MinLat float64
	MaxLng float64
	MaxLat float64
}

// MapMarker is the lightweight row shape for map display: identifier plus
// coordinates, nothing else.
type MapMarker struct {
	ObjectID int64   `json:"objectId"`
	Lng      float64 `json:"lng"`
	Lat      float64 `json:"lat"`
}

// MapRepository defines data access for the map query service.
type MapRepository interface {
	// FindInBounds returns markers for rows whose geometry intersects the
	// box, root parcels only (condo flag false or unset), ordered by
	// identifier for stable pagination.
	// Returns an empty slice if nothing matches (not an error).
	FindInBounds(ctx context.Context, bbox BoundingBox, limit, offset int) ([]MapMarker, error)

	// FindByObjectID returns the full property projection for one
	// identifier. Returns nil, nil if no row exists (not an error).
	FindByObjectID(ctx context.Context, objectID int64) (*models.Property, error)
}

type mapRepository struct {
	db *database.Database
}

// NewMapRepository creates a new instance of MapRepository.
func NewMapRepository(db *database.Database) MapRepository {
	return &mapRepository{db: db}
}

// FindInBounds queries the canonical table with a bounding-box intersection.
// The && operator against ST_MakeEnvelope is what lets the GiST index on the
// geom column do the work. Rows without derived geometry are invisible here
// until the geometry passes run; that lag is expected.
func (r *mapRepository) FindInBounds(ctx context.Context, bbox BoundingBox, limit, offset int) ([]MapMarker, error) {
	query := `
		SELECT
			objectid,
			ST_X(geom::geometry) AS lng,
			ST_Y(geom::geometry) AS lat
		FROM neurastate.property_point_view
		WHERE
			geom IS NOT NULL
			AND geom && ST_MakeEnvelope($1, $2, $3, $4, 4326)
			AND condo_flag IS NOT TRUE
		ORDER BY objectid
		LIMIT $5 OFFSET $6
	`

	rows, err := r.db.Pool.Query(ctx, query,
		bbox.MinLng, bbox.MinLat, bbox.MaxLng, bbox.MaxLat, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties in bounds (%f,%f)-(%f,%f): %w",
			bbox.MinLng, bbox.MinLat, bbox.MaxLng, bbox.MaxLat, err)
	}
	defer rows.Close()

	var markers []MapMarker

	for rows.Next() {
		var m MapMarker
		if err := rows.Scan(&m.ObjectID, &m.Lng, &m.Lat); err != nil {
			return nil, fmt.Errorf("failed to scan map marker row: %w", err)
		}
		markers = append(markers, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating map marker rows: %w", err)
	}

	if markers == nil {
		markers = []MapMarker{}
	}

	return markers, nil
}

// FindByObjectID loads the full detail projection for a single property.
func (r *mapRepository) FindByObjectID(ctx context.Context, objectID int64) (*models.Property, error) {
	query := `
		SELECT
			objectid,
			folio,
			true_site_addr,
			true_site_unit,
			true_site_city,
			true_site_zip_code,
			true_owner1,
			true_owner2,
			true_owner3,
			condo_flag,
			parent_folio,
			dor_desc,
			subdivision,
			bedroom_count,
			bathroom_count,
			half_bathroom_count,
			floor_count,
			unit_count,
			building_actual_area,
			building_heated_area,
			lot_size,
			year_built,
			assessment_year_cur,
			assessed_val_cur,
			dos_1,
			price_1,
			legal,
			is_parent_folio,
			ST_AsGeoJSON(geom) AS geometry,
			created_at,
			updated_at
		FROM neurastate.property_point_view
		WHERE objectid = $1
	`

	var property models.Property
	var geomJSON []byte

	err := r.db.Pool.QueryRow(ctx, query, objectID).Scan(
		&property.ObjectID,
		&property.Folio,
		&property.SiteAddress,
		&property.SiteUnit,
		&property.SiteCity,
		&property.SiteZipCode,
		&property.Owner1,
		&property.Owner2,
		&property.Owner3,
		&property.CondoFlag,
		&property.ParentFolio,
		&property.DorDesc,
		&property.Subdivision,
		&property.BedroomCount,
		&property.BathroomCount,
		&property.HalfBathroomCount,
		&property.FloorCount,
		&property.UnitCount,
		&property.BuildingActualArea,
		&property.BuildingHeatedArea,
		&property.LotSize,
		&property.YearBuilt,
		&property.AssessmentYearCur,
		&property.AssessedValCur,
		&property.DOS1,
		&property.Price1,
		&property.Legal,
		&property.IsParentFolio,
		&geomJSON,
		&property.CreatedAt,
		&property.UpdatedAt,
	)

	// No rows is not an error at the repository level.
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query property %d: %w", objectID, err)
	}

	// Geometry may be null for rows imported but not yet derived.
	if geomJSON != nil {
		var geom models.Point
		if err := geom.Scan(geomJSON); err != nil {
			return nil, fmt.Errorf("failed to parse geometry for property %d: %w", objectID, err)
		}
		property.Geom = &geom
	}

	return &property, nil
}

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/neurastate/datahub/internal/logger"
	"github.com/neurastate/datahub/internal/models"
	"github.com/neurastate/datahub/internal/repository"
)

// Result limit constants
const (
	// MaxPropertiesLimit caps a single bounds query.
	MaxPropertiesLimit = 5000
	// DefaultPropertiesLimit applies when the caller does not specify one.
	DefaultPropertiesLimit = 1000
)

// Service-level errors
var (
	ErrInvalidBounds    = errors.New("invalid bounding box")
	ErrZoomTooLow       = errors.New("zoom level below minimum")
	ErrPropertyNotFound = errors.New("property not found")
)

// BoundsQuery is the caller's request for markers inside a bounding box.
// Zoom is optional: a nil value skips the minimum-zoom gate. Limit of 0
// means "use the default".
type BoundsQuery struct {
	BBox   repository.BoundingBox
	Zoom   *int
	Limit  int
	Offset int
}

// MapService defines the business logic for the map query surface.
type MapService interface {
	// GetPropertiesInBounds retrieves markers within the bounding box.
	// Returns ErrZoomTooLow when the query's zoom is below the configured
	// minimum (an expected condition for zoomed-out viewports, not a fault).
	// Returns ErrInvalidBounds for a degenerate box.
	GetPropertiesInBounds(ctx context.Context, q BoundsQuery) ([]repository.MapMarker, error)

	// GetPropertyDetails retrieves the full projection for one identifier.
	// Returns ErrPropertyNotFound if no such row exists.
	GetPropertyDetails(ctx context.Context, objectID int64) (*models.Property, error)

	// MinimumZoom returns the configured zoom gate, for error payloads.
	MinimumZoom() int
}

type mapService struct {
	repo    repository.MapRepository
	minZoom int
	log     *logger.Logger
}

// NewMapService creates a new instance of MapService.
func NewMapService(repo repository.MapRepository, minZoom int, log *logger.Logger) MapService {
	return &mapService{
		repo:    repo,
		minZoom: minZoom,
		log:     log,
	}
}

// GetPropertiesInBounds validates the request, applies the zoom gate and
// limit clamping, and queries the repository.
func (s *mapService) GetPropertiesInBounds(ctx context.Context, q BoundsQuery) ([]repository.MapMarker, error) {
	if q.BBox.MinLng >= q.BBox.MaxLng || q.BBox.MinLat >= q.BBox.MaxLat {
		s.log.Warn("Degenerate bounding box", map[string]interface{}{
			"min_lng": q.BBox.MinLng,
			"min_lat": q.BBox.MinLat,
			"max_lng": q.BBox.MaxLng,
			"max_lat": q.BBox.MaxLat,
		})
		return nil, fmt.Errorf("%w: min must be strictly less than max", ErrInvalidBounds)
	}

	// The zoom gate protects against unbounded result sets for a
	// zoomed-out viewport.
	if q.Zoom != nil && *q.Zoom < s.minZoom {
		s.log.Debug("Bounds query rejected below minimum zoom", map[string]interface{}{
			"zoom":     *q.Zoom,
			"min_zoom": s.minZoom,
		})
		return nil, fmt.Errorf("%w: zoom level %d is below minimum required level %d",
			ErrZoomTooLow, *q.Zoom, s.minZoom)
	}

	limit := effectiveLimit(q.Limit)
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	markers, err := s.repo.FindInBounds(ctx, q.BBox, limit, offset)
	if err != nil {
		s.log.Error("Failed to query properties in bounds", err, map[string]interface{}{
			"min_lng": q.BBox.MinLng,
			"min_lat": q.BBox.MinLat,
			"max_lng": q.BBox.MaxLng,
			"max_lat": q.BBox.MaxLat,
			"limit":   limit,
			"offset":  offset,
		})
		return nil, fmt.Errorf("failed to query properties in bounds: %w", err)
	}

	s.log.Info("Bounds query completed", map[string]interface{}{
		"count":  len(markers),
		"limit":  limit,
		"offset": offset,
	})

	return markers, nil
}

// GetPropertyDetails loads the full projection for one property.
func (s *mapService) GetPropertyDetails(ctx context.Context, objectID int64) (*models.Property, error) {
	property, err := s.repo.FindByObjectID(ctx, objectID)
	if err != nil {
		s.log.Error("Failed to query property details", err, map[string]interface{}{
			"object_id": objectID,
		})
		return nil, fmt.Errorf("failed to query property details: %w", err)
	}

	// Repository returns nil, nil when no row found - transform to domain error
	if property == nil {
		s.log.Debug("Property not found", map[string]interface{}{
			"object_id": objectID,
		})
		return nil, ErrPropertyNotFound
	}

	return property, nil
}

// MinimumZoom returns the configured zoom gate.
func (s *mapService) MinimumZoom() int {
	return s.minZoom
}

// effectiveLimit clamps the requested limit to [1, MaxPropertiesLimit],
// defaulting when unspecified.
func effectiveLimit(requested int) int {
	if requested <= 0 {
		return DefaultPropertiesLimit
	}
	if requested > MaxPropertiesLimit {
		return MaxPropertiesLimit
	}
	return requested
}

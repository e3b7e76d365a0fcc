package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/neurastate/datahub/internal/errors"
	"github.com/neurastate/datahub/internal/middleware"
	"github.com/neurastate/datahub/internal/models"
	"github.com/neurastate/datahub/internal/repository"
	"github.com/neurastate/datahub/internal/services"
)

// MapHandler handles map-related HTTP requests.
type MapHandler struct {
	service services.MapService
}

// NewMapHandler creates a new MapHandler instance.
func NewMapHandler(service services.MapService) *MapHandler {
	return &MapHandler{
		service: service,
	}
}

// BoundsRequest represents the query parameters for the bounds endpoint.
// BBox is comma-separated "minLng,minLat,maxLng,maxLat"; zoom is kept as a
// string so an absent value can be told apart from zero. Limit has no upper
// bound here: oversized values are clamped by the service, not rejected.
type BoundsRequest struct {
	BBox   string `form:"bbox" binding:"required"`
	Zoom   string `form:"zoom"`
	Limit  int    `form:"limit" binding:"omitempty,min=1"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}

// BoundsResponse represents the response for the bounds endpoint.
type BoundsResponse struct {
	Properties []repository.MapMarker `json:"properties"`
	Count      int                    `json:"count"`
}

// PropertyResponse represents the response for the detail endpoint.
type PropertyResponse struct {
	Property *PropertyDetail `json:"property"`
}

// PropertyDetail is the full projection served for one property.
type PropertyDetail struct {
	Geometry      *models.Point `json:"geometry,omitempty"`
	Address       string        `json:"address,omitempty"`
	Unit          string        `json:"unit,omitempty"`
	City          string        `json:"city,omitempty"`
	ZipCode       string        `json:"zipCode,omitempty"`
	Owner         string        `json:"owner,omitempty"`
	PropertyType  string        `json:"propertyType,omitempty"`
	Subdivision   string        `json:"subdivision,omitempty"`
	Folio         string        `json:"folio,omitempty"`
	ParentFolio   string        `json:"parentFolio,omitempty"`
	Legal         string        `json:"legal,omitempty"`
	Bedrooms      *float64      `json:"bedrooms,omitempty"`
	Bathrooms     *float64      `json:"bathrooms,omitempty"`
	HalfBathrooms *float64      `json:"halfBathrooms,omitempty"`
	Floors        *float64      `json:"floors,omitempty"`
	Units         *float64      `json:"units,omitempty"`
	BuildingArea  *float64      `json:"buildingArea,omitempty"`
	HeatedArea    *float64      `json:"heatedArea,omitempty"`
	LotSize       *float64      `json:"lotSize,omitempty"`
	YearBuilt     *int          `json:"yearBuilt,omitempty"`
	AssessedValue *float64      `json:"assessedValue,omitempty"`
	LastSalePrice *float64      `json:"lastSalePrice,omitempty"`
	IsParent      bool          `json:"isParent"`
	IsCondo       bool          `json:"isCondo"`
	ObjectID      int64         `json:"objectId"`
}

// Bounds handles GET /api/v1/map/properties.
// It returns lightweight markers for properties inside the bounding box.
func (h *MapHandler) Bounds(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req BoundsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	bbox, ok := parseBoundingBox(req.BBox)
	if !ok {
		apierrors.BadRequest(c, "Invalid bbox parameter. Expected format: minLng,minLat,maxLng,maxLat", nil)
		return
	}

	zoom, ok := parseOptionalInt(req.Zoom)
	if !ok {
		apierrors.BadRequest(c, "Invalid zoom parameter", nil)
		return
	}

	if log != nil {
		log.Info("Processing bounds request", map[string]interface{}{
			"bbox":   req.BBox,
			"zoom":   req.Zoom,
			"limit":  req.Limit,
			"offset": req.Offset,
		})
	}

	markers, err := h.service.GetPropertiesInBounds(c.Request.Context(), services.BoundsQuery{
		BBox:   bbox,
		Zoom:   zoom,
		Limit:  req.Limit,
		Offset: req.Offset,
	})
	if err != nil {
		if errors.Is(err, services.ErrZoomTooLow) {
			apierrors.ZoomTooLow(c, h.service.MinimumZoom())
			return
		}
		if errors.Is(err, services.ErrInvalidBounds) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to query map properties", err)
		return
	}

	c.JSON(http.StatusOK, BoundsResponse{
		Properties: markers,
		Count:      len(markers),
	})
}

// Detail handles GET /api/v1/map/properties/:id.
// It returns the full projection for one property, loaded on demand when a
// marker is selected.
func (h *MapHandler) Detail(c *gin.Context) {
	objectID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || objectID <= 0 {
		apierrors.BadRequest(c, "Invalid property ID", nil)
		return
	}

	property, err := h.service.GetPropertyDetails(c.Request.Context(), objectID)
	if err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			apierrors.NotFound(c, "Property not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to query property details", err)
		return
	}

	c.JSON(http.StatusOK, PropertyResponse{
		Property: mapPropertyToDetail(property),
	})
}

// parseBoundingBox parses "minLng,minLat,maxLng,maxLat".
func parseBoundingBox(raw string) (repository.BoundingBox, bool) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return repository.BoundingBox{}, false
	}

	values := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return repository.BoundingBox{}, false
		}
		values[i] = v
	}

	return repository.BoundingBox{
		MinLng: values[0],
		MinLat: values[1],
		MaxLng: values[2],
		MaxLat: values[3],
	}, true
}

// parseOptionalInt parses a query value that may legitimately be absent.
func parseOptionalInt(raw string) (*int, bool) {
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, false
	}
	return &v, true
}

// mapPropertyToDetail converts a Property model to the detail DTO,
// collapsing nil pointer fields where the DTO uses zero values.
func mapPropertyToDetail(p *models.Property) *PropertyDetail {
	if p == nil {
		return nil
	}

	dto := &PropertyDetail{
		ObjectID:      p.ObjectID,
		Geometry:      p.Geom,
		Bedrooms:      p.BedroomCount,
		Bathrooms:     p.BathroomCount,
		HalfBathrooms: p.HalfBathroomCount,
		Floors:        p.FloorCount,
		Units:         p.UnitCount,
		BuildingArea:  p.BuildingActualArea,
		HeatedArea:    p.BuildingHeatedArea,
		LotSize:       p.LotSize,
		YearBuilt:     p.YearBuilt,
		AssessedValue: p.AssessedValCur,
		LastSalePrice: p.Price1,
	}

	if p.Folio != nil {
		dto.Folio = *p.Folio
	}
	if p.ParentFolio != nil {
		dto.ParentFolio = *p.ParentFolio
	}
	if p.SiteAddress != nil {
		dto.Address = *p.SiteAddress
	}
	if p.SiteUnit != nil {
		dto.Unit = *p.SiteUnit
	}
	if p.SiteCity != nil {
		dto.City = *p.SiteCity
	}
	if p.SiteZipCode != nil {
		dto.ZipCode = *p.SiteZipCode
	}
	if p.Owner1 != nil {
		dto.Owner = *p.Owner1
	}
	if p.DorDesc != nil {
		dto.PropertyType = *p.DorDesc
	}
	if p.Subdivision != nil {
		dto.Subdivision = *p.Subdivision
	}
	if p.Legal != nil {
		dto.Legal = *p.Legal
	}
	if p.IsParentFolio != nil {
		dto.IsParent = *p.IsParentFolio
	}
	if p.CondoFlag != nil {
		dto.IsCondo = *p.CondoFlag
	}

	return dto
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/neurastate/datahub/internal/models"
	"github.com/neurastate/datahub/internal/repository"
	"github.com/neurastate/datahub/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMapService is a mock implementation of MapService for handler tests.
type MockMapService struct {
	mock.Mock
}

func (m *MockMapService) GetPropertiesInBounds(ctx context.Context, q services.BoundsQuery) ([]repository.MapMarker, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.MapMarker), args.Error(1)
}

func (m *MockMapService) GetPropertyDetails(ctx context.Context, objectID int64) (*models.Property, error) {
	args := m.Called(ctx, objectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockMapService) MinimumZoom() int {
	args := m.Called()
	return args.Int(0)
}

func setupRouter(service services.MapService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewMapHandler(service)
	router.GET("/api/v1/map/properties", handler.Bounds)
	router.GET("/api/v1/map/properties/:id", handler.Detail)
	return router
}

func TestBounds_Success(t *testing.T) {
	mockService := new(MockMapService)
	router := setupRouter(mockService)

	markers := []repository.MapMarker{
		{ObjectID: 101, Lng: -80.21, Lat: 25.77},
		{ObjectID: 102, Lng: -80.19, Lat: 25.81},
	}
	mockService.On("GetPropertiesInBounds", mock.Anything, mock.MatchedBy(func(q services.BoundsQuery) bool {
		return q.BBox.MinLng == -80.3 && q.BBox.MaxLat == 25.9 && q.Zoom == nil
	})).Return(markers, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/map/properties?bbox=-80.3,25.7,-80.1,25.9", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp BoundsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, int64(101), resp.Properties[0].ObjectID)
}

func TestBounds_MissingBBox(t *testing.T) {
	mockService := new(MockMapService)
	router := setupRouter(mockService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/map/properties", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "GetPropertiesInBounds")
}

func TestBounds_MalformedBBox(t *testing.T) {
	tests := []string{
		"not-numbers",
		"-80.3,25.7,-80.1",
		"-80.3,25.7,-80.1,25.9,extra",
		"-80.3,abc,-80.1,25.9",
	}

	for _, bbox := range tests {
		t.Run(bbox, func(t *testing.T) {
			mockService := new(MockMapService)
			router := setupRouter(mockService)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/map/properties?bbox="+bbox, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestBounds_ZoomTooLow(t *testing.T) {
	mockService := new(MockMapService)
	router := setupRouter(mockService)

	mockService.On("GetPropertiesInBounds", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: zoom level 10 is below minimum required level 16", services.ErrZoomTooLow))
	mockService.On("MinimumZoom").Return(16)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/map/properties?bbox=-80.3,25.7,-80.1,25.9&zoom=10", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error struct {
			Code    string                 `json:"code"`
			Message string                 `json:"message"`
			Details map[string]interface{} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ZOOM_TOO_LOW", resp.Error.Code)
	assert.Equal(t, float64(16), resp.Error.Details["min_zoom"])
	assert.Contains(t, resp.Error.Message, "Zoom in")
}

func TestBounds_ZoomPassedThrough(t *testing.T) {
	mockService := new(MockMapService)
	router := setupRouter(mockService)

	mockService.On("GetPropertiesInBounds", mock.Anything, mock.MatchedBy(func(q services.BoundsQuery) bool {
		return q.Zoom != nil && *q.Zoom == 17 && q.Limit == 500 && q.Offset == 100
	})).Return([]repository.MapMarker{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/map/properties?bbox=-80.3,25.7,-80.1,25.9&zoom=17&limit=500&offset=100", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestBounds_OversizedLimitReachesService(t *testing.T) {
	mockService := new(MockMapService)
	router := setupRouter(mockService)

	// Clamping is the service's job; the handler passes the raw value.
	mockService.On("GetPropertiesInBounds", mock.Anything, mock.MatchedBy(func(q services.BoundsQuery) bool {
		return q.Limit == 9999
	})).Return([]repository.MapMarker{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/map/properties?bbox=-80.3,25.7,-80.1,25.9&limit=9999", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestBounds_ServiceError(t *testing.T) {
	mockService := new(MockMapService)
	router := setupRouter(mockService)

	mockService.On("GetPropertiesInBounds", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/map/properties?bbox=-80.3,25.7,-80.1,25.9", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDetail_Success(t *testing.T) {
	mockService := new(MockMapService)
	router := setupRouter(mockService)

	addr := "123 BISCAYNE BLVD"
	owner := "OCEAN HOLDINGS LLC"
	isParent := true
	property := &models.Property{
		ObjectID:      456789,
		SiteAddress:   &addr,
		Owner1:        &owner,
		IsParentFolio: &isParent,
		Geom:          &models.Point{Coordinates: [2]float64{-80.19, 25.78}, SRID: models.WGS84SRID},
	}
	mockService.On("GetPropertyDetails", mock.Anything, int64(456789)).Return(property, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/map/properties/456789", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp PropertyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Property)
	assert.Equal(t, int64(456789), resp.Property.ObjectID)
	assert.Equal(t, "123 BISCAYNE BLVD", resp.Property.Address)
	assert.Equal(t, "OCEAN HOLDINGS LLC", resp.Property.Owner)
	assert.True(t, resp.Property.IsParent)
	require.NotNil(t, resp.Property.Geometry)
	assert.Equal(t, -80.19, resp.Property.Geometry.Lng())
}

func TestDetail_NotFound(t *testing.T) {
	mockService := new(MockMapService)
	router := setupRouter(mockService)

	mockService.On("GetPropertyDetails", mock.Anything, int64(999999999)).
		Return(nil, services.ErrPropertyNotFound)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/map/properties/999999999", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDetail_InvalidID(t *testing.T) {
	tests := []string{"abc", "-5", "0"}

	for _, id := range tests {
		t.Run(id, func(t *testing.T) {
			mockService := new(MockMapService)
			router := setupRouter(mockService)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/map/properties/"+id, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			mockService.AssertNotCalled(t, "GetPropertyDetails")
		})
	}
}

func TestDetail_ServiceError(t *testing.T) {
	mockService := new(MockMapService)
	router := setupRouter(mockService)

	mockService.On("GetPropertyDetails", mock.Anything, int64(5)).
		Return(nil, errors.New("timeout"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/map/properties/5", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

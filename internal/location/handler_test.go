package location

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/srkulkarni196974-max/SDMCET-bus-tracking/internal/bus"
)

func setupLocationRouter(t *testing.T) (*gin.Engine, *Store) {
	t.Helper()
	store, _ := setupTestStore(t)
	h := NewHandler(store)
	router := gin.New()
	h.RegisterRoutes(router)
	return router, store
}

func TestListActiveOnRoute(t *testing.T) {
	router, store := setupLocationRouter(t)
	ctx := context.Background()

	if err := store.DB.Create(&bus.Bus{BusNumber: "BUS-07", LicensePlate: "KA25-1234"}).Error; err != nil {
		t.Fatalf("failed to seed bus: %v", err)
	}
	_ = store.UpsertLocation(ctx, "KA25-1234", 5, 15.44, 74.98)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/locations?route_id=5", nil)
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data []ActiveBus `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].BusNumber != "BUS-07" {
		t.Fatalf("unexpected data: %+v", resp.Data)
	}

	// missing route_id is a bad request
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/locations", nil)
	router.ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without route_id, got %d", w.Code)
	}

	// a route with no active buses serves an empty list, not null
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/locations?route_id=99", nil)
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for empty route, got %d", w.Code)
	}
	if body := w.Body.String(); body != `{"data":[]}` {
		t.Fatalf("expected empty data array, got %s", body)
	}
}

func TestListActivePlatesEndpoint(t *testing.T) {
	router, store := setupLocationRouter(t)
	ctx := context.Background()

	_ = store.UpsertLocation(ctx, "KA25-1111", 1, 15.44, 74.98)
	_ = store.UpsertLocation(ctx, "KA25-2222", 1, 15.45, 74.99)
	_ = store.Deactivate(ctx, "KA25-2222")

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/locations/active-plates", nil)
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Data []string `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0] != "KA25-1111" {
		t.Fatalf("expected [KA25-1111], got %v", resp.Data)
	}
}

func TestListPathsEndpoint(t *testing.T) {
	router, store := setupLocationRouter(t)
	ctx := context.Background()

	_ = store.AppendPathPoint(ctx, "KA25-1234", 15.44, 74.98)
	_ = store.AppendPathPoint(ctx, "KA25-1234", 15.45, 74.99)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/paths?plates=KA25-1234,KA25-9999", nil)
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Data []TripPath `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("expected 2 path points, got %d", len(resp.Data))
	}

	// plates parameter is required
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/paths", nil)
	router.ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without plates, got %d", w.Code)
	}
}

package route

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	gsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupRouteRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(gsqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite memory DB: %v", err)
	}
	if err := db.AutoMigrate(&Route{}); err != nil {
		t.Fatalf("automigrate failed: %v", err)
	}

	h := NewHandler(db)
	router := gin.New()
	h.RegisterRoutes(router)
	return router, db
}

func seedRoutes(t *testing.T, db *gorm.DB) {
	t.Helper()
	rows := []Route{
		{Region: "Dharwad", RouteName: "Route 1", Description: "CBT to Campus"},
		{Region: "Dharwad", RouteName: "Route 2", Description: "Station to Campus"},
		{Region: "Hubli", RouteName: "Route 3", Description: "Old Bus Stand to Campus"},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("failed to seed route: %v", err)
		}
	}
}

func TestListRoutesFilteredByRegion(t *testing.T) {
	router, db := setupRouteRouter(t)
	seedRoutes(t, db)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/routes?region=Dharwad", nil)
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Data []Route `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("expected 2 Dharwad routes, got %d", len(resp.Data))
	}
	for _, rt := range resp.Data {
		if rt.Region != "Dharwad" {
			t.Fatalf("wrong region in filtered list: %+v", rt)
		}
	}
}

func TestListRegionsDistinct(t *testing.T) {
	router, db := setupRouteRouter(t)
	seedRoutes(t, db)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/routes/regions", nil)
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
	if len(resp.Data) != 2 || resp.Data[0] != "Dharwad" || resp.Data[1] != "Hubli" {
		t.Fatalf("expected [Dharwad Hubli], got %v", resp.Data)
	}
}

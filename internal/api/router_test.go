package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Pintuzoft/osbase/internal/config"
	"github.com/Pintuzoft/osbase/internal/domain"
	"github.com/Pintuzoft/osbase/internal/engine"
	"github.com/Pintuzoft/osbase/internal/stats"
)

type stubHost struct{}

func (stubHost) MovePlayer(handle int, side domain.Side) {}
func (stubHost) Broadcast(text string)                   {}

func TestTeamsEndpoint(t *testing.T) {
	eng := engine.New(config.Default(), stats.NewStore(), nil, nil, stubHost{})
	mux := Router(NewHub(), eng)

	req := httptest.NewRequest(http.MethodGet, "/api/teams", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/teams = %d, want 200", rec.Code)
	}
	var out []domain.TeamStatusData
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("fresh engine served %v, want an empty list", out)
	}
}

func TestTeamsEndpointRejectsNonGet(t *testing.T) {
	eng := engine.New(config.Default(), stats.NewStore(), nil, nil, stubHost{})
	mux := Router(NewHub(), eng)

	req := httptest.NewRequest(http.MethodPost, "/api/teams", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /api/teams = %d, want 405", rec.Code)
	}
}

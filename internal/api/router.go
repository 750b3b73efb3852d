package api

import (
	"encoding/json"
	"net/http"

	"github.com/Pintuzoft/osbase/internal/domain"
	"github.com/Pintuzoft/osbase/internal/engine"
)

// Router serves the observer endpoints: the WebSocket event stream and a
// JSON summary of the current teams.
func Router(hub *Hub, eng *engine.Engine) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.HandleFunc("/api/teams", func(w http.ResponseWriter, r *http.Request) {
		handleTeams(w, r, eng)
	})
	return mux
}

func handleTeams(w http.ResponseWriter, r *http.Request, eng *engine.Engine) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// The engine publishes this summary copy from its loop goroutine; the
	// live snapshot is never read from here.
	out := eng.TeamStatus()
	if out == nil {
		out = []domain.TeamStatusData{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// internal/handlers/health.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/momentchat/moment/internal/database"
)

// HealthHandler reports process liveness and whether persistence is attached.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	resp := map[string]interface{}{
		"status":   "ok",
		"database": database.DB != nil,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

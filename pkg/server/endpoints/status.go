package endpoints

import (
	"net/http"
	"os"

	"github.com/docvault/docvault/pkg/server"
	"gorm.io/gorm"
)

// HealthResponse represents the response from /health
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// RegisterStatusEndpoints registers the health and info endpoints
func RegisterStatusEndpoints(s *server.Server) {
	// GET /health - Health check (no auth required)
	s.Router.HandleFunc("/health", handleHealth(s.DB)).Methods("GET")
}

func handleHealth(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version := os.Getenv("DOCVAULT_VERSION_DISPLAY")
		if version == "" {
			version = "0.1.0"
		}

		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.Ping()
			}
			if err != nil {
				respondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{
					Status:  "error",
					Version: version,
				})
				return
			}
		}

		respondWithJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: version,
		})
	}
}

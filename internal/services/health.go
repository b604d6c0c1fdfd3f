package services

import (
	"fmt"
	"log"

	"github.com/custodia-app/custodia/internal/config"
	"github.com/custodia-app/custodia/internal/storage"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	BlobStore    string            `json:"blob_store"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// HealthCheck performs a comprehensive health check of the service
func HealthCheck(cfg *config.Config, db *gorm.DB, store *storage.BlobStore) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	// Check database connectivity
	sqlDB, err := db.DB()
	if err != nil {
		result.Status = "unhealthy"
		result.Database = "error"
		result.Details["database_error"] = err.Error()
		result.ErrorMessage = fmt.Sprintf("Database connection error: %v", err)
		log.Printf("Health check failed - database connection: %v", err)
	} else {
		if err := sqlDB.Ping(); err != nil {
			result.Status = "unhealthy"
			result.Database = "unreachable"
			result.Details["database_ping_error"] = err.Error()
			result.ErrorMessage = fmt.Sprintf("Database ping failed: %v", err)
			log.Printf("Health check failed - database ping: %v", err)
		} else {
			result.Database = "ok"
			result.Details["database_type"] = cfg.DBType
			result.Details["database_name"] = cfg.DBDatabase
		}
	}

	// Check blob store writability
	if store == nil {
		result.BlobStore = "disabled"
	} else if err := store.Ping(); err != nil {
		result.Status = "unhealthy"
		result.BlobStore = "not writable"
		result.Details["blob_store_error"] = err.Error()
		if result.ErrorMessage == "" {
			result.ErrorMessage = fmt.Sprintf("Blob store probe failed: %v", err)
		} else {
			result.ErrorMessage += fmt.Sprintf("; blob store probe failed: %v", err)
		}
		log.Printf("Health check failed - blob store probe: %v", err)
	} else {
		result.BlobStore = "ok"
		result.Details["blob_root"] = store.Root()
	}

	return result
}

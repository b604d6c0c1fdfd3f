// main.go
//
// Custodia - self-hosted personal asset and deadline tracking service
// Copyright (c) 2026 Custodia Authors
//
// This file is part of custodia.
// custodia is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// custodia is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with custodia.
// If not, see <https://www.gnu.org/licenses/>.

// Container health probe: verifies the HTTP listener, the database and the
// blob store, prints the result as JSON and exits non-zero when unhealthy.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/custodia-app/custodia/internal/config"
	"github.com/custodia-app/custodia/internal/database"
	"github.com/custodia-app/custodia/internal/services"
	"github.com/custodia-app/custodia/internal/storage"
	"github.com/custodia-app/custodia/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// The server must be accepting connections
	if err := utils.PingServer(cfg.Port); err != nil {
		fmt.Fprintf(os.Stderr, "Server not listening on port %s: %v\n", cfg.Port, err)
		os.Exit(1)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close(db)

	store, err := storage.NewBlobStore(cfg.BlobRoot, cfg.BlobPublicURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open blob store: %v\n", err)
		os.Exit(1)
	}

	result := services.HealthCheck(cfg, db, store)

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))

	if result.Status != "healthy" {
		os.Exit(1)
	}
}

// Migrate applies or rolls back database migrations.
// Usage: migrate [up|down]; default is up.
package main

import (
	"log"
	"os"

	"rentcar-backoffice/internal/config"
	"rentcar-backoffice/internal/db/migrate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	if err := migrate.Run(cfg.DatabaseURL, direction); err != nil {
		log.Fatalf("migrate %s: %v", direction, err)
	}
	log.Printf("migrate %s: done", direction)
}

package main

import (
	"fmt"
	"log"

	"finance-tracker/internal/config"
	"finance-tracker/internal/database"
	"finance-tracker/internal/router"
)

func main() {
	// load configuration
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// the shipped secret is for development only
	if cfg.JWT.Secret == config.DefaultJWTSecret && cfg.Server.Mode == "release" {
		log.Fatal("refusing to start in release mode with the default JWT secret; set FT_JWT_SECRET")
	}

	// database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	// HTTP server
	r := router.SetupRouter(cfg, db)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Printf("listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

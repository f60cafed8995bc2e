package main

import (
	"context"
	"log"

	"reup-backend/internal/bootstrap"
	"reup-backend/internal/shared/config"
	"reup-backend/internal/shared/server"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	if cfg.ReconcileInterval > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go app.Sweeper.Run(ctx)
	}

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s", addr)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

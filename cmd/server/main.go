// Command server runs the docket HTTP service: the case store, prompt
// overrides and the assistant endpoints under one API module.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JaimeStill/docket/internal/config"
)

func main() {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := newServer(cfg)
	if err != nil {
		log.Fatal("server init failed: ", err)
	}

	if err := srv.run(ctx); err != nil {
		log.Fatal(err)
	}
}

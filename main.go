package main

import (
	"os"

	"github.com/haushalt/haushalt/internal/app"
	log "github.com/sirupsen/logrus"
)

func configureLogging() {
	log.SetLevel(log.InfoLevel)
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		level, err := log.ParseLevel(raw)
		if err != nil {
			log.Fatalf("invalid LOG_LEVEL %q: %v", raw, err)
		}
		log.SetLevel(level)
	}
}

func main() {
	configureLogging()

	application, err := app.NewApplication()
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	if err := application.Run(); err != nil {
		log.Fatal(err)
	}
}

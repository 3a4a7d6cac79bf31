package main

import (
	"log"

	"github.com/rxtech-lab/ohlc-tracker/internal/config"
)

func main() {
	schemaPath, samplePath, err := config.WriteSample("./config")
	if err != nil {
		log.Fatalf("Failed to generate config: %v", err)
	}

	log.Printf("Sample config available at %s", samplePath)
	log.Printf("Schema successfully generated at %s", schemaPath)
}

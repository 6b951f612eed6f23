package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/sheikh-riyadh/due-sample-server/internal/logger"
	"github.com/sheikh-riyadh/due-sample-server/sampleservice"
)

func main() {
	// A .env file is optional; the process environment always wins.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log := logger.New("sample-service")
		log.Fatal().Err(err).Msg("Failed to read .env")
	}
	if err := sampleservice.Run(); err != nil {
		os.Exit(1)
	}
}

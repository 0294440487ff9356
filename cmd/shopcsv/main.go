package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/badno/shopcsv/cmd/shopcsv/cmd"
)

func main() {
	// Database credentials may live in a local .env file; missing is fine.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

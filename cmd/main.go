package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/kobe4cn/kb-rerank/cmd/rerank"
)

func main() {
	// Load local environment overrides; a missing .env file is fine
	_ = godotenv.Load()

	if err := rerank.Execute(); err != nil {
		os.Exit(1)
	}
}

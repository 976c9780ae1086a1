package main

import (
	"github.com/joho/godotenv"
)

func main() {
	// Local development reads Redis and database settings from .env.
	_ = godotenv.Load()
	Execute()
}

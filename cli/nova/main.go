package main

import (
	"os"

	"github.com/joho/godotenv"

	novacmder "github.com/novalabs/nova/cmd/nova"
)

func main() {
	// Optional; env vars may come from the environment directly.
	_ = godotenv.Load()

	cmd := novacmder.NewNovaCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

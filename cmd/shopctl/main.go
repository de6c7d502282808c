package main

import (
	"github.com/ariefcatur/go-shop-bot/internal/cli"
	"github.com/joho/godotenv"
	"os"
)

func main() {
	_ = godotenv.Load()
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

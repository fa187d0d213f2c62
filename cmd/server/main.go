package main

import (
	"log"

	"coinflip-platform/internal/app"
)

func main() {
	server := app.NewServer()
	log.Fatal(server.Start())
}

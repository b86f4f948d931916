package main

import (
	"log"

	"github.com/MrSnakeDoc/pinned/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ pinned failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ pinned stopped with error: %v", err)
	}
}

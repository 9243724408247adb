package main

import (
	"context"
	"log"

	"github.com/vendormesh/checkout/internal/app/api"
)

func main() {
	if err := api.Run(context.Background()); err != nil {
		log.Fatalf("checkout api exited: %v", err)
	}
}

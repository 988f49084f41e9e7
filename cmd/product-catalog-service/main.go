// Package main boots the Product Catalog Service HTTP server.
package main

import (
	"os"

	"github.com/fairyhunter13/product-catalog-service/internal/obs"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		obs.Logger.Error("service_failed", "error", err)
		os.Exit(1)
	}
}

// Command admin-token mints a bearer token for the storefront admin API.
//
//	ADMIN_JWT_SECRET=... go run ./cmd/admin-token -email owner@shop.example
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/middleware"
)

func main() {
	email := flag.String("email", "", "admin email recorded as createdBy on new products")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	logger := log.New(os.Stderr, "[admin-token] ", 0)

	cfg := config.Load()
	if cfg.AdminJWTSecret == "" {
		logger.Fatal("ADMIN_JWT_SECRET is not set")
	}
	if *email == "" {
		logger.Fatal("-email is required")
	}

	token, err := middleware.SignAdminToken(cfg.AdminJWTSecret, *email, middleware.RoleAdmin, *ttl)
	if err != nil {
		logger.Fatalf("sign token: %v", err)
	}
	fmt.Println(token)
}

// Command tokengen mints an admin access token for the protected endpoints.
// It reads the same JWT_* environment variables the server uses, so a token
// minted here validates against a server started from the same env.
package main

import (
	"flag"
	"fmt"
	"log"

	"smartmatch/internal/config"
	"smartmatch/internal/pkg/jwt"

	"github.com/google/uuid"
)

func main() {
	operator := flag.String("operator", "", "operator UUID (random when empty)")
	refresh := flag.Bool("refresh", false, "also print a refresh token")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	operatorID := uuid.New()
	if *operator != "" {
		operatorID, err = uuid.Parse(*operator)
		if err != nil {
			log.Fatalf("invalid operator id: %v", err)
		}
	}

	svc := jwt.NewHMACService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiresIn,
		cfg.JWT.RefreshExpiresIn,
	)

	access, err := svc.GenerateAccessToken(operatorID, jwt.RoleAdmin)
	if err != nil {
		log.Fatalf("failed to generate access token: %v", err)
	}

	fmt.Printf("operator_id=%s\n", operatorID)
	fmt.Printf("access_token=%s\n", access)

	if *refresh {
		rt, err := svc.GenerateRefreshToken(operatorID)
		if err != nil {
			log.Fatalf("failed to generate refresh token: %v", err)
		}
		fmt.Printf("refresh_token=%s\n", rt)
	}
}

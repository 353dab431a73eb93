package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/okrhub/okrhub/backend/internal/utils"
)

// Mints a signed token for local development, so the API can be exercised
// without a running identity provider.
func main() {
	uid := flag.String("uid", "", "subject uid (required)")
	username := flag.String("username", "", "username claim (defaults to uid)")
	email := flag.String("email", "", "email claim")
	hours := flag.Int("hours", 24, "token lifetime in hours")
	flag.Parse()

	if *uid == "" {
		flag.Usage()
		os.Exit(2)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	utils.SetJWTSecret(secret)

	name := *username
	if name == "" {
		name = *uid
	}

	token, err := utils.GenerateToken(*uid, name, *email, *hours)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}

	fmt.Println(token)
}

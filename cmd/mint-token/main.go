// Command mint-token prints an HS256 token accepted by GET /api/analytics
// when ANALYTICS_READ_SECRET is configured.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	subject := flag.String("sub", "analyst", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("ANALYTICS_READ_SECRET")
	if secret == "" {
		log.Fatal("❌ ANALYTICS_READ_SECRET is required")
	}

	token, err := mint(secret, *subject, *ttl, time.Now())
	if err != nil {
		log.Fatalf("❌ Failed to sign token: %v", err)
	}
	fmt.Println(token)
}

func mint(secret, subject string, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Command admintoken prints a bearer token for the admin API.
//
//	go run ./cmd/admintoken -subject ops@example.com -ttl 24h
//
// The signing key is read from api.jwt_signing_key (or API_JWT_SIGNING_KEY).
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/communityhub/goldledger/internal/config"
	"github.com/communityhub/goldledger/internal/pkg/jwthelper"
)

func main() {
	configPath := flag.String("config", "./cmd/app/config.yml", "path to the config file")
	subject := flag.String("subject", "admin", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config -> %v\n", err)
		os.Exit(1)
	}
	if conf.API.JWTSigningKey == "" {
		fmt.Fprintln(os.Stderr, "api.jwt_signing_key is empty")
		os.Exit(1)
	}

	token, err := jwthelper.GenerateToken([]byte(conf.API.JWTSigningKey), *subject, jwthelper.RoleAdmin, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token -> %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}

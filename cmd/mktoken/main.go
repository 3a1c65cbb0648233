// This command is only used for local testing: it mints an HS256 token for
// an arbitrary subject and role so API routes can be exercised with curl
// against a local server.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Secret     string `env:"JWT_SECRET, required"`
	Subject    string `env:"UTIL_SUBJECT, default=local-test-user"`
	Role       string `env:"UTIL_ROLE, default=admin"`
	ExpirySecs int    `env:"UTIL_EXPIRY_SECS, default=3600"`
}

func main() {
	cfg := Config{}
	err := envconfig.Process(context.Background(), &cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading config: %v\n", err)
		os.Exit(1)
	}

	key, err := jwk.Import([]byte(cfg.Secret))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading signing key: %v\n", err)
		os.Exit(1)
	}

	now := time.Now()
	token, err := jwt.NewBuilder().
		Subject(cfg.Subject).
		Claim("role", cfg.Role).
		IssuedAt(now).
		Expiration(now.Add(time.Duration(cfg.ExpirySecs) * time.Second)).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error building token: %v\n", err)
		os.Exit(1)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), key))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error signing token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(signed))
}

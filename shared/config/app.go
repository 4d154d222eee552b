package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// App is the process-wide configuration, built once at startup and treated as
// read-only afterwards. Handlers receive it by injection instead of reading
// ambient environment state.
type App struct {
	JWTSecret          []byte
	TokenTTL           time.Duration
	S3Bucket           string
	S3Region           string
	KafkaBroker        string
	RevalidateEndpoint string
}

// LoadApp builds the application config from the environment.
func LoadApp() (*App, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	ttlHours := 24
	if v := os.Getenv("TOKEN_TTL_HOURS"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid TOKEN_TTL_HOURS %q", v)
		}
		ttlHours = parsed
	}

	return &App{
		JWTSecret:          []byte(secret),
		TokenTTL:           time.Duration(ttlHours) * time.Hour,
		S3Bucket:           getEnv("S3_BUCKET", "community-platform-assets"),
		S3Region:           getEnv("AWS_REGION", "us-east-1"),
		KafkaBroker:        getEnv("KAFKA_BROKER", "localhost:9092"),
		RevalidateEndpoint: getEnv("REVALIDATE_ENDPOINT", "http://localhost:3000/api/revalidate"),
	}, nil
}

package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	GinMode        string
	DatabaseDSN    string
	AllowedOrigins []string
	JWTSecret      string
	ClosePassword  string
	RabbitMQURL    string
	Mail           Mail
}

type Mail struct {
	Host     string
	Port     int
	User     string
	Password string
	To       string
}

// DefaultJWTSecret signs tokens when JWT_SECRET is unset. Anyone who knows it can
// forge tokens, so it is only fit for development.
const DefaultJWTSecret = "tpv-secret"

// UsesDefaultSecret reports whether tokens are signed with DefaultJWTSecret.
func (c Config) UsesDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

// Enabled reports whether SMTP credentials are present.
func (m Mail) Enabled() bool {
	return m.User != "" && m.Password != ""
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	_ = godotenv.Load()

	origins := []string{"http://localhost:3000"}
	if extra := os.Getenv("ALLOWED_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	mail := Mail{
		Host:     getenv("SMTP_HOST", "smtp.gmail.com"),
		Port:     atoi(os.Getenv("SMTP_PORT"), 587),
		User:     os.Getenv("EMAIL_USER"),
		Password: os.Getenv("EMAIL_PASS"),
		To:       os.Getenv("EMAIL_TO"),
	}
	if mail.To == "" {
		mail.To = mail.User
	}

	return Config{
		Port:           getenv("PORT", "8083"),
		GinMode:        os.Getenv("GIN_MODE"),
		DatabaseDSN:    getenv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=tpv port=5432 sslmode=disable"),
		AllowedOrigins: origins,
		JWTSecret:      getenv("JWT_SECRET", DefaultJWTSecret),
		ClosePassword:  os.Getenv("CLOSE_PASSWORD"),
		RabbitMQURL:    os.Getenv("RABBITMQ_URL"),
		Mail:           mail,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func atoi(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

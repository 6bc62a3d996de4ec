package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config collects everything the service reads from the environment.
// Both OAuth endpoints of the old setup carried their own hardcoded
// credentials; here there is exactly one set, sourced from env.
type Config struct {
	Port    string
	DataDir string

	DiscordClientID     string
	DiscordClientSecret string
	DiscordRedirectURI  string
	DiscordBotToken     string
	DiscordGuildID      string
	DiscordInviteURL    string
	DiscordWebhookURL   string
	DiscordAPIBase      string

	JWTSecret     string
	DBDSN         string
	AdminEmail    string
	AdminPassword string

	SMTPServer string
	SMTPPort   string
	SMTPUser   string
	SMTPPass   string
	FromAddr   string
	FromName   string
}

func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Port:    getenv("GIN_PORT", "8080"),
		DataDir: getenv("DATA_DIR", "data"),

		DiscordClientID:     os.Getenv("DISCORD_CLIENT_ID"),
		DiscordClientSecret: os.Getenv("DISCORD_CLIENT_SECRET"),
		DiscordRedirectURI:  os.Getenv("DISCORD_REDIRECT_URI"),
		DiscordBotToken:     os.Getenv("DISCORD_BOT_TOKEN"),
		DiscordGuildID:      os.Getenv("DISCORD_GUILD_ID"),
		DiscordInviteURL:    os.Getenv("DISCORD_INVITE_URL"),
		DiscordWebhookURL:   os.Getenv("DISCORD_WEBHOOK_URL"),
		DiscordAPIBase:      getenv("DISCORD_API_BASE", "https://discord.com/api/v10"),

		JWTSecret:     os.Getenv("SECRET"),
		DBDSN:         os.Getenv("DB"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		SMTPServer: os.Getenv("SMTP_SERVER"),
		SMTPPort:   os.Getenv("SMTP_PORT"),
		SMTPUser:   os.Getenv("SMTP_USER"),
		SMTPPass:   os.Getenv("SMTP_PASS"),
		FromAddr:   os.Getenv("FROM_ADDR"),
		FromName:   os.Getenv("FROM_NAME"),
	}

	if cfg.DiscordClientID == "" || cfg.DiscordClientSecret == "" {
		return nil, fmt.Errorf("missing DISCORD_CLIENT_ID or DISCORD_CLIENT_SECRET")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing SECRET")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

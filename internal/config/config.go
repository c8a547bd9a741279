package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

type Config struct {
	// DiscordGuildIDs is the list of guilds the bot answers in. PMs are
	// always listened to.
	DiscordGuildIDs []string

	// DiscordAdminRoleID is an optional role treated as tax-admin on top of
	// guild owners, granted users, and native administrators.
	DiscordAdminRoleID string

	// DiscordLogChannelID is the optional operators channel receiving
	// payment audits, unpaid lists, and sweep reports.
	DiscordLogChannelID string

	// ReminderEnabled/ReminderHour control the daily automatic sweep.
	// ReminderHour is an hour of day in the host timezone (0-23).
	ReminderEnabled bool
	ReminderHour    int

	// SQLDSN is the SQLite datasource, defaults to ./tithe.db.
	SQLDSN string

	// WebListenAddr is where the read-only HTTP API listens. Empty
	// disables the API entirely.
	WebListenAddr string

	DiscordToken, WebToken string
}

func NewFromUserConfigDir() (*Config, error) {
	c := &Config{}
	if err := c.ReloadFromUserConfigDir(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) expandFromEnv() {
	vars := []struct {
		src string
		dst *string
	}{
		{"TITHE_DISCORD_TOKEN", &c.DiscordToken},
		{"TITHE_WEB_TOKEN", &c.WebToken},
		{"TITHE_SQL_DSN", &c.SQLDSN},
	}

	for _, v := range vars {
		if str := os.Getenv(v.src); str != "" {
			*v.dst = str
		}
	}

	if c.SQLDSN == "" {
		c.SQLDSN = "./tithe.db"
	}
}

func (c *Config) ReloadFromUserConfigDir() error {
	defer c.expandFromEnv()

	path, err := getOrCreateUserConfigPath()
	if err != nil {
		return err
	}
	log.Printf("debug: reading conf from %s", path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		*c = Config{}
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewDecoder(f).Decode(c)
}

func getOrCreateUserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(configDir, "tithe")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}

	return filepath.Join(dir, "config.json"), nil
}

func (c *Config) Write() error {
	path, err := getOrCreateUserConfigPath()
	if err != nil {
		return err
	}
	log.Printf("debug: writing conf to %s", path)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o700)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(f).Encode(c); err != nil {
		if err2 := f.Close(); err2 != nil {
			return fmt.Errorf("unable to close file (%s) after error: %w", err2, err)
		}

		return err
	}

	return f.Close()
}

// IsListenedGuild tells if the bot should answer to guild messages
// originating from the given guild ID. An empty ID (PM) is always accepted.
func (c *Config) IsListenedGuild(guildID string) bool {
	if guildID == "" || len(c.DiscordGuildIDs) == 0 {
		return true
	}

	for _, v := range c.DiscordGuildIDs {
		if v == guildID {
			return true
		}
	}

	return false
}

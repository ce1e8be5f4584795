// SPDX-License-Identifier: GPL-3.0-or-later
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/CrawX/go-imap-mailsync/domain"
)

// Duration decodes TOML strings like "2m" or "15s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("could not parse duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Config struct {
	Database string
	Driver   string

	ImapHost       string
	ImapPort       int
	Security       string
	User           string
	Password       string
	DisplayAddress string

	SmtpHost     string
	SmtpPort     int
	SmtpSecurity string
	SentFolder   string

	Compress bool

	Folders        []string
	FastBatch      int
	TargetLimit    int
	BatchSize      int
	SyncInterval   Duration
	EvictAfterDays int

	ConnectTimeout Duration
	AuthTimeout    Duration

	AutoSync                bool
	RollbackOnRemoteFailure bool

	SessionTTL  Duration
	MaxSessions int

	Loglevel *string
}

func defaults() *Config {
	return &Config{
		Database:       "mailcache.db",
		Driver:         "sqlite3",
		ImapPort:       993,
		Security:       string(domain.SecurityTLS),
		Folders:        []string{"INBOX"},
		FastBatch:      20,
		TargetLimit:    200,
		BatchSize:      50,
		SyncInterval:   Duration{2 * time.Minute},
		EvictAfterDays: 7,
		ConnectTimeout: Duration{15 * time.Second},
		AuthTimeout:    Duration{10 * time.Second},
		AutoSync:       true,
		SessionTTL:     Duration{30 * time.Minute},
		MaxSessions:    10,
	}
}

func ReadConfig(filename string) (*Config, error) {
	config := defaults()

	_, err := toml.DecodeFile(filename, config)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	err = config.validate()
	if err != nil {
		return nil, err
	}

	return config, nil
}

func ParseConfig(data string) (*Config, error) {
	config := defaults()

	_, err := toml.Decode(data, config)
	if err != nil {
		return nil, fmt.Errorf("could not parse config: %w", err)
	}

	err = config.validate()
	if err != nil {
		return nil, err
	}

	return config, nil
}

// Credentials builds the in-memory session credentials. The caller owns the result and is
// expected to wipe it on logout.
func (c *Config) Credentials() (*domain.Credentials, error) {
	security, err := domain.ParseSecurity(c.Security)
	if err != nil {
		return nil, err
	}

	creds := &domain.Credentials{
		Username:       c.User,
		Password:       c.Password,
		DisplayAddress: c.DisplayAddress,
		Host:           c.ImapHost,
		Port:           c.ImapPort,
		Security:       security,
		SmtpHost:       c.SmtpHost,
		SmtpPort:       c.SmtpPort,
	}

	if len(strings.TrimSpace(c.SmtpSecurity)) > 0 {
		creds.SmtpSecurity, err = domain.ParseSecurity(c.SmtpSecurity)
		if err != nil {
			return nil, err
		}
	}

	return creds, nil
}

func (c *Config) validate() error {
	if err := validateNonEmptyStringField(c.Database, "Database must not be empty, set to a filename for the sqlite database or a postgres connection string"); err != nil {
		return err
	}

	switch c.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("Driver %q is not supported, use sqlite3 or postgres", c.Driver)
	}

	if err := validateNonEmptyStringField(c.ImapHost, "ImapHost must not be empty, set to the hostname of the imap server"); err != nil {
		return err
	}

	if c.ImapPort < 1 || c.ImapPort > 65535 {
		return fmt.Errorf("ImapPort %d is out of range", c.ImapPort)
	}

	if _, err := domain.ParseSecurity(c.Security); err != nil {
		return fmt.Errorf("Security is invalid: %w", err)
	}

	if err := validateNonEmptyStringField(c.User, "User must not be empty, set to username on the imap server"); err != nil {
		return err
	}

	if err := validateNonEmptyStringField(c.Password, "Password must not be empty, set to password of User on the imap server"); err != nil {
		return err
	}

	if len(c.Folders) == 0 {
		return errors.New("Folders must contain at least one folder to synchronize")
	}

	if c.FastBatch < 1 {
		return errors.New("FastBatch must be positive")
	}

	if c.TargetLimit < c.FastBatch {
		return fmt.Errorf("TargetLimit (%d) must not be lower than FastBatch (%d)", c.TargetLimit, c.FastBatch)
	}

	if c.BatchSize < 1 {
		return errors.New("BatchSize must be positive")
	}

	if c.SyncInterval.Duration < time.Second {
		return errors.New("SyncInterval must be at least one second")
	}

	if c.EvictAfterDays < 1 {
		return errors.New("EvictAfterDays must be at least one day")
	}

	if c.MaxSessions < 1 {
		return errors.New("MaxSessions must be positive")
	}

	return nil
}

func validateNonEmptyStringField(field string, err string) error {
	if len(strings.TrimSpace(field)) == 0 {
		return errors.New(err)
	}

	return nil
}

// SPDX-License-Identifier: GPL-3.0-or-later
package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type Security string

const (
	SecurityTLS      = Security("TLS")
	SecuritySTARTTLS = Security("STARTTLS")
	SecurityNone     = Security("NONE")
)

func ParseSecurity(s string) (Security, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "TLS", "SSL":
		return SecurityTLS, nil
	case "STARTTLS":
		return SecuritySTARTTLS, nil
	case "NONE", "PLAIN":
		return SecurityNone, nil
	}
	return "", fmt.Errorf("unknown transport security %q", s)
}

const DefaultSmtpPort = 587

// Credentials are held in memory for the lifetime of one session. The password is never
// serialized and is zeroed by Wipe.
type Credentials struct {
	Username       string
	Password       string
	DisplayAddress string
	Host           string
	Port           int
	Security       Security

	SmtpHost     string
	SmtpPort     int
	SmtpSecurity Security
}

func (c *Credentials) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Account identifies the mailbox independent of the password, cache rows are keyed by it.
func (c *Credentials) Account() string {
	return strings.ToLower(fmt.Sprintf("%s@%s", strings.TrimSpace(c.Username), strings.TrimSpace(c.Host)))
}

func (c *Credentials) SmtpAddress() string {
	host, port := c.SmtpHost, c.SmtpPort
	if len(host) == 0 {
		host = c.Host
	}
	if port == 0 {
		port = DefaultSmtpPort
	}
	return fmt.Sprintf("%s:%d", host, port)
}

func (c *Credentials) SmtpServerName() string {
	if len(c.SmtpHost) == 0 {
		return c.Host
	}
	return c.SmtpHost
}

func (c *Credentials) EffectiveSmtpSecurity() Security {
	if len(c.SmtpSecurity) == 0 {
		return SecuritySTARTTLS
	}
	return c.SmtpSecurity
}

func (c *Credentials) From() EmailAddress {
	if len(c.DisplayAddress) > 0 {
		return EmailAddress{Address: c.DisplayAddress}
	}
	return EmailAddress{Address: c.Username}
}

func (c *Credentials) Validate() error {
	if c == nil {
		return errors.New("credentials must not be nil")
	}
	if len(strings.TrimSpace(c.Host)) == 0 {
		return errors.New("host must not be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if len(strings.TrimSpace(c.Username)) == 0 {
		return errors.New("username must not be empty")
	}
	if len(c.Password) == 0 {
		return errors.New("password must not be empty")
	}
	if c.SmtpPort < 0 || c.SmtpPort > 65535 {
		return fmt.Errorf("smtp port %d out of range", c.SmtpPort)
	}
	switch c.Security {
	case SecurityTLS, SecuritySTARTTLS, SecurityNone:
	default:
		return fmt.Errorf("unsupported transport security %q", c.Security)
	}
	return nil
}

// Wipe drops the secret, the credentials cannot be used to log in afterwards.
func (c *Credentials) Wipe() {
	if c == nil {
		return
	}
	c.Password = ""
}

func (c Credentials) String() string {
	return fmt.Sprintf("%s@%s:%d (%s)", c.Username, c.Host, c.Port, c.Security)
}

func (c Credentials) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Username       string   `json:"username"`
		DisplayAddress string   `json:"displayAddress"`
		Host           string   `json:"host"`
		Port           int      `json:"port"`
		Security       Security `json:"security"`
	}{c.Username, c.DisplayAddress, c.Host, c.Port, c.Security})
}

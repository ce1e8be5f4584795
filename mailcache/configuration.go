// SPDX-License-Identifier: GPL-3.0-or-later
package mailcache

import "fmt"

type ConfigFunc func(c *configuration) error

// AutoSync controls whether GetMessages starts a background sync of the folder.
func AutoSync(enabled bool) ConfigFunc {
	return func(c *configuration) error {
		c.AutoSync = enabled
		return nil
	}
}

// RollbackOnRemoteFailure reverts optimistic cache mutations when the server rejects them.
func RollbackOnRemoteFailure() ConfigFunc {
	return func(c *configuration) error {
		c.Rollback = true
		return nil
	}
}

// SentFolder is used for sent messages that do not name a folder themselves.
func SentFolder(folder string) ConfigFunc {
	return func(c *configuration) error {
		if len(folder) == 0 {
			return fmt.Errorf("SentFolder cannot be empty")
		}
		c.SentFolder = folder
		return nil
	}
}

type configuration struct {
	AutoSync   bool
	Rollback   bool
	SentFolder string
}

func defaultConfiguration() *configuration {
	return &configuration{AutoSync: true}
}

// SPDX-License-Identifier: GPL-3.0-or-later
package mailsync

import (
	"fmt"
	"time"
)

const (
	DefaultFastBatch   = 20
	DefaultTargetLimit = 200
	DefaultBatchSize   = 50
	DefaultInterval    = 2 * time.Minute
	DefaultEvictAfter  = 7
)

type ConfigFunc func(c *configuration) error

// FastBatch is the size of the first fetch of a folder without cursor.
func FastBatch(n int) ConfigFunc {
	return func(c *configuration) error {
		if n < 1 {
			return fmt.Errorf("FastBatch must be at least 1, got %d", n)
		}
		c.FastBatch = n
		return nil
	}
}

// TargetLimit is the number of messages per folder the background fill loads up to.
func TargetLimit(n int) ConfigFunc {
	return func(c *configuration) error {
		if n < 1 {
			return fmt.Errorf("TargetLimit must be at least 1, got %d", n)
		}
		c.TargetLimit = n
		return nil
	}
}

// BatchSize is the increment of the background fill and of LoadMore.
func BatchSize(n int) ConfigFunc {
	return func(c *configuration) error {
		if n < 1 {
			return fmt.Errorf("BatchSize must be at least 1, got %d", n)
		}
		c.BatchSize = n
		return nil
	}
}

func Interval(d time.Duration) ConfigFunc {
	return func(c *configuration) error {
		if d < time.Second {
			return fmt.Errorf("Interval must be at least one second, got %s", d)
		}
		c.Interval = d
		return nil
	}
}

// EvictAfter sets the age in days after which cached messages are evicted by the scheduled loop.
// Zero disables eviction.
func EvictAfter(days int) ConfigFunc {
	return func(c *configuration) error {
		if days < 0 {
			return fmt.Errorf("EvictAfter must not be negative, got %d", days)
		}
		c.EvictAfterDays = days
		return nil
	}
}

type configuration struct {
	FastBatch   int
	TargetLimit int
	BatchSize   int

	Interval       time.Duration
	EvictAfterDays int
}

func defaultConfiguration() *configuration {
	return &configuration{
		FastBatch:      DefaultFastBatch,
		TargetLimit:    DefaultTargetLimit,
		BatchSize:      DefaultBatchSize,
		Interval:       DefaultInterval,
		EvictAfterDays: DefaultEvictAfter,
	}
}

// SPDX-License-Identifier: GPL-3.0-or-later
package mailsync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequest_Merge(t *testing.T) {
	tests := []struct {
		name     string
		a        request
		b        request
		expected request
	}{
		{"higher target wins", request{target: 50}, request{target: 100}, request{target: 100}},
		{"lower target ignored", request{target: 100}, request{target: 50}, request{target: 100}},
		{"full is sticky", request{target: 50, full: true}, request{target: 10}, request{target: 50, full: true}},
		{"full from other", request{target: 50}, request{target: 10, full: true}, request{target: 50, full: true}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.a.merge(tc.b))
		})
	}
}

func TestGuards_SingleOwner(t *testing.T) {
	g := newGuards()

	assert.True(t, g.acquire("INBOX", request{target: 20}, true))
	assert.True(t, g.busy("INBOX"))
	assert.False(t, g.busy("Archive"))

	assert.False(t, g.acquire("INBOX", request{target: 70}, true))
	assert.False(t, g.acquire("INBOX", request{target: 120}, true))
	assert.True(t, g.hasPending("INBOX"))

	// both requests collapse into a single follow-up
	req, ok := g.next("INBOX")
	assert.True(t, ok)
	assert.Equal(t, request{target: 120}, req)
	assert.True(t, g.busy("INBOX"))

	_, ok = g.next("INBOX")
	assert.False(t, ok)
	assert.False(t, g.busy("INBOX"))

	assert.True(t, g.acquire("INBOX", request{target: 20}, true))
}

func TestGuards_NoCollapse(t *testing.T) {
	g := newGuards()

	assert.True(t, g.acquire("INBOX", request{target: 20}, false))
	assert.False(t, g.acquire("INBOX", request{target: 20}, false))
	assert.False(t, g.hasPending("INBOX"))

	_, ok := g.next("INBOX")
	assert.False(t, ok)
	assert.False(t, g.busy("INBOX"))
}

func TestGuards_NextWithoutOwner(t *testing.T) {
	g := newGuards()
	_, ok := g.next("INBOX")
	assert.False(t, ok)
}

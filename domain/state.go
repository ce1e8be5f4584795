// SPDX-License-Identifier: GPL-3.0-or-later
package domain

import "fmt"

type SessionState int

const (
	Disconnected = SessionState(iota)
	Connecting
	Ready
	Error
)

func (s SessionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Ready:
		return "ready"
	case Error:
		return "error"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var sessionTransitions = map[SessionState][]SessionState{
	Disconnected: {Connecting},
	Connecting:   {Ready, Error, Disconnected},
	Ready:        {Disconnected, Error},
	Error:        {Connecting, Disconnected},
}

func CanTransition(from, to SessionState) bool {
	for _, s := range sessionTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

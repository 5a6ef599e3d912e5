// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package websocket

import (
	"errors"
	"fmt"
)

// ConnState is the lifecycle state of a subscriber connection.
type ConnState int

const (
	StateUnconnected ConnState = iota
	StateConnected
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateUnconnected:
		return "unconnected"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("ConnState(%d)", int(s))
	}
}

// ConnEvent is a transport event that drives the connection state.
type ConnEvent int

const (
	EventConnect ConnEvent = iota
	EventMessage
	EventClose
	EventError
)

func (e ConnEvent) String() string {
	switch e {
	case EventConnect:
		return "connect"
	case EventMessage:
		return "message"
	case EventClose:
		return "close"
	case EventError:
		return "error"
	default:
		return fmt.Sprintf("ConnEvent(%d)", int(e))
	}
}

// Action is the registry side effect of a transition.
type Action int

const (
	ActionNone Action = iota
	ActionSubscribe
	ActionUnsubscribe
)

// ErrInvalidTransition is returned for an event the current state does not accept.
var ErrInvalidTransition = errors.New("websocket: invalid connection state transition")

type transition struct {
	next   ConnState
	action Action
}

// transitions is the complete connection lifecycle. Closed is absorbing: late
// events from the second pump after a close are accepted and do nothing.
var transitions = map[ConnState]map[ConnEvent]transition{
	StateUnconnected: {
		EventConnect: {StateConnected, ActionSubscribe},
		EventClose:   {StateClosed, ActionNone},
		EventError:   {StateClosed, ActionNone},
	},
	StateConnected: {
		EventMessage: {StateConnected, ActionNone},
		EventClose:   {StateClosed, ActionUnsubscribe},
		EventError:   {StateClosed, ActionUnsubscribe},
	},
	StateClosed: {
		EventMessage: {StateClosed, ActionNone},
		EventClose:   {StateClosed, ActionNone},
		EventError:   {StateClosed, ActionNone},
	},
}

// Transition looks up the next state and action for event in state.
// On an invalid pair the state is returned unchanged with ErrInvalidTransition.
func Transition(state ConnState, event ConnEvent) (ConnState, Action, error) {
	if t, ok := transitions[state][event]; ok {
		return t.next, t.action, nil
	}
	return state, ActionNone, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, event, state)
}

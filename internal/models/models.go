package models

import (
	"fmt"
	"strings"
)

// Ref is the {id, name} projection other records embed to point at a user or item.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Role selects which side of a booking a listing is made for.
type Role int

const (
	RoleBooker Role = iota
	RoleOwner
)

func (r Role) String() string {
	if r == RoleOwner {
		return "owner"
	}
	return "booker"
}

// StateFilter restricts a booking listing by time relation or status.
type StateFilter string

const (
	StateAll      StateFilter = "ALL"
	StateCurrent  StateFilter = "CURRENT"
	StatePast     StateFilter = "PAST"
	StateFuture   StateFilter = "FUTURE"
	StateWaiting  StateFilter = "WAITING"
	StateRejected StateFilter = "REJECTED"
)

var stateFilters = []StateFilter{StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected}

// StateFilters lists every filter in declaration order.
func StateFilters() []StateFilter {
	return append([]StateFilter(nil), stateFilters...)
}

// ParseStateFilter accepts a filter name case-insensitively; empty means ALL.
func ParseStateFilter(raw string) (StateFilter, error) {
	name := strings.ToUpper(strings.TrimSpace(raw))
	if name == "" {
		return StateAll, nil
	}
	for _, f := range stateFilters {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown state: %s", raw)
}

// Package reminders defines the read-only reminder records reported by
// remindctl and the closed set of lists the server exposes.
package reminders

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ListName is one of the reminder lists the tools may touch.
type ListName string

const (
	ListActive    ListName = "Active"
	ListDelegated ListName = "Delegated"
	ListBacklog   ListName = "Backlog"
)

// ErrUnknownList is returned by ParseListName for names outside the closed set.
var ErrUnknownList = errors.New("unknown reminder list")

// Lists returns the accepted list names in their advertised order.
func Lists() []ListName {
	return []ListName{ListActive, ListDelegated, ListBacklog}
}

// ListStrings returns Lists as plain strings, for schema enums.
func ListStrings() []string {
	lists := Lists()
	out := make([]string, len(lists))
	for i, l := range lists {
		out[i] = string(l)
	}
	return out
}

// ParseListName validates s against the closed set. Matching is case-sensitive.
func ParseListName(s string) (ListName, error) {
	for _, l := range Lists() {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownList, s)
}

// Reminder is one reminder as reported by remindctl. It is decoded for a
// single response and never retained.
type Reminder struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Notes        string `json:"notes,omitempty"`
	DueDate      string `json:"dueDate,omitempty"`
	IsCompleted  bool   `json:"isCompleted"`
	Priority     int    `json:"priority"`
	List         string `json:"list"`
	CreationDate string `json:"creationDate,omitempty"`
}

// DecodeList parses the JSON array printed by `remindctl list <name> --json`.
// Blank output decodes to an empty slice.
func DecodeList(data []byte) ([]Reminder, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []Reminder{}, nil
	}

	var items []Reminder
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode reminders: %w", err)
	}
	if items == nil {
		items = []Reminder{}
	}
	return items, nil
}

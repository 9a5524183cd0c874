package domain

import (
	"fmt"
	"strings"
)

// RegistrarID identifies an EPP client (registrar).
// EPP client identifiers are 3-16 characters per RFC 5730.
type RegistrarID string

// ParseRegistrarID validates and returns a RegistrarID.
func ParseRegistrarID(s string) (RegistrarID, error) {
	s = strings.TrimSpace(s)
	if len(s) < 3 || len(s) > 16 {
		return "", fmt.Errorf("registrar id must be 3-16 characters, got %q", s)
	}
	return RegistrarID(s), nil
}

// String returns the string representation of the registrar ID.
func (r RegistrarID) String() string {
	return string(r)
}

// IsNil reports whether the registrar ID is empty.
func (r RegistrarID) IsNil() bool {
	return r == ""
}

// HistoryEntryID identifies a single history entry (one mutating command)
// against a registry resource. RepoID names the resource; ID is the
// per-resource history sequence.
type HistoryEntryID struct {
	RepoID string `json:"repo_id"`
	ID     int64  `json:"id"`
}

// NewHistoryEntryID constructs a history entry ID.
func NewHistoryEntryID(repoID string, id int64) HistoryEntryID {
	return HistoryEntryID{RepoID: repoID, ID: id}
}

// String renders the history entry ID as "repoID/id".
func (h HistoryEntryID) String() string {
	return fmt.Sprintf("%s/%d", h.RepoID, h.ID)
}

// IsNil reports whether the history entry ID is the zero value.
func (h HistoryEntryID) IsNil() bool {
	return h == HistoryEntryID{}
}

package domain

import "fmt"

// CommandKind is the kind of billable domain command a token may be
// restricted to. It mirrors the EPP command set that carries fees.
type CommandKind string

// Supported command kinds.
const (
	CommandCreate   CommandKind = "CREATE"
	CommandRenew    CommandKind = "RENEW"
	CommandTransfer CommandKind = "TRANSFER"
	CommandRestore  CommandKind = "RESTORE"
	CommandUpdate   CommandKind = "UPDATE"
)

var knownCommands = map[CommandKind]bool{
	CommandCreate:   true,
	CommandRenew:    true,
	CommandTransfer: true,
	CommandRestore:  true,
	CommandUpdate:   true,
}

// ParseCommandKind validates and returns a CommandKind.
func ParseCommandKind(s string) (CommandKind, error) {
	k := CommandKind(s)
	if !knownCommands[k] {
		return "", fmt.Errorf("unknown command kind: %s", s)
	}
	return k, nil
}

// String returns the string representation of the command kind.
func (k CommandKind) String() string {
	return string(k)
}

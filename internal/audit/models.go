// Package audit records the token decisions made for domain commands. Events
// are emitted from the command flows and fanned out to a sink; the command
// itself never blocks on audit delivery.
package audit

import (
	"time"

	"domreg/pkg/domain"
)

// Outcome classifies how a command's token resolution ended.
type Outcome string

const (
	OutcomeApplied        Outcome = "TOKEN_APPLIED"
	OutcomeRedeemed       Outcome = "TOKEN_REDEEMED"
	OutcomeRejected       Outcome = "TOKEN_REJECTED"
	OutcomeNoToken        Outcome = "NO_TOKEN"
	OutcomeBulkRemoved    Outcome = "BULK_PRICING_REMOVED"
	OutcomeCommandFailed  Outcome = "COMMAND_FAILED"
)

// Event is one audit record for a domain command.
type Event struct {
	Timestamp   time.Time          `json:"timestamp"`
	RequestID   string             `json:"request_id,omitempty"`
	RegistrarID domain.RegistrarID `json:"registrar_id"`
	Command     domain.CommandKind `json:"command"`
	Domain      domain.DomainName  `json:"domain"`
	TokenKey    string             `json:"token_key,omitempty"`
	Outcome     Outcome            `json:"outcome"`
	Detail      string             `json:"detail,omitempty"`
}

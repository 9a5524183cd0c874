package domains

import (
	"fmt"
	"time"

	"domreg/pkg/domain"
)

// Domain is a registered domain name.
//
// CurrentBulkToken references the bulk pricing token applied to this domain,
// if any. While it is set, explicit renew/transfer requires the bulk-pricing
// removal token. AutorenewRecurrenceID points at the active billing
// recurrence governing automatic renewal pricing; superseded recurrences are
// kept for history and never edited in place.
type Domain struct {
	RepoID                string
	Name                  domain.DomainName
	TLD                   string
	RegistrarID           domain.RegistrarID
	CurrentBulkToken      *string
	AutorenewRecurrenceID int64
	ExpirationTime        time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Validate checks the domain invariants.
func (d Domain) Validate() error {
	if d.RepoID == "" {
		return fmt.Errorf("domain repo id cannot be empty")
	}
	if d.Name.IsNil() {
		return fmt.Errorf("domain name cannot be empty")
	}
	if d.TLD == "" || d.Name.ParentTLD() != d.TLD {
		return fmt.Errorf("domain %s does not belong to tld %q", d.Name, d.TLD)
	}
	if d.RegistrarID.IsNil() {
		return fmt.Errorf("domain %s has no sponsoring registrar", d.Name)
	}
	if d.CurrentBulkToken != nil && *d.CurrentBulkToken == "" {
		return fmt.Errorf("domain %s has an empty bulk token reference", d.Name)
	}
	return nil
}

// HasBulkToken reports whether bulk pricing is currently applied.
func (d Domain) HasBulkToken() bool {
	return d.CurrentBulkToken != nil
}

// Clone returns a deep copy safe for independent mutation.
func (d Domain) Clone() Domain {
	out := d
	if d.CurrentBulkToken != nil {
		token := *d.CurrentBulkToken
		out.CurrentBulkToken = &token
	}
	return out
}

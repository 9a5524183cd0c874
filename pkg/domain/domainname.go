package domain

import (
	"fmt"
	"strings"
)

// DomainName is a fully qualified domain name such as "foo.example",
// canonicalized to lowercase at parse time. The zero value is invalid.
type DomainName string

// ParseDomainName validates and canonicalizes a domain name.
// The name must have at least one label under a TLD; labels follow
// LDH (letters, digits, hyphen) rules with no leading or trailing hyphen.
func ParseDomainName(s string) (DomainName, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", fmt.Errorf("domain name is empty")
	}
	if len(s) > 253 {
		return "", fmt.Errorf("domain name %q exceeds 253 characters", s)
	}
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return "", fmt.Errorf("domain name %q must be of the form label.tld", s)
	}
	for _, label := range parts {
		if !validLabel(label) {
			return "", fmt.Errorf("domain name %q has invalid label %q", s, label)
		}
	}
	return DomainName(s), nil
}

func validLabel(label string) bool {
	if len(label) == 0 || len(label) > 63 {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-':
		default:
			return false
		}
	}
	return true
}

// Label returns the leftmost label, e.g. "foo" for "foo.example".
func (d DomainName) Label() string {
	label, _, _ := strings.Cut(string(d), ".")
	return label
}

// ParentTLD returns everything after the first label, e.g. "example" for
// "foo.example". Multi-part TLDs such as "co.example" are returned whole.
func (d DomainName) ParentTLD() string {
	_, tld, _ := strings.Cut(string(d), ".")
	return tld
}

// String returns the canonical string form.
func (d DomainName) String() string {
	return string(d)
}

// IsNil reports whether the domain name is empty.
func (d DomainName) IsNil() bool {
	return d == ""
}

//go:build go1.18

package domain

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// FuzzParseDomainName tests that parsing never panics on arbitrary input
// and always returns either a canonical name or an error.
//
// Justification: domain names cross the trust boundary from registrar
// input; the parser must handle arbitrary bytes safely.
func FuzzParseDomainName(f *testing.F) {
	f.Add("")
	f.Add("foo.example")
	f.Add("FOO.EXAMPLE")
	f.Add("foo..example")
	f.Add("-foo.example")
	f.Add(strings.Repeat("a", 64) + ".example")
	f.Add("'; DROP TABLE domains;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("foo.example\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		name, err := ParseDomainName(input)
		if err != nil {
			return
		}

		// Canonical names must round-trip unchanged.
		roundTrip, err2 := ParseDomainName(name.String())
		if err2 != nil {
			t.Errorf("canonical name failed round-trip: %v", err2)
		}
		if roundTrip != name {
			t.Error("round-trip changed domain name")
		}

		// Label + ParentTLD must reassemble the full name.
		if name.Label()+"."+name.ParentTLD() != name.String() {
			t.Error("Label/ParentTLD do not reassemble the name")
		}

		// Non-UTF8 input must be rejected.
		if !utf8.ValidString(input) {
			t.Error("non-UTF8 input was accepted")
		}
	})
}

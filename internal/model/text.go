package model

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Email is a validated, lower-cased, NFC-normalized address.
type Email string

const maxEmailLength = 254

// ParseEmail validates and normalizes an address.
func ParseEmail(s string) (Email, error) {
	s = strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
	if len(s) == 0 || len(s) > maxEmailLength {
		return "", fmt.Errorf("email must be 1..%d bytes", maxEmailLength)
	}
	at := strings.IndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return "", fmt.Errorf("email %q must have a local part and a domain", s)
	}
	if strings.IndexByte(s[at+1:], '.') < 0 {
		return "", fmt.Errorf("email %q has no domain dot", s)
	}
	if strings.Count(s, "@") != 1 {
		return "", fmt.Errorf("email %q must contain exactly one '@'", s)
	}
	return Email(s), nil
}

func (e Email) String() string { return string(e) }

// AsName renders the address as the internal name of an anonymous user.
func (e Email) AsName() (Name, error) {
	return As(string(e))
}

// Gist is a one-line summary or conclusion, at most 256 bytes after NFC
// normalization. Control characters are rejected; the text travels through
// the binary codec and event log verbatim.
type Gist string

const maxGistLength = 256

// ParseGist validates and normalizes a summary text.
func ParseGist(s string) (Gist, error) {
	s = norm.NFC.String(strings.TrimSpace(s))
	if len(s) == 0 {
		return "", fmt.Errorf("gist must not be empty")
	}
	if len(s) > maxGistLength {
		return "", fmt.Errorf("gist exceeds %d bytes", maxGistLength)
	}
	for _, r := range s {
		if r < 0x20 {
			return "", fmt.Errorf("gist contains control character %q", r)
		}
	}
	return Gist(s), nil
}

// MustGist is ParseGist for constants in tests. It panics on invalid input.
func MustGist(s string) Gist {
	g, err := ParseGist(s)
	if err != nil {
		panic(err)
	}
	return g
}

func (g Gist) String() string { return string(g) }

// Template is a site's page template blob. Normalized to NFC; newlines are
// allowed, other control characters are not.
type Template string

const maxTemplateLength = 8 * 1024

// ParseTemplate validates and normalizes a page template.
func ParseTemplate(s string) (Template, error) {
	s = norm.NFC.String(s)
	if len(s) > maxTemplateLength {
		return "", fmt.Errorf("template exceeds %d bytes", maxTemplateLength)
	}
	for _, r := range s {
		if r < 0x20 && r != '\n' && r != '\t' && r != '\r' {
			return "", fmt.Errorf("template contains control character %q", r)
		}
	}
	return Template(s), nil
}

func (t Template) String() string { return string(t) }

// Package siwe implements the canonical EIP-4361 (Sign-In With Ethereum)
// message format: building a structured challenge and mapping it to and from
// its line-oriented text form. The package is pure; callers own all I/O.
package siwe

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/intent-app/auth-service/core"
)

const headerSuffix = " wants you to sign in with your Ethereum account:"

// timestampLayout matches the millisecond-precision ISO 8601 form wallets
// produce. Parsing additionally accepts plain RFC 3339.
const timestampLayout = "2006-01-02T15:04:05.000Z"

var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// IsValidAddress reports whether s is a well-formed 20-byte hex address.
func IsValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// Format renders a challenge into its canonical signed text form. The line
// order is fixed by EIP-4361; both signer and verifier must produce the same
// bytes since the signature covers the text.
func Format(c *core.Challenge) string {
	var b strings.Builder

	b.WriteString(c.Domain)
	b.WriteString(headerSuffix)
	b.WriteByte('\n')
	b.WriteString(c.Address)
	b.WriteString("\n\n")
	b.WriteString(c.Statement)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "URI: %s\n", c.URI)
	fmt.Fprintf(&b, "Version: %s\n", c.Version)
	fmt.Fprintf(&b, "Chain ID: %d\n", c.ChainID)
	fmt.Fprintf(&b, "Nonce: %s\n", c.Nonce)
	fmt.Fprintf(&b, "Issued At: %s", c.IssuedAt.UTC().Format(timestampLayout))

	if c.ExpirationTime != nil {
		fmt.Fprintf(&b, "\nExpiration Time: %s", c.ExpirationTime.UTC().Format(timestampLayout))
	}

	if len(c.Resources) > 0 {
		b.WriteString("\nResources:")
		for _, r := range c.Resources {
			fmt.Fprintf(&b, "\n- %s", r)
		}
	}

	return b.String()
}

// Parse is the inverse of Format. It re-derives the structured fields from a
// client-supplied text so the server never has to trust a structured object.
// Structural mismatch yields a typed error, never a panic.
func Parse(raw string) (*core.Challenge, error) {
	lines := strings.Split(raw, "\n")
	if len(lines) < 6 {
		return nil, ErrMessageTooShort
	}

	header := lines[0]
	if !strings.HasSuffix(header, headerSuffix) {
		return nil, ErrInvalidHeader
	}
	domain := strings.TrimSpace(strings.TrimSuffix(header, headerSuffix))
	if domain == "" {
		return nil, ErrInvalidDomain
	}

	address := strings.TrimSpace(lines[1])
	if !addressPattern.MatchString(address) {
		return nil, ErrInvalidAddress
	}

	if lines[2] != "" {
		return nil, ErrThirdLineNotEmpty
	}

	msg := &core.Challenge{
		Domain:  domain,
		Address: address,
	}

	startIndex := 3
	if lines[3] != "" && len(lines) > 4 && lines[4] == "" {
		msg.Statement = lines[3]
		startIndex = 5
	}

	inResources := false
	for i := startIndex; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		if inResources {
			if after, ok := strings.CutPrefix(line, "- "); ok {
				msg.Resources = append(msg.Resources, strings.TrimSpace(after))
				continue
			}
			inResources = false
		}

		if line == "Resources:" {
			inResources = true
			continue
		}

		if line == "" {
			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			return nil, errUnparsableLine(i)
		}
		value = strings.TrimSpace(value)

		switch key {
		case "URI":
			if value == "" {
				return nil, ErrMissingURI
			}
			msg.URI = value

		case "Version":
			msg.Version = value

		case "Chain ID":
			chainID, err := strconv.ParseInt(value, 10, 64)
			if err != nil || chainID <= 0 {
				return nil, ErrInvalidChainID
			}
			msg.ChainID = chainID

		case "Nonce":
			msg.Nonce = value

		case "Issued At":
			ts, err := parseTimestamp(value)
			if err != nil {
				return nil, ErrInvalidIssuedAt
			}
			msg.IssuedAt = ts

		case "Expiration Time":
			ts, err := parseTimestamp(value)
			if err != nil {
				return nil, ErrInvalidExpirationTime
			}
			if msg.IssuedAt.After(ts) {
				return nil, ErrIssuedAfterExpiration
			}
			msg.ExpirationTime = &ts
		}
	}

	if msg.Version != "1" {
		return nil, errUnsupportedVersion(msg.Version)
	}
	if msg.IssuedAt.IsZero() {
		return nil, ErrMissingIssuedAt
	}
	if msg.URI == "" {
		return nil, ErrMissingURI
	}

	return msg, nil
}

func parseTimestamp(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		ts, err = time.Parse(time.RFC3339, value)
		if err != nil {
			return time.Time{}, err
		}
	}
	if ts.IsZero() {
		return time.Time{}, fmt.Errorf("zero timestamp")
	}
	return ts.UTC(), nil
}

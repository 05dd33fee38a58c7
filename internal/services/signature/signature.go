package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

type Result int

const (
	Match Result = iota
	Mismatch
)

func (r Result) String() string {
	if r == Match {
		return "match"
	}

	return "mismatch"
}

// Fields are the payment data keys covered by the gateway checksum.
var Fields = []string{"amount", "code", "desc", "orderCode"}

// CanonicalString renders fields as name=value pairs sorted by name and joined with '&'.
func CanonicalString(fields map[string]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}

	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+fields[name])
	}

	return strings.Join(pairs, "&")
}

// Sign returns the lowercase hex HMAC-SHA256 of the canonical rendering of fields.
func Sign(fields map[string]string, secretKey string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(CanonicalString(fields)))

	return hex.EncodeToString(mac.Sum(nil))
}

func Verify(fields map[string]string, providedSignature string, secretKey string) Result {
	expected := Sign(fields, secretKey)

	if hmac.Equal([]byte(expected), []byte(providedSignature)) {
		return Match
	}

	return Mismatch
}

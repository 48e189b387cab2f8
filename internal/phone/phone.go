// ABOUTME: Phone number validation, normalization, and country classification
// ABOUTME: Canonicalizes Mozambican and international numbers to one form

package phone

import (
	"errors"
	"log/slog"
	"regexp"
	"strings"
)

// ErrInvalidNumber is returned when a raw number cannot be normalized.
var ErrInvalidNumber = errors.New("invalid phone number")

// CountryCode is the Mozambican dialing code without the plus.
const CountryCode = "258"

// CountryTag classifies a canonical number by origin.
type CountryTag string

const (
	TagDomestic      CountryTag = "DOMESTIC"
	TagInternational CountryTag = "INTERNATIONAL"
)

var (
	// domesticRe matches the 9-digit national mobile form: 8 followed by
	// an operator digit 2-7 and seven more digits.
	domesticRe = regexp.MustCompile(`^8[2-7]\d{7}$`)
	// internationalRe matches a full +-prefixed E.164-like number.
	internationalRe = regexp.MustCompile(`^\+\d{10,15}$`)
	// stripRe removes everything that is not a digit or a plus.
	stripRe = regexp.MustCompile(`[^+\d]`)
)

// Normalizer validates raw numbers and rewrites them to canonical form.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	return &Normalizer{logger: logger.With("component", "phone")}
}

// strip removes separators, keeping only digits and a leading plus.
func strip(raw string) string {
	s := stripRe.ReplaceAllString(strings.TrimSpace(raw), "")
	// A plus is only meaningful at the front.
	if i := strings.IndexByte(s, '+'); i > 0 {
		s = strings.ReplaceAll(s, "+", "")
	}
	return s
}

// domesticCore extracts the 9-digit national part from the accepted domestic
// spellings: bare, 0-prefixed, 258-prefixed, and +258-prefixed. Returns ""
// when the input is not a domestic spelling.
func domesticCore(s string) string {
	switch {
	case strings.HasPrefix(s, "+"+CountryCode):
		s = s[len(CountryCode)+1:]
	case strings.HasPrefix(s, CountryCode) && len(s) == len(CountryCode)+9:
		s = s[len(CountryCode):]
	case strings.HasPrefix(s, "0") && len(s) == 10:
		s = s[1:]
	}
	if domesticRe.MatchString(s) {
		return s
	}
	return ""
}

// Validate reports whether raw can be normalized to a canonical number.
func (n *Normalizer) Validate(raw string) bool {
	s := strip(raw)
	if s == "" {
		n.logger.Debug("rejected number", "reason", "empty")
		return false
	}
	if domesticCore(s) != "" {
		return true
	}
	if internationalRe.MatchString(s) {
		return true
	}
	// Digits-only international spellings are accepted too.
	if !strings.HasPrefix(s, "+") && internationalRe.MatchString("+"+s) {
		return true
	}
	n.logger.Debug("rejected number", "reason", "unrecognized form", "stripped_len", len(s))
	return false
}

// Normalize rewrites raw to canonical form: +258 followed by the 9-digit
// national number for domestic spellings, or the +-prefixed digit run for
// international ones. Normalize is idempotent over its own output.
func (n *Normalizer) Normalize(raw string) (string, error) {
	s := strip(raw)
	if s == "" {
		return "", ErrInvalidNumber
	}
	if core := domesticCore(s); core != "" {
		return "+" + CountryCode + core, nil
	}
	if internationalRe.MatchString(s) {
		return s, nil
	}
	if !strings.HasPrefix(s, "+") && internationalRe.MatchString("+"+s) {
		return "+" + s, nil
	}
	return "", ErrInvalidNumber
}

// Classify tags a canonical number as domestic or international. It assumes
// its input came from Normalize.
func Classify(canonical string) CountryTag {
	if strings.HasPrefix(canonical, "+"+CountryCode) && domesticRe.MatchString(canonical[len(CountryCode)+1:]) {
		return TagDomestic
	}
	return TagInternational
}

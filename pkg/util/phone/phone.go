// Package phone validates user supplied phone numbers and normalizes them
// to E.164.
package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var ErrInvalid = errors.New("invalid phone number")

// Normalizer parses numbers without a country prefix against a default
// region (an ISO 3166 alpha-2 code such as "TN").
type Normalizer struct {
	region string
}

func NewNormalizer(region string) *Normalizer {
	if region == "" {
		region = "TN"
	}
	return &Normalizer{region: strings.ToUpper(region)}
}

func (n *Normalizer) Region() string { return n.region }

// Normalize returns the E.164 form of raw or ErrInvalid.
func (n *Normalizer) Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalid
	}
	num, err := phonenumbers.Parse(raw, n.region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalid
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

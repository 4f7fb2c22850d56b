package oauth

import (
	"time"

	"golang.org/x/oauth2"
)

// TokenRecord is the cached credential bundle produced by a completed flow.
//
// ExpiresAt is always computed at issuance from the provider-reported
// relative lifetime (expires_in); an absolute expiry from the provider is
// never trusted verbatim. When both are set, ExpiresAt > IssuedAt holds.
type TokenRecord struct {
	// AccessToken is the APS access token.
	AccessToken string `json:"access_token"`

	// RefreshToken is the refresh token, if the provider issued one.
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType is typically "Bearer".
	TokenType string `json:"token_type"`

	// Scope is the granted scope string.
	Scope string `json:"scope,omitempty"`

	// IssuedAt is when the token was obtained.
	IssuedAt time.Time `json:"issued_at"`

	// ExpiresAt is IssuedAt plus the provider-reported lifetime.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// RemainingValidity returns the signed duration until the record expires.
// Non-positive means expired. A record without an expiry reports zero
// remaining validity and is treated as expired rather than immortal.
func RemainingValidity(rec *TokenRecord, now time.Time) time.Duration {
	if rec == nil || rec.ExpiresAt.IsZero() {
		return 0
	}
	return rec.ExpiresAt.Sub(now)
}

// ValidityBand is the advisory classification of a record's remaining
// validity, for status displays.
type ValidityBand int

const (
	// BandExpired means remaining validity is non-positive.
	BandExpired ValidityBand = iota

	// BandExpiringSoon means the record expires within the hour.
	BandExpiringSoon

	// BandLongLived means more than an hour of validity remains.
	BandLongLived
)

// String returns a human-readable name for the band.
func (b ValidityBand) String() string {
	switch b {
	case BandExpired:
		return "expired"
	case BandExpiringSoon:
		return "expiring soon"
	case BandLongLived:
		return "long-lived"
	default:
		return "unknown"
	}
}

// BandFor classifies a remaining-validity duration: more than an hour is
// long-lived, anything positive under an hour is expiring soon, and
// non-positive is expired.
func BandFor(remaining time.Duration) ValidityBand {
	switch {
	case remaining <= 0:
		return BandExpired
	case remaining <= time.Hour:
		return BandExpiringSoon
	default:
		return BandLongLived
	}
}

// Valid reports whether the record still has positive remaining validity.
func (r *TokenRecord) Valid(now time.Time) bool {
	return RemainingValidity(r, now) > 0
}

// ToOAuth2Token converts the record to an oauth2.Token for use with
// libraries that speak the golang.org/x/oauth2 types.
func (r *TokenRecord) ToOAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		TokenType:    r.TokenType,
		Expiry:       r.ExpiresAt,
	}
}

package session

import (
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/marqueeapp/marquee-server/internal/id"
)

const (
	tokenIssuer   = "marquee-server"
	tokenAudience = "marquee-browser"
)

// Codec turns session IDs into PASETO v4.local tokens and back.
type Codec struct {
	key paseto.V4SymmetricKey
	ttl time.Duration
	now func() time.Time
}

// NewCodec creates a codec from a 32-byte key.
func NewCodec(key []byte, ttl time.Duration) (*Codec, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("session key must be exactly %d bytes, got %d", keyLength, len(key))
	}

	k, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &Codec{key: k, ttl: ttl, now: time.Now}, nil
}

// TTL is the lifetime of issued tokens.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue creates a token for sessionID that expires after the configured TTL.
func (c *Codec) Issue(sessionID string) (string, time.Time) {
	now := c.now()
	exp := now.Add(c.ttl)

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(sessionID)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(exp)

	return token.V4Encrypt(c.key, nil), exp
}

// Verify decrypts a token and returns the session ID it carries.
func (c *Codec) Verify(tokenString string) (string, error) {
	sid, _, err := c.VerifyWithExpiry(tokenString)
	return sid, err
}

// NeedsRefresh reports whether a token expiring at exp has used up half its lifetime.
func (c *Codec) NeedsRefresh(exp time.Time) bool {
	return exp.Sub(c.now()) < c.ttl/2
}

// VerifyWithExpiry is Verify that also returns the token's expiry.
func (c *Codec) VerifyWithExpiry(tokenString string) (string, time.Time, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.ValidAt(c.now()))

	token, err := parser.ParseV4Local(c.key, tokenString, nil)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("invalid session token: %w", err)
	}

	sessionID, err := token.GetSubject()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("session token has no subject: %w", err)
	}
	if !id.HasPrefix(sessionID, id.PrefixSession) {
		return "", time.Time{}, fmt.Errorf("session token subject %q is not a session id", sessionID)
	}

	exp, err := token.GetExpiration()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("session token has no expiry: %w", err)
	}
	return sessionID, exp, nil
}

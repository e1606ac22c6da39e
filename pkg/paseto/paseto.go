package pasetotoken

import (
	"time"

	paseto "aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

const claimSession = "sid"

type Config struct {
	Mode Mode

	Issuer   string
	Audience string

	// TTL is the token lifetime. It matches the session cookie lifetime.
	TTL time.Duration

	Implicit []byte
}

// codec seals and opens tokens for one PASETO purpose.
type codec struct {
	seal func(tok paseto.Token, implicit []byte) (string, error)
	open func(p paseto.Parser, raw string, implicit []byte) (*paseto.Token, error)
}

type Manager struct {
	cfg    Config
	codec  codec
	parser paseto.Parser
	now    func() time.Time
}

func New(cfg Config, keys Keys) (*Manager, error) {
	switch {
	case cfg.Mode != keys.Mode:
		return nil, ErrConfig{Msg: "cfg.Mode must match keys.Mode"}
	case cfg.Issuer == "":
		return nil, ErrConfig{Msg: "Issuer is required"}
	case cfg.Audience == "":
		return nil, ErrConfig{Msg: "Audience is required"}
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}

	c, err := codecFor(keys)
	if err != nil {
		return nil, err
	}

	// The validity window is checked in Verify against m.now so tests can
	// move the clock.
	p := paseto.MakeParser(nil)
	p.AddRule(paseto.IssuedBy(cfg.Issuer), paseto.ForAudience(cfg.Audience))

	return &Manager{cfg: cfg, codec: c, parser: p, now: time.Now}, nil
}

func codecFor(keys Keys) (codec, error) {
	switch keys.Mode {
	case ModeLocal:
		if keys.Symmetric == nil {
			return codec{}, ErrConfig{Msg: "missing symmetric key"}
		}
		k := *keys.Symmetric
		return codec{
			seal: func(tok paseto.Token, implicit []byte) (string, error) {
				return tok.V4Encrypt(k, implicit), nil
			},
			open: func(p paseto.Parser, raw string, implicit []byte) (*paseto.Token, error) {
				return p.ParseV4Local(k, raw, implicit)
			},
		}, nil

	case ModePublic:
		if keys.Public == nil {
			return codec{}, ErrConfig{Msg: "missing public key"}
		}
		pk, sk := *keys.Public, keys.Secret
		return codec{
			seal: func(tok paseto.Token, implicit []byte) (string, error) {
				if sk == nil {
					return "", ErrConfig{Msg: "missing secret key"}
				}
				return tok.V4Sign(*sk, implicit), nil
			},
			open: func(p paseto.Parser, raw string, implicit []byte) (*paseto.Token, error) {
				return p.ParseV4Public(pk, raw, implicit)
			},
		}, nil
	}
	return codec{}, ErrConfig{Msg: "unknown mode"}
}

func (m *Manager) TTL() time.Duration { return m.cfg.TTL }

// Issue mints a token for userID bound to sessionID.
func (m *Manager) Issue(userID, sessionID uuid.UUID) (string, *Claims, error) {
	now := m.now()
	claims := &Claims{
		UserID:    userID,
		SessionID: sessionID,
		Issuer:    m.cfg.Issuer,
		Audience:  m.cfg.Audience,
		IssuedAt:  now,
		NotBefore: now,
		ExpiresAt: now.Add(m.cfg.TTL),
		TokenID:   uuid.NewString(),
	}

	raw, err := m.codec.seal(claims.token(), m.cfg.Implicit)
	if err != nil {
		return "", nil, err
	}
	return raw, claims, nil
}

// Verify checks signature or encryption, issuer, audience and validity
// window. Every failure is an ErrInvalidToken except configuration errors.
func (m *Manager) Verify(raw string) (*Claims, error) {
	tok, err := m.codec.open(m.parser, raw, m.cfg.Implicit)
	if err != nil {
		return nil, ErrInvalidToken{Err: err}
	}

	claims, err := claimsFrom(tok)
	if err != nil {
		return nil, ErrInvalidToken{Err: err}
	}
	claims.Issuer, claims.Audience = m.cfg.Issuer, m.cfg.Audience

	switch now := m.now(); {
	case now.After(claims.ExpiresAt):
		return nil, ErrInvalidToken{Err: ErrExpired}
	case now.Before(claims.NotBefore):
		return nil, ErrInvalidToken{Err: ErrNotYetValid}
	}
	return claims, nil
}

func (c *Claims) token() paseto.Token {
	tok := paseto.NewToken()
	tok.SetIssuer(c.Issuer)
	tok.SetAudience(c.Audience)
	tok.SetJti(c.TokenID)
	tok.SetIssuedAt(c.IssuedAt)
	tok.SetNotBefore(c.NotBefore)
	tok.SetExpiration(c.ExpiresAt)
	tok.SetSubject(c.UserID.String())
	tok.SetString(claimSession, c.SessionID.String())
	return tok
}

func claimsFrom(tok *paseto.Token) (*Claims, error) {
	var (
		c   Claims
		err error
	)
	if c.TokenID, err = tok.GetJti(); err != nil {
		return nil, err
	}
	if c.IssuedAt, err = tok.GetIssuedAt(); err != nil {
		return nil, err
	}
	if c.NotBefore, err = tok.GetNotBefore(); err != nil {
		return nil, err
	}
	if c.ExpiresAt, err = tok.GetExpiration(); err != nil {
		return nil, err
	}
	if c.UserID, err = uuidClaim(tok.GetSubject); err != nil {
		return nil, err
	}
	if c.SessionID, err = uuidClaim(func() (string, error) { return tok.GetString(claimSession) }); err != nil {
		return nil, err
	}
	return &c, nil
}

func uuidClaim(get func() (string, error)) (uuid.UUID, error) {
	s, err := get()
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(s)
}

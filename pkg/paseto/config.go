package pasetotoken

import (
	"time"

	"github.com/imedbrahmi/hospital_backend/config"
)

// NewPasetoManager creates a new PASETO manager from config. The token
// lives exactly as long as the session cookie.
func NewPasetoManager(cfg *config.Config) (*Manager, error) {
	p := cfg.Authentication.Paseto

	keys, err := LoadKeys(KeyStrings{
		Mode:         Mode(p.Mode),
		SymmetricHex: p.LocalKeyHex,
		SecretHex:    p.SecretKeyHex,
		PublicHex:    p.PublicKeyHex,
	})
	if err != nil {
		return nil, err
	}

	return New(Config{
		Mode:     Mode(p.Mode),
		Issuer:   p.Issuer,
		Audience: p.Audience,
		TTL:      time.Duration(cfg.Authentication.CookieExpireDays) * 24 * time.Hour,
	}, keys)
}

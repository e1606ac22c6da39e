package password

import "github.com/imedbrahmi/hospital_backend/config"

// Config holds the Argon2id parameters and the password policy.
type Config struct {
	MemoryKiB     uint32
	Iterations    uint32
	Parallelism   uint8
	SaltLength    uint32
	KeyLength     uint32
	LowMemoryMode bool
	MinLength     int
}

func (c Config) params() Params {
	memory := c.MemoryKiB
	if c.LowMemoryMode && memory > 32*1024 {
		memory = 32 * 1024
	}
	return Params{
		Memory:      memory,
		Iterations:  c.Iterations,
		Parallelism: c.Parallelism,
		SaltLength:  c.SaltLength,
		KeyLength:   c.KeyLength,
	}
}

// DefaultConfig follows the OWASP Argon2id recommendation.
func DefaultConfig() Config {
	return Config{
		MemoryKiB:   64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
		MinLength:   8,
	}
}

// FromCentralConfig fills zero values from DefaultConfig.
func FromCentralConfig(c config.PasswordConfig) Config {
	d := DefaultConfig()
	if c.MemoryKiB != 0 {
		d.MemoryKiB = c.MemoryKiB
	}
	if c.Iterations != 0 {
		d.Iterations = c.Iterations
	}
	if c.Parallelism != 0 {
		d.Parallelism = c.Parallelism
	}
	if c.SaltLength != 0 {
		d.SaltLength = c.SaltLength
	}
	if c.KeyLength != 0 {
		d.KeyLength = c.KeyLength
	}
	if c.MinLength != 0 {
		d.MinLength = c.MinLength
	}
	d.LowMemoryMode = c.LowMemoryMode
	return d
}

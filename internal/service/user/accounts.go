package user

import (
	"errors"
	"fmt"
	"strings"

	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/internal/service/apperr"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
	"github.com/imedbrahmi/hospital_backend/pkg/crypto"
	"github.com/imedbrahmi/hospital_backend/pkg/util/password"
	"github.com/imedbrahmi/hospital_backend/pkg/util/phone"
)

// Profile is the personal data every account carries.
type Profile struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	CIN       string
	DOB       string
	Gender    string
	Password  string
}

func (p *Profile) trim() {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Phone = strings.TrimSpace(p.Phone)
	p.CIN = strings.TrimSpace(p.CIN)
	p.DOB = strings.TrimSpace(p.DOB)
	p.Gender = strings.TrimSpace(p.Gender)
}

func (p *Profile) complete() bool {
	for _, v := range []string{p.FirstName, p.LastName, p.Email, p.Phone, p.CIN, p.DOB, p.Gender, p.Password} {
		if v == "" {
			return false
		}
	}
	return true
}

var Genders = []string{"Male", "Female"}

// Accounts turns profiles into user rows: it validates the fields,
// normalizes the phone, seals the CIN and hashes the password.
type Accounts struct {
	hasher *password.Hasher
	phones *phone.Normalizer
	cipher *crypto.FieldCipher
}

func NewAccounts(hasher *password.Hasher, phones *phone.Normalizer, cipher *crypto.FieldCipher) *Accounts {
	return &Accounts{hasher: hasher, phones: phones, cipher: cipher}
}

func (a *Accounts) Hasher() *password.Hasher { return a.hasher }

// NormalizePhone returns the E.164 form of raw in the default region.
func (a *Accounts) NormalizePhone(raw string) (string, error) {
	return a.phones.Normalize(raw)
}

// Complete reports whether every profile field, password included, is set.
func (p Profile) Complete() bool {
	p.trim()
	return p.complete()
}

// Empty reports whether no profile field is set.
func (p Profile) Empty() bool {
	return p == Profile{}
}

// validate checks p. On creation every field is mandatory; on update the
// optional identity fields are only checked when present.
func (a *Accounts) validate(p *Profile, creating bool) error {
	var f apperr.Fields
	f.Length("First Name", p.FirstName, 3, 0)
	f.Length("Last Name", p.LastName, 3, 0)
	f.Email("Email", p.Email)
	if creating || p.CIN != "" {
		f.CIN(p.CIN)
	}
	if creating || p.DOB != "" {
		f.Date("Date of birth", p.DOB)
	}
	if creating || p.Gender != "" {
		f.OneOf("Gender", p.Gender, Genders...)
	}
	if err := f.Err(); err != nil {
		return err
	}
	if creating {
		if err := a.hasher.Validate(p.Password); err != nil {
			return ErrPasswordTooShort
		}
	}
	return nil
}

// Build validates p and returns an unsaved active user of role.
func (a *Accounts) Build(p Profile, role authorize.Role) (*repo.User, error) {
	p.trim()
	if !p.complete() {
		return nil, ErrMissingFields
	}
	if err := a.validate(&p, true); err != nil {
		return nil, err
	}

	phoneE164, err := a.phones.Normalize(p.Phone)
	if err != nil {
		return nil, ErrInvalidPhone
	}
	sealed, err := a.cipher.Seal(p.CIN)
	if err != nil {
		return nil, fmt.Errorf("seal cin: %w", err)
	}
	hash, err := a.hasher.Hash(p.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return &repo.User{
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Email:        p.Email,
		Phone:        phoneE164,
		CIN:          p.CIN,
		CINEncrypted: sealed,
		DOB:          p.DOB,
		Gender:       p.Gender,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}, nil
}

// Patch applies the non-empty fields of p to u and re-validates the result.
// The password is never changed here.
func (a *Accounts) Patch(u *repo.User, p Profile) error {
	p.trim()
	if err := a.Reveal(u); err != nil {
		return err
	}

	next := Profile{
		FirstName: pick(p.FirstName, u.FirstName),
		LastName:  pick(p.LastName, u.LastName),
		Email:     pick(p.Email, u.Email),
		Phone:     pick(p.Phone, u.Phone),
		CIN:       pick(p.CIN, u.CIN),
		DOB:       pick(p.DOB, u.DOB),
		Gender:    pick(p.Gender, u.Gender),
	}
	if err := a.validate(&next, false); err != nil {
		return err
	}

	if p.Phone != "" {
		e164, err := a.phones.Normalize(p.Phone)
		if err != nil {
			return ErrInvalidPhone
		}
		next.Phone = e164
	}
	if p.CIN != "" {
		sealed, err := a.cipher.Seal(next.CIN)
		if err != nil {
			return fmt.Errorf("seal cin: %w", err)
		}
		u.CINEncrypted = sealed
	}

	u.FirstName, u.LastName, u.Email = next.FirstName, next.LastName, next.Email
	u.Phone, u.CIN, u.DOB, u.Gender = next.Phone, next.CIN, next.DOB, next.Gender
	return nil
}

// Reveal decrypts the stored CIN into u.CIN.
func (a *Accounts) Reveal(u *repo.User) error {
	if u == nil || u.CINEncrypted == "" || u.CIN != "" {
		return nil
	}
	plain, err := a.cipher.Open(u.CINEncrypted)
	if err != nil {
		return fmt.Errorf("open cin: %w", err)
	}
	u.CIN = plain
	return nil
}

// RevealAll decrypts every row; rows that fail keep an empty CIN.
func (a *Accounts) RevealAll(users []*repo.User) error {
	var errs []error
	for _, u := range users {
		if err := a.Reveal(u); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func pick(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

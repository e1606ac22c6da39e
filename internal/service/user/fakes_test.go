package user

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
	"github.com/imedbrahmi/hospital_backend/pkg/crypto"
	"github.com/imedbrahmi/hospital_backend/pkg/util/password"
	"github.com/imedbrahmi/hospital_backend/pkg/util/phone"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newAccounts(t *testing.T) *Accounts {
	t.Helper()
	cipher, err := crypto.NewFieldCipher(testKey)
	require.NoError(t, err)
	hasher := password.NewHasher(password.Config{
		MemoryKiB: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32, MinLength: 8,
	})
	return NewAccounts(hasher, phone.NewNormalizer("TN"), cipher)
}

func profile(email string) Profile {
	return Profile{
		FirstName: "Amira",
		LastName:  "Ben Salah",
		Email:     email,
		Phone:     "20 123 456",
		CIN:       "01234567",
		DOB:       "1990-05-01",
		Gender:    "Female",
		Password:  "s3cret-pass",
	}
}

type fakeUsers struct {
	rows map[uuid.UUID]*repo.User
	// patient id -> appointments as (clinic, doctor)
	seen map[uuid.UUID][][2]uuid.UUID
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{rows: map[uuid.UUID]*repo.User{}, seen: map[uuid.UUID][][2]uuid.UUID{}}
}

func (f *fakeUsers) Create(_ context.Context, u *repo.User) error {
	for _, r := range f.rows {
		if strings.EqualFold(r.Email, u.Email) {
			return &repo.DuplicateError{Constraint: "users_email_key"}
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	c := *u
	c.CIN = ""
	f.rows[u.ID] = &c
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*repo.User, error) {
	if u, ok := f.rows[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*repo.User, error) {
	for _, u := range f.rows {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUsers) List(_ context.Context, flt repo.UserFilter) ([]*repo.User, error) {
	out := []*repo.User{}
	for _, u := range f.rows {
		if flt.Role != "" && u.Role != flt.Role {
			continue
		}
		if flt.ClinicID != nil && (u.ClinicID == nil || *u.ClinicID != *flt.ClinicID) {
			continue
		}
		if flt.SeenInClinic != nil || flt.SeenByDoctor != nil {
			ok, _ := f.PatientSeen(context.Background(), u.ID, flt.SeenInClinic, flt.SeenByDoctor)
			if !ok {
				continue
			}
		}
		c := *u
		out = append(out, &c)
	}
	return out, nil
}

func (f *fakeUsers) ListDoctorsByClinicName(context.Context, string) ([]*repo.User, error) {
	return []*repo.User{}, nil
}

func (f *fakeUsers) ListUnassignedAdmins(context.Context) ([]*repo.User, error) {
	out := []*repo.User{}
	for _, u := range f.rows {
		if u.Role == authorize.RoleAdmin && u.ClinicID == nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) Update(_ context.Context, u *repo.User) error {
	if _, ok := f.rows[u.ID]; !ok {
		return repo.ErrNotFound
	}
	c := *u
	c.CIN = ""
	f.rows[u.ID] = &c
	return nil
}

func (f *fakeUsers) SoftDelete(_ context.Context, id uuid.UUID, _ time.Time) error {
	if _, ok := f.rows[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeUsers) PatientSeen(_ context.Context, patientID uuid.UUID, clinicID, doctorID *uuid.UUID) (bool, error) {
	for _, s := range f.seen[patientID] {
		if (clinicID == nil || s[0] == *clinicID) && (doctorID == nil || s[1] == *doctorID) {
			return true, nil
		}
	}
	return false, nil
}

type fakeClinics map[uuid.UUID]*repo.Clinic

func (f fakeClinics) GetByID(_ context.Context, id uuid.UUID) (*repo.Clinic, error) {
	if c, ok := f[id]; ok {
		return c, nil
	}
	return nil, repo.ErrNotFound
}

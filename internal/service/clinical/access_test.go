package clinical

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
)

type users map[uuid.UUID]*repo.User

func (u users) GetByID(_ context.Context, id uuid.UUID) (*repo.User, error) {
	if v, ok := u[id]; ok {
		return v, nil
	}
	return nil, repo.ErrNotFound
}

func TestByPatient(t *testing.T) {
	clinic := uuid.New()
	patient := uuid.New()

	t.Run("patient sees only own", func(t *testing.T) {
		_, err := ByPatient(&authorize.Identity{UserID: uuid.New(), Role: authorize.RolePatient}, patient)
		assert.ErrorIs(t, err, authorize.ErrNotOwner)

		f, err := ByPatient(&authorize.Identity{UserID: patient, Role: authorize.RolePatient}, patient)
		require.NoError(t, err)
		assert.Equal(t, patient, *f.PatientID)
	})

	t.Run("doctor is narrowed to own documents", func(t *testing.T) {
		doc := uuid.New()
		f, err := ByPatient(&authorize.Identity{UserID: doc, Role: authorize.RoleDoctor, ClinicID: &clinic}, patient)
		require.NoError(t, err)
		assert.Equal(t, doc, *f.DoctorID)
		assert.Nil(t, f.ClinicID)
	})

	t.Run("clinic staff are narrowed to the clinic", func(t *testing.T) {
		f, err := ByPatient(&authorize.Identity{UserID: uuid.New(), Role: authorize.RoleReceptionist, ClinicID: &clinic}, patient)
		require.NoError(t, err)
		assert.Equal(t, clinic, *f.ClinicID)
	})
}

func TestByDoctor(t *testing.T) {
	ctx := context.Background()
	x, y := uuid.New(), uuid.New()
	doc := &repo.User{ID: uuid.New(), Role: authorize.RoleDoctor, ClinicID: &x}
	store := users{doc.ID: doc}

	_, err := ByDoctor(ctx, &authorize.Identity{UserID: uuid.New(), Role: authorize.RolePatient}, store, doc.ID)
	assert.ErrorIs(t, err, authorize.ErrForbidden)

	_, err = ByDoctor(ctx, &authorize.Identity{UserID: uuid.New(), Role: authorize.RoleAdmin, ClinicID: &y}, store, doc.ID)
	assert.ErrorIs(t, err, authorize.ErrClinicMismatch)

	_, err = ByDoctor(ctx, &authorize.Identity{UserID: uuid.New(), Role: authorize.RoleDoctor, ClinicID: &x}, store, doc.ID)
	assert.ErrorIs(t, err, authorize.ErrNotOwner)

	f, err := ByDoctor(ctx, &authorize.Identity{UserID: uuid.New(), Role: authorize.RoleAdmin, ClinicID: &x}, store, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, *f.DoctorID)
	assert.Equal(t, x, *f.ClinicID)

	_, err = ByDoctor(ctx, &authorize.Identity{UserID: uuid.New(), Role: authorize.RoleSuperAdmin}, store, uuid.New())
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestAuthor(t *testing.T) {
	clinic := uuid.New()
	got, err := Author(&authorize.Identity{UserID: uuid.New(), Role: authorize.RoleDoctor, ClinicID: &clinic})
	require.NoError(t, err)
	assert.Equal(t, clinic, got)

	_, err = Author(&authorize.Identity{UserID: uuid.New(), Role: authorize.RoleDoctor})
	assert.ErrorIs(t, err, ErrDoctorNoClinic)
	_, err = Author(&authorize.Identity{UserID: uuid.New(), Role: authorize.RoleAdmin, ClinicID: &clinic})
	assert.ErrorIs(t, err, ErrOnlyDoctors)
}

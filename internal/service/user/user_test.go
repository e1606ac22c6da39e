package user

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/internal/service/apperr"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
	"github.com/imedbrahmi/hospital_backend/pkg/s3"
)

type userFixture struct {
	svc     *UserService
	users   *fakeUsers
	objects *s3.Memory
	clinic  uuid.UUID
	other   uuid.UUID
	super   *authorize.Identity
	admin   *authorize.Identity
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	clinic, other, closed := uuid.New(), uuid.New(), uuid.New()
	clinics := fakeClinics{
		clinic: {ID: clinic, Name: "Clinique Les Jasmins", IsActive: true},
		other:  {ID: other, Name: "Clinique El Amen", IsActive: true},
		closed: {ID: closed, Name: "Closed", IsActive: false},
	}
	f := &userFixture{
		users:   newFakeUsers(),
		objects: s3.NewMemory(),
		clinic:  clinic,
		other:   other,
		super:   &authorize.Identity{UserID: uuid.New(), Role: authorize.RoleSuperAdmin},
		admin:   &authorize.Identity{UserID: uuid.New(), Role: authorize.RoleAdmin, ClinicID: &clinic},
	}
	f.svc = New(f.users, clinics, f.objects, newAccounts(t), nil)
	return f
}

func TestAddAdminNormalizesAndSeals(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	u, err := f.svc.AddAdmin(ctx, f.super, StaffRequest{Profile: profile("Admin@Example.com")})
	require.NoError(t, err)
	assert.Equal(t, authorize.RoleAdmin, u.Role)
	assert.Equal(t, "admin@example.com", u.Email)
	assert.Equal(t, "+21620123456", u.Phone)
	assert.Nil(t, u.ClinicID)

	stored := f.users.rows[u.ID]
	assert.NotEmpty(t, stored.CINEncrypted)
	assert.NotContains(t, stored.CINEncrypted, "01234567")
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$argon2id$"))

	_, err = f.svc.AddAdmin(ctx, f.super, StaffRequest{Profile: profile("admin@example.com")})
	require.Error(t, err)
	assert.Equal(t, "Admin already exist with this email", err.Error())

	_, err = f.svc.AddAdmin(ctx, f.admin, StaffRequest{Profile: profile("x@example.com")})
	assert.ErrorIs(t, err, authorize.ErrForbidden)
}

func TestAddAccountValidation(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	missing := profile("a@example.com")
	missing.CIN = ""
	_, err := f.svc.AddAdmin(ctx, f.super, StaffRequest{Profile: missing})
	assert.ErrorIs(t, err, ErrMissingFields)

	badPhone := profile("b@example.com")
	badPhone.Phone = "123"
	_, err = f.svc.AddAdmin(ctx, f.super, StaffRequest{Profile: badPhone})
	assert.ErrorIs(t, err, ErrInvalidPhone)

	badCIN := profile("c@example.com")
	badCIN.CIN = "1234"
	_, err = f.svc.AddAdmin(ctx, f.super, StaffRequest{Profile: badCIN})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	short := profile("d@example.com")
	short.Password = "short"
	_, err = f.svc.AddAdmin(ctx, f.super, StaffRequest{Profile: short})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestAddReceptionistClinicRules(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	r, err := f.svc.AddReceptionist(ctx, f.admin, StaffRequest{Profile: profile("r1@example.com"), ClinicID: &f.other})
	require.NoError(t, err)
	require.NotNil(t, r.ClinicID)
	assert.Equal(t, f.clinic, *r.ClinicID, "admins always create in their own clinic")

	lonely := &authorize.Identity{UserID: uuid.New(), Role: authorize.RoleAdmin}
	_, err = f.svc.AddReceptionist(ctx, lonely, StaffRequest{Profile: profile("r2@example.com")})
	assert.ErrorIs(t, err, ErrNoClinic)

	_, err = f.svc.AddReceptionist(ctx, f.super, StaffRequest{Profile: profile("r3@example.com")})
	assert.ErrorIs(t, err, ErrClinicRequired)

	r, err = f.svc.AddReceptionist(ctx, f.super, StaffRequest{Profile: profile("r4@example.com"), ClinicID: &f.other})
	require.NoError(t, err)
	assert.Equal(t, f.other, *r.ClinicID)
}

func TestAddDoctorUploadsAvatar(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	d, err := f.svc.AddDoctor(ctx, f.admin, DoctorRequest{
		Profile:    profile("doc@example.com"),
		Department: "Cardiology",
		Avatar:     &Upload{Filename: "me.PNG", ContentType: "image/png", Size: 3, Body: bytes.NewReader([]byte("png"))},
	})
	require.NoError(t, err)
	assert.Equal(t, "Cardiology", d.DoctorDepartment)
	assert.True(t, strings.HasPrefix(d.AvatarKey, "avatars/"+f.clinic.String()+"/"))
	assert.True(t, strings.HasSuffix(d.AvatarKey, ".png"))
	assert.Equal(t, "memory://"+d.AvatarKey, d.AvatarURL)

	_, ct, ok := f.objects.Object(d.AvatarKey)
	require.True(t, ok)
	assert.Equal(t, "image/png", ct)

	_, err = f.svc.AddDoctor(ctx, f.admin, DoctorRequest{
		Profile:    profile("doc2@example.com"),
		Department: "Cardiology",
		Avatar:     &Upload{Filename: "cv.pdf", ContentType: "application/pdf", Body: bytes.NewReader(nil)},
	})
	assert.ErrorIs(t, err, ErrInvalidImage)
	assert.Equal(t, 1, f.objects.Len())

	_, err = f.svc.AddDoctor(ctx, f.admin, DoctorRequest{Profile: profile("doc3@example.com")})
	assert.ErrorIs(t, err, ErrDepartment)
}

func TestUpdateDoctorTenantScope(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	d, err := f.svc.AddDoctor(ctx, f.admin, DoctorRequest{Profile: profile("doc@example.com"), Department: "Cardiology"})
	require.NoError(t, err)

	foreign := &authorize.Identity{UserID: uuid.New(), Role: authorize.RoleAdmin, ClinicID: &f.other}
	_, err = f.svc.UpdateDoctor(ctx, foreign, d.ID, UpdateDoctorRequest{Department: "Neurology"})
	assert.ErrorIs(t, err, authorize.ErrClinicMismatch)
	assert.ErrorIs(t, f.svc.DeleteDoctor(ctx, foreign, d.ID), authorize.ErrClinicMismatch)

	updated, err := f.svc.UpdateDoctor(ctx, f.admin, d.ID, UpdateDoctorRequest{
		Profile:    Profile{FirstName: "Karim"},
		Department: "Neurology",
	})
	require.NoError(t, err)
	assert.Equal(t, "Karim", updated.FirstName)
	assert.Equal(t, "Neurology", updated.DoctorDepartment)
	assert.Equal(t, "01234567", updated.CIN)

	_, err = f.svc.AddAdmin(ctx, f.super, StaffRequest{Profile: profile("taken@example.com")})
	require.NoError(t, err)
	_, err = f.svc.UpdateDoctor(ctx, f.admin, d.ID, UpdateDoctorRequest{Profile: Profile{Email: "taken@example.com"}})
	assert.ErrorIs(t, err, ErrEmailTaken)

	require.NoError(t, f.svc.DeleteDoctor(ctx, f.admin, d.ID))
	_, err = f.svc.UpdateDoctor(ctx, f.admin, d.ID, UpdateDoctorRequest{})
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestListDoctorsFiltersByClinic(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddDoctor(ctx, f.admin, DoctorRequest{Profile: profile("d1@example.com"), Department: "Cardiology"})
	require.NoError(t, err)
	_, err = f.svc.AddDoctor(ctx, f.super, DoctorRequest{Profile: profile("d2@example.com"), Department: "Cardiology", ClinicID: &f.other})
	require.NoError(t, err)

	mine, err := f.svc.ListDoctors(ctx, f.admin, DoctorQuery{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "d1@example.com", mine[0].Email)

	all, err := f.svc.ListDoctors(ctx, f.super, DoctorQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPatientCareRelation(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	b, err := f.svc.accounts.Build(profile("p@example.com"), authorize.RolePatient)
	require.NoError(t, err)
	require.NoError(t, f.users.Create(ctx, b))

	_, err = f.svc.GetPatient(ctx, f.admin, b.ID)
	assert.ErrorIs(t, err, ErrNotYourPatient)

	doctor := uuid.New()
	f.users.seen[b.ID] = [][2]uuid.UUID{{f.clinic, doctor}}

	got, err := f.svc.GetPatient(ctx, f.admin, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "01234567", got.CIN)

	doc := &authorize.Identity{UserID: doctor, Role: authorize.RoleDoctor, ClinicID: &f.clinic}
	list, err := f.svc.ListPatients(ctx, doc, "")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, f.svc.DeletePatient(ctx, doc, b.ID), authorize.ErrForbidden)

	foreign := &authorize.Identity{UserID: uuid.New(), Role: authorize.RoleReceptionist, ClinicID: &f.other}
	list, err = f.svc.ListPatients(ctx, foreign, "")
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, f.svc.DeletePatient(ctx, f.admin, b.ID))
	_, err = f.svc.GetPatient(ctx, f.super, b.ID)
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestGetPatientRejectsStaffAccount(t *testing.T) {
	f := newUserFixture(t)
	a, err := f.svc.AddAdmin(context.Background(), f.super, StaffRequest{Profile: profile("a@example.com")})
	require.NoError(t, err)

	_, err = f.svc.GetPatient(context.Background(), f.super, a.ID)
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestUnassignedAdmins(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	_, err := f.svc.AddAdmin(ctx, f.super, StaffRequest{Profile: profile("free@example.com")})
	require.NoError(t, err)
	_, err = f.svc.AddAdmin(ctx, f.super, StaffRequest{Profile: profile("busy@example.com"), ClinicID: &f.clinic})
	require.NoError(t, err)

	admins, err := f.svc.UnassignedAdmins(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "free@example.com", admins[0].Email)
	assert.IsType(t, []*repo.User{}, admins)
}

package session

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
)

func staff(role authorize.Role) *authorize.Identity {
	return &authorize.Identity{UserID: uuid.New(), Role: role, Channel: authorize.ChannelStaff}
}

func patient() *authorize.Identity {
	return &authorize.Identity{UserID: uuid.New(), Role: authorize.RolePatient, Channel: authorize.ChannelPatient}
}

func TestSelect(t *testing.T) {
	admin := staff(authorize.RoleAdmin)
	pat := patient()

	tests := []struct {
		name    string
		cat     Category
		c       Candidates
		want    *authorize.Identity
		wantMsg string
	}{
		{"no cookies on staff route", Staff, Candidates{}, nil, MsgNotAuthenticated},
		{"no cookies on patient route", Patient, Candidates{}, nil, MsgNotAuthenticated},
		{"no cookies on mixed route", Mixed, Candidates{}, nil, MsgNotAuthenticated},
		{"staff route with only a patient identity", Staff, Candidates{Patient: pat, AnyCookie: true}, nil, MsgStaffRequired},
		{"patient route with only a staff identity", Patient, Candidates{Staff: admin, AnyCookie: true}, nil, MsgPatientRequired},
		{"staff route with both", Staff, Candidates{Staff: admin, Patient: pat, AnyCookie: true}, admin, ""},
		{"patient route with both", Patient, Candidates{Staff: admin, Patient: pat, AnyCookie: true}, pat, ""},
		{"mixed route prefers patient for different users", Mixed, Candidates{Staff: admin, Patient: pat, AnyCookie: true}, pat, ""},
		{"mixed route with only staff", Mixed, Candidates{Staff: admin, AnyCookie: true}, admin, ""},
		{"mixed route with only patient", Mixed, Candidates{Patient: pat, AnyCookie: true}, pat, ""},
		{"mixed route with rejected cookies", Mixed, Candidates{AnyCookie: true}, nil, MsgInvalidToken},
		{"staff route with rejected cookie", Staff, Candidates{AnyCookie: true}, nil, MsgStaffRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(tt.cat, tt.c)
			if tt.wantMsg == "" {
				require.NoError(t, err)
				assert.Same(t, tt.want, got)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnauthenticated))
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Nil(t, got)
		})
	}
}

func TestSelectMixedSameUserPicksByRole(t *testing.T) {
	id := uuid.New()

	asStaff := &authorize.Identity{UserID: id, Role: authorize.RoleDoctor, Channel: authorize.ChannelStaff}
	asPatient := &authorize.Identity{UserID: id, Role: authorize.RoleDoctor, Channel: authorize.ChannelPatient}
	got, err := Select(Mixed, Candidates{Staff: asStaff, Patient: asPatient, AnyCookie: true})
	require.NoError(t, err)
	assert.Same(t, asStaff, got)

	asStaff.Role, asPatient.Role = authorize.RolePatient, authorize.RolePatient
	got, err = Select(Mixed, Candidates{Staff: asStaff, Patient: asPatient, AnyCookie: true})
	require.NoError(t, err)
	assert.Same(t, asPatient, got)
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "staff", Staff.String())
	assert.Equal(t, "patient", Patient.String())
	assert.Equal(t, "mixed", Mixed.String())
	assert.Equal(t, "unknown", Category(0).String())
}

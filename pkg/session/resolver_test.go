package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
	pasetotoken "github.com/imedbrahmi/hospital_backend/pkg/paseto"
)

type fixture struct {
	mgr      *pasetotoken.Manager
	store    *Store
	users    map[uuid.UUID]*authorize.Identity
	resolver *Resolver
	mr       *miniredis.Miniredis
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	mgr, err := pasetotoken.New(pasetotoken.Config{
		Mode: pasetotoken.ModeLocal, Issuer: "hospital", Audience: "hospital", TTL: time.Hour,
	}, pasetotoken.NewLocalKeys())
	require.NoError(t, err)

	f := &fixture{mgr: mgr, store: NewStore(rdb), users: map[uuid.UUID]*authorize.Identity{}, mr: mr}
	f.resolver = NewResolver(mgr, f.store, func(_ context.Context, id uuid.UUID) (*authorize.Identity, error) {
		return f.users[id], nil
	}, nil)
	return f
}

func (f *fixture) login(t *testing.T, role authorize.Role) (string, *authorize.Identity, uuid.UUID) {
	t.Helper()
	id := &authorize.Identity{UserID: uuid.New(), Role: role}
	f.users[id.UserID] = id

	sid := uuid.New()
	require.NoError(t, f.store.Create(context.Background(), sid, id.UserID, time.Hour))
	tok, _, err := f.mgr.Issue(id.UserID, sid)
	require.NoError(t, err)
	return tok, id, sid
}

func TestResolveStaffRoute(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staffTok, admin, _ := f.login(t, authorize.RoleAdmin)
	patientTok, _, _ := f.login(t, authorize.RolePatient)

	got, err := f.resolver.Resolve(ctx, Staff, staffTok, patientTok)
	require.NoError(t, err)
	assert.Equal(t, admin.UserID, got.UserID)
	assert.Equal(t, authorize.ChannelStaff, got.Channel)

	_, err = f.resolver.Resolve(ctx, Staff, "", patientTok)
	assert.EqualError(t, err, MsgStaffRequired)
}

func TestResolvePatientRouteRejectsStaffToken(t *testing.T) {
	f := newFixture(t)
	staffTok, _, _ := f.login(t, authorize.RoleDoctor)

	_, err := f.resolver.Resolve(context.Background(), Patient, "", staffTok)
	assert.EqualError(t, err, MsgPatientRequired, "a staff user's token in the patient cookie is discarded")

	_, err = f.resolver.Resolve(context.Background(), Patient, staffTok, "")
	assert.EqualError(t, err, MsgPatientRequired)
}

func TestResolveRevokedSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tok, _, sid := f.login(t, authorize.RolePatient)

	require.NoError(t, f.store.Revoke(ctx, sid))
	_, err := f.resolver.Resolve(ctx, Mixed, "", tok)
	assert.EqualError(t, err, MsgInvalidToken)
}

func TestResolveDeletedUser(t *testing.T) {
	f := newFixture(t)
	tok, id, _ := f.login(t, authorize.RolePatient)
	delete(f.users, id.UserID)

	_, err := f.resolver.Resolve(context.Background(), Patient, "", tok)
	assert.EqualError(t, err, MsgPatientRequired)
}

func TestResolveGarbageCookie(t *testing.T) {
	f := newFixture(t)
	_, err := f.resolver.Resolve(context.Background(), Staff, "not-a-token", "")
	assert.EqualError(t, err, MsgStaffRequired)
}

func TestResolveRedisDown(t *testing.T) {
	f := newFixture(t)
	tok, _, _ := f.login(t, authorize.RoleAdmin)
	f.mr.Close()

	_, err := f.resolver.Resolve(context.Background(), Staff, tok, "")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnauthenticated), "infrastructure failures are not 401s")
}

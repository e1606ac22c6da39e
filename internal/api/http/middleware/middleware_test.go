package middleware

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	casbin "github.com/casbin/casbin/v2"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
	pasetotoken "github.com/imedbrahmi/hospital_backend/pkg/paseto"
	"github.com/imedbrahmi/hospital_backend/pkg/session"
)

var testCookies = Cookies{Staff: "token", Patient: "patientToken"}

type harness struct {
	app   *fiber.App
	mgr   *pasetotoken.Manager
	store *session.Store
	users map[uuid.UUID]*authorize.Identity
}

func newAuthorization(t *testing.T) authorize.IAuthorization {
	t.Helper()
	policy := filepath.Join(t.TempDir(), "policy.csv")
	require.NoError(t, os.WriteFile(policy, []byte(""), 0o644))

	m, err := authorize.NewModel()
	require.NoError(t, err)
	e, err := casbin.NewDistributedEnforcer(m, fileadapter.NewAdapter(policy))
	require.NoError(t, err)
	e.EnableAutoSave(false)

	auth, err := authorize.NewAuthorization(e)
	require.NoError(t, err)
	require.NoError(t, authorize.SeedDefaultPolicies(context.Background(), auth))
	return auth
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	mgr, err := pasetotoken.New(pasetotoken.Config{
		Mode: pasetotoken.ModeLocal, Issuer: "hospital", Audience: "hospital", TTL: time.Hour,
	}, pasetotoken.NewLocalKeys())
	require.NoError(t, err)

	h := &harness{mgr: mgr, store: session.NewStore(rdb), users: map[uuid.UUID]*authorize.Identity{}}
	resolver := session.NewResolver(mgr, h.store, func(_ context.Context, id uuid.UUID) (*authorize.Identity, error) {
		return h.users[id], nil
	}, nil)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auth := newAuthorization(t)

	h.app = fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger)})
	h.app.Use(RequestID())

	whoami := func(c fiber.Ctx) error {
		id, _ := IdentityFromFiber(c)
		fromCtx, ok := authorize.IdentityFromContext(c.Context())
		if !ok || fromCtx.UserID != id.UserID {
			return fiber.ErrInternalServerError
		}
		return c.JSON(fiber.Map{"success": true, "role": id.Role, "channel": id.Channel})
	}

	h.app.Get("/staff", Session(resolver, testCookies, session.Staff), whoami)
	h.app.Get("/patient", Session(resolver, testCookies, session.Patient), whoami)
	h.app.Get("/mixed", Session(resolver, testCookies, session.Mixed), whoami)
	h.app.Post("/clinics",
		Session(resolver, testCookies, session.Mixed),
		RequirePermission(auth, authorize.ResourceClinic, authorize.ActionCreate),
		whoami)
	h.app.Get("/boom", func(fiber.Ctx) error { return io.ErrUnexpectedEOF })
	return h
}

func (h *harness) login(t *testing.T, role authorize.Role) string {
	t.Helper()
	id := &authorize.Identity{UserID: uuid.New(), Role: role}
	h.users[id.UserID] = id

	sid := uuid.New()
	require.NoError(t, h.store.Create(context.Background(), sid, id.UserID, time.Hour))
	tok, _, err := h.mgr.Issue(id.UserID, sid)
	require.NoError(t, err)
	return tok
}

func (h *harness) do(t *testing.T, method, path string, cookies map[string]string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for name, value := range cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	resp, err := h.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestSessionWithoutCookies(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/staff", "/patient", "/mixed"} {
		code, body := h.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, code, path)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, session.MsgNotAuthenticated, body["message"])
	}
}

func TestSessionCategories(t *testing.T) {
	h := newHarness(t)
	staffTok := h.login(t, authorize.RoleReceptionist)
	patientTok := h.login(t, authorize.RolePatient)

	code, body := h.do(t, http.MethodGet, "/staff", map[string]string{testCookies.Patient: patientTok})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, session.MsgStaffRequired, body["message"])

	code, body = h.do(t, http.MethodGet, "/patient", map[string]string{testCookies.Staff: staffTok})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, session.MsgPatientRequired, body["message"])

	both := map[string]string{testCookies.Staff: staffTok, testCookies.Patient: patientTok}
	code, body = h.do(t, http.MethodGet, "/staff", both)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, string(authorize.RoleReceptionist), body["role"])

	code, body = h.do(t, http.MethodGet, "/patient", both)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, string(authorize.RolePatient), body["role"])
}

func TestRequirePermission(t *testing.T) {
	h := newHarness(t)

	code, body := h.do(t, http.MethodPost, "/clinics", map[string]string{testCookies.Patient: h.login(t, authorize.RolePatient)})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Contains(t, body["message"], "Access denied. Required roles:")
	assert.Contains(t, body["message"], "Your role: Patient")

	code, _ = h.do(t, http.MethodPost, "/clinics", map[string]string{testCookies.Staff: h.login(t, authorize.RoleSuperAdmin)})
	assert.Equal(t, http.StatusOK, code)
}

func TestErrorHandlerHidesInternalErrors(t *testing.T) {
	h := newHarness(t)

	code, body := h.do(t, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, MsgInternal, body["message"])
}

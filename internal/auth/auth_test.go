package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftplan/internal/apperr"
	"shiftplan/internal/audit"
	"shiftplan/internal/models"
	"shiftplan/internal/store"
	"shiftplan/internal/store/jsonstore"
)

const testSecret = "test-secret-that-is-long-enough-123456"

func newTestService(t *testing.T) (*Service, *jsonstore.Store) {
	t.Helper()
	st, err := jsonstore.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return NewService(st, audit.NewRecorder(st, nil), nil, testSecret, time.Hour), st
}

func addUser(t *testing.T, st *jsonstore.Store, username, hash string, role models.Role) {
	t.Helper()
	require.NoError(t, st.CreateUser(context.Background(), &models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Name:         username,
		Email:        username + "@company.com",
		PrimaryShift: models.ShiftMorning,
		HourlyRate:   20,
	}))
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("emp123")
	require.NoError(t, err)

	ok, legacy := CheckPassword(hash, "emp123")
	assert.True(t, ok)
	assert.False(t, legacy)

	ok, _ = CheckPassword(hash, "wrong")
	assert.False(t, ok)

	ok, legacy = CheckPassword(LegacyHash("emp123"), "emp123")
	assert.True(t, ok)
	assert.True(t, legacy)

	ok, legacy = CheckPassword(LegacyHash("emp123"), "emp124")
	assert.False(t, ok)
	assert.True(t, legacy)
}

func TestTokenRoundTrip(t *testing.T) {
	user := &models.User{Username: "emp1", Role: models.RoleEmployee}
	token, err := GenerateToken(testSecret, time.Hour, user)
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "emp1", claims.Username)
	assert.Equal(t, models.RoleEmployee, claims.Role)

	_, err = ParseToken("another-secret-that-is-long-enough-1234", token)
	assert.Error(t, err)

	expired, err := GenerateToken(testSecret, -time.Minute, user)
	require.NoError(t, err)
	_, err = ParseToken(testSecret, expired)
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	hash, err := HashPassword("emp123")
	require.NoError(t, err)
	addUser(t, st, "emp1", hash, models.RoleEmployee)

	token, user, err := svc.Login(ctx, " emp1 ", "emp123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "emp1", user.Username)

	for _, tc := range []struct{ name, username, password string }{
		{"wrong password", "emp1", "nope"},
		{"unknown user", "ghost", "emp123"},
		{"empty", "", ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Login(ctx, tc.username, tc.password)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
			assert.Equal(t, "invalid username or password", err.Error())
		})
	}
}

func TestLoginUpgradesLegacyHash(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	addUser(t, st, "emp2", LegacyHash("emp123"), models.RoleEmployee)

	_, _, err := svc.Login(ctx, "emp2", "emp123")
	require.NoError(t, err)

	stored, err := st.GetUser(ctx, "emp2")
	require.NoError(t, err)
	ok, legacy := CheckPassword(stored.PasswordHash, "emp123")
	assert.True(t, ok)
	assert.False(t, legacy)
}

func TestChangePassword(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	hash, err := HashPassword("old-pass")
	require.NoError(t, err)
	addUser(t, st, "admin1", hash, models.RoleAdmin)

	err = svc.ChangePassword(ctx, "admin1", "wrong", "new-pass")
	assert.True(t, apperr.IsKind(err, apperr.KindInvalid))

	err = svc.ChangePassword(ctx, "admin1", "old-pass", "abc")
	assert.True(t, apperr.IsKind(err, apperr.KindInvalid))

	require.NoError(t, svc.ChangePassword(ctx, "admin1", "old-pass", "new-pass"))
	_, _, err = svc.Login(ctx, "admin1", "new-pass")
	require.NoError(t, err)

	logs, err := st.ListAuditLogs(ctx, store.AuditFilter{EntityID: "admin1"})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "password changed", logs[0].Description)

	err = svc.ChangePassword(ctx, "ghost", "x", "new-pass")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/staff", JWTMiddleware(testSecret), RequireRole(models.RoleAdmin, models.RoleHeadAdmin), func(c *fiber.Ctx) error {
		return c.SendString(CurrentUsername(c) + ":" + string(CurrentRole(c)))
	})

	adminToken, err := GenerateToken(testSecret, time.Hour, &models.User{Username: "admin1", Role: models.RoleAdmin})
	require.NoError(t, err)
	empToken, err := GenerateToken(testSecret, time.Hour, &models.User{Username: "emp1", Role: models.RoleEmployee})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", fiber.StatusUnauthorized},
		{"not bearer", "Basic abc", fiber.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", fiber.StatusUnauthorized},
		{"wrong role", "Bearer " + empToken, fiber.StatusForbidden},
		{"admin", "Bearer " + adminToken, fiber.StatusOK},
		{"lowercase scheme", "bearer " + adminToken, fiber.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/staff", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestReloadUser(t *testing.T) {
	_, st := newTestService(t)
	addUser(t, st, "admin1", "x", models.RoleAdmin)

	app := fiber.New()
	app.Get("/staff",
		JWTMiddleware(testSecret),
		ReloadUser(st),
		RequireRole(models.RoleAdmin),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	token, err := GenerateToken(testSecret, time.Hour, &models.User{Username: "admin1", Role: models.RoleAdmin})
	require.NoError(t, err)
	status := func() int {
		req := httptest.NewRequest(fiber.MethodGet, "/staff", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusOK, status())

	ctx := context.Background()
	u, err := st.GetUser(ctx, "admin1")
	require.NoError(t, err)
	u.Role = models.RoleEmployee
	require.NoError(t, st.UpdateUser(ctx, u))
	assert.Equal(t, fiber.StatusForbidden, status())

	require.NoError(t, st.DeleteUser(ctx, "admin1"))
	assert.Equal(t, fiber.StatusUnauthorized, status())
}

package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/apperr"
	"storefront/internal/config"
	"storefront/internal/envelope"
	"storefront/internal/logging"
	"storefront/internal/model"
	"storefront/internal/ratelimit"
)

// statusOnly mirrors the production error handler closely enough for gate tests.
func statusOnly(c *fiber.Ctx, err error) error {
	return c.Status(StatusOf(err)).SendString(err.Error())
}

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())

	app.Get("/test", func(c *fiber.Ctx) error {
		rid := c.Locals(RequestIDLocalKey)
		return c.SendString(rid.(string))
	})

	t.Run("should generate new request id if not present", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		ridHeader := resp.Header.Get(RequestIDHeader)
		assert.NotEmpty(t, ridHeader)

		// Check if it's readable in handler (from response body)
		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, ridHeader, buf.String())
	})

	t.Run("should preserve existing request id", func(t *testing.T) {
		existingID := "test-id-123"
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, existingID)

		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, existingID, resp.Header.Get(RequestIDHeader))

		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, existingID, buf.String())
	})

	t.Run("replaces unsafe forwarded ids", func(t *testing.T) {
		for _, bad := range []string{"a b", strings.Repeat("x", 129)} {
			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set(RequestIDHeader, bad)

			resp, _ := app.Test(req)
			got := resp.Header.Get(RequestIDHeader)
			assert.NotEqual(t, bad, got)
			_, err := uuid.Parse(got)
			assert.NoError(t, err, "replacement for %q", bad)
		}
	})
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	loc := time.UTC

	// Logger usually depends on RequestID for request_id field
	app.Use(RequestID())
	app.Use(LoggerWithWriter(&buf, loc))

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusAccepted)
	})

	req := httptest.NewRequest("GET", "/test", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	// Verify log output
	var logData map[string]any
	err := json.Unmarshal(buf.Bytes(), &logData)
	assert.NoError(t, err)

	assert.NotEmpty(t, logData["request_id"])
	assert.Equal(t, "GET", logData["method"])
	assert.Equal(t, "/test", logData["path"])
	assert.Equal(t, float64(fiber.StatusAccepted), logData["status"])
	assert.NotNil(t, logData["latency"])
	assert.NotEmpty(t, logData["ts"])
}

func TestResolveIdentity(t *testing.T) {
	app := fiber.New()
	app.Use(ResolveIdentity())
	app.Get("/me", func(c *fiber.Ctx) error {
		id := Caller(c)
		return c.JSON(fiber.Map{"user": id.UserID, "email": id.Email, "customer": id.CustomerID})
	})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set(UserIDHeader, " idp|admin-001 ")
	req.Header.Set(UserEmailHeader, "owner@example.com")
	req.Header.Set(CustomerIDHeader, "22222222-0000-4000-8000-000000000001")
	resp, err := app.Test(req)
	require.NoError(t, err)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "idp|admin-001", body["user"])
	assert.Equal(t, "owner@example.com", body["email"])
	assert.Equal(t, "22222222-0000-4000-8000-000000000001", body["customer"])

	// Anonymous callers resolve to the zero identity
	resp, err = app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	body = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body["user"])
}

type adminsByUser map[string]*model.AdminUser

func (m adminsByUser) GetByUserID(_ context.Context, userID string) envelope.Envelope[*model.AdminUser] {
	if userID == "idp|broken" {
		return envelope.Fail[*model.AdminUser](apperr.Backend(errors.New("connection refused")))
	}
	return envelope.OK(m[userID])
}

func TestRequireAdmin(t *testing.T) {
	admins := adminsByUser{
		"idp|owner":  {UserID: "idp|owner", Role: model.RoleSuperAdmin, IsActive: true},
		"idp|staff":  {UserID: "idp|staff", Role: model.RoleStaff, IsActive: true},
		"idp|former": {UserID: "idp|former", Role: model.RoleAdmin, IsActive: false},
	}

	app := fiber.New(fiber.Config{ErrorHandler: statusOnly})
	app.Use(ResolveIdentity())
	app.Get("/any", RequireAdmin(admins), func(c *fiber.Ctx) error {
		return c.SendString(Admin(c).UserID)
	})
	app.Get("/owners", RequireAdmin(admins, model.RoleSuperAdmin, model.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/narrowed", RequireAdmin(admins), RequireRole(model.RoleSuperAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/unguarded", RequireRole(model.RoleStaff), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	tests := []struct {
		name   string
		path   string
		user   string
		status int
	}{
		{"anonymous", "/any", "", fiber.StatusUnauthorized},
		{"unknown user", "/any", "idp|stranger", fiber.StatusForbidden},
		{"inactive admin", "/any", "idp|former", fiber.StatusForbidden},
		{"active staff", "/any", "idp|staff", fiber.StatusOK},
		{"staff on owner route", "/owners", "idp|staff", fiber.StatusForbidden},
		{"owner on owner route", "/owners", "idp|owner", fiber.StatusNoContent},
		{"lookup failure", "/any", "idp|broken", fiber.StatusServiceUnavailable},
		{"narrowed for staff", "/narrowed", "idp|staff", fiber.StatusForbidden},
		{"narrowed for owner", "/narrowed", "idp|owner", fiber.StatusNoContent},
		{"role without admin gate", "/unguarded", "idp|staff", fiber.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.user != "" {
				req.Header.Set(UserIDHeader, tt.user)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

type brokenLimiter struct{}

func (brokenLimiter) CanMakeRequest(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("redis: connection refused")
}

func TestRateLimit(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := ratelimit.NewMemory(config.RateLimitConfig{Requests: 2, WindowSec: 60},
		ratelimit.WithClock(func() time.Time { return now }))

	app := fiber.New(fiber.Config{ErrorHandler: statusOnly})
	app.Use(ResolveIdentity())
	app.Use(RateLimit(limiter))
	app.Get("/products", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	send := func(user string) (int, string) {
		req := httptest.NewRequest("GET", "/products", nil)
		if user != "" {
			req.Header.Set(UserIDHeader, user)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode, resp.Header.Get("X-RateLimit-Remaining")
	}

	status, remaining := send("idp|shopper")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "1", remaining)

	status, remaining = send("idp|shopper")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "0", remaining)

	status, _ = send("idp|shopper")
	assert.Equal(t, fiber.StatusTooManyRequests, status)

	// Anonymous callers are keyed by IP and have their own budget
	status, _ = send("")
	assert.Equal(t, fiber.StatusOK, status)
}

func TestRateLimitFailsOpen(t *testing.T) {
	var logs bytes.Buffer
	logging.SetOutput(&logs)
	t.Cleanup(func() { logging.SetOutput(os.Stdout) })

	app := fiber.New(fiber.Config{ErrorHandler: statusOnly})
	app.Use(RateLimit(brokenLimiter{}))
	app.Get("/products", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/products", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("X-RateLimit-Limit"))
	assert.Contains(t, logs.String(), "rate_limit_unavailable")
}

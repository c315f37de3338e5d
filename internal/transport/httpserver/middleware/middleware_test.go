package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"forum-tags-service/internal/domain"
	"forum-tags-service/internal/domain/domaintest"
)

func TestTokenFromHeader(t *testing.T) {
	tests := map[string]string{
		"":                   "",
		"Token abc":          "abc",
		"token abc":          "abc",
		"Bearer abc":         "abc",
		"Token abc;userId=1": "abc",
		"Basic dXNlcjpwYXNz": "",
		"Token":              "",
		"  Token   spaced  ": "spaced",
	}

	for header, want := range tests {
		assert.Equal(t, want, tokenFromHeader(header), header)
	}
}

func newActorApp(users domain.UserRepository) *fiber.App {
	app := fiber.New()
	app.Use(Actor(users, zap.NewNop()))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(ActorFrom(c).Scope())
	})

	return app
}

func get(t *testing.T, app *fiber.App, auth string) (int, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func TestActor(t *testing.T) {
	users := &domaintest.UserRepository{Users: map[string]*domain.Actor{
		"mod": {ID: 3, Username: "mod", Groups: []string{"moderators"}},
	}}
	app := newActorApp(users)

	status, body := get(t, app, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, domain.GroupGuests, body)

	status, body = get(t, app, "Token mod")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "members,moderators", body)

	status, _ = get(t, app, "Token stolen")
	assert.Equal(t, http.StatusUnauthorized, status)
}

type failingUsers struct{}

func (failingUsers) FindByToken(_ context.Context, _ string) (*domain.Actor, error) {
	return nil, errors.New("db down")
}

func TestActor_RepositoryError(t *testing.T) {
	status, _ := get(t, newActorApp(failingUsers{}), "Token x")

	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestActorFrom_DefaultsToGuest(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(ActorFrom(c).Scope())
	})

	_, body := get(t, app, "")
	assert.Equal(t, domain.GroupGuests, body)
}

func TestRecover(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	app := fiber.New()
	app.Use(Recover(zap.New(core)))
	app.Get("/", func(*fiber.Ctx) error {
		panic("boom")
	})

	status, _ := get(t, app, "")

	assert.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "panic recovered", entry.Message)
	assert.Equal(t, "boom", entry.ContextMap()["error"])
}

func TestLogger_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	app := fiber.New()
	app.Use(Logger(zap.New(core)))
	app.Get("/", func(c *fiber.Ctx) error {
		switch c.Query("s") {
		case "404":
			return fiber.ErrNotFound
		case "500":
			return errors.New("boom")
		}

		return c.SendStatus(http.StatusOK)
	})

	for _, target := range []string{"/", "/?s=404", "/?s=500"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, int64(http.StatusNotFound), entries[1].ContextMap()["status"])
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

package middleware

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoPlayerApp() *fiber.App {
	app := fiber.New()
	app.Use(EnsurePlayerID())
	app.Get("/who", func(c *fiber.Ctx) error {
		return c.SendString(PlayerID(c))
	})
	return app
}

func TestEnsurePlayerID(t *testing.T) {
	app := echoPlayerApp()

	tests := []struct {
		name   string
		target string
		header string
		status int
		body   string
	}{
		{"header", "/who", "alice", fiber.StatusOK, "alice"},
		{"query", "/who?playerId=bob", "", fiber.StatusOK, "bob"},
		{"header wins", "/who?playerId=bob", "alice", fiber.StatusOK, "alice"},
		{"missing", "/who", "", fiber.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("X-Player-ID", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.body != "" {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, tt.body, string(body))
			}
		})
	}
}

func TestPlayerIDOutlivesRequest(t *testing.T) {
	var kept []string
	app := fiber.New()
	app.Use(EnsurePlayerID())
	app.Get("/keep", func(c *fiber.Ctx) error {
		kept = append(kept, PlayerID(c))
		return c.SendStatus(fiber.StatusOK)
	})

	for _, id := range []string{"alice", "zedce", "bob"} {
		req := httptest.NewRequest(fiber.MethodGet, "/keep?playerId="+id, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	assert.Equal(t, []string{"alice", "zedce", "bob"}, kept)
}

func TestWebSocketUpgradeRequiresUpgrade(t *testing.T) {
	app := fiber.New()
	app.Use("/ws", EnsurePlayerID())
	app.Get("/ws/game/:gameId", WebSocketUpgrade(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/ws/game/abc?playerId=alice", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

package engineapi

import (
	"errors"
	"net"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampDepth(t *testing.T) {
	assert.Equal(t, DefaultDepth, ClampDepth(0))
	assert.Equal(t, MinDepth, ClampDepth(1))
	assert.Equal(t, MaxDepth, ClampDepth(40))
	assert.Equal(t, 9, ClampDepth(9))
}

func TestParseBestMove(t *testing.T) {
	best, ponder, err := parseBestMove("bestmove e2e4 ponder e7e5")
	require.NoError(t, err)
	assert.Equal(t, "e2e4", best.String())
	require.NotNil(t, ponder)
	assert.Equal(t, "e7e5", ponder.String())

	best, ponder, err = parseBestMove("bestmove a7a8q")
	require.NoError(t, err)
	assert.Equal(t, "a7a8", best.String())
	assert.Nil(t, ponder)

	_, ponder, err = parseBestMove("bestmove g1f3 ponder (none)")
	require.NoError(t, err)
	assert.Nil(t, ponder)

	for _, bad := range []string{"", "bestmove", "move e2e4", "bestmove e2e9"} {
		_, _, err := parseBestMove(bad)
		assert.True(t, errors.Is(err, ErrEngine), bad)
	}
}

func serve(t *testing.T, app *fiber.App) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		_ = app.Listener(ln)
	}()
	t.Cleanup(func() {
		_ = app.Shutdown()
	})
	return ln.Addr().String()
}

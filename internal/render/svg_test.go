package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benbeisheim/rulechess-backend/internal/model"
)

func draw(t *testing.T, fen string, opts Options) string {
	t.Helper()
	board, _, err := model.ParseFEN(fen)
	require.NoError(t, err)
	var buf bytes.Buffer
	Board(&buf, board, opts)
	return buf.String()
}

func TestBoardDrawsEveryPiece(t *testing.T) {
	out := draw(t, model.InitialFEN, Options{})

	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "<?xml"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "</svg>"))
	assert.Equal(t, 32, strings.Count(out, "data-square="))
	assert.Equal(t, 64+1, strings.Count(out, "<rect"))
	assert.Regexp(t, `data-square="e1"\s*>♔`, out)
	assert.Regexp(t, `data-square="d8"\s*>♛`, out)
}

func TestBoardOrientation(t *testing.T) {
	white := draw(t, model.InitialFEN, Options{Orientation: model.WhiteBottom})
	assert.Less(t, strings.Index(white, `data-square="a8"`), strings.Index(white, `data-square="h1"`))

	black := draw(t, model.InitialFEN, Options{Orientation: model.BlackBottom})
	assert.Less(t, strings.Index(black, `data-square="h1"`), strings.Index(black, `data-square="a8"`))
}

func TestBoardHighlight(t *testing.T) {
	e2, _ := model.ParsePosition("e2")
	e4, _ := model.ParsePosition("e4")
	out := draw(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1", Options{
		Highlight: []model.Position{e2, e4},
	})
	assert.Equal(t, 2, strings.Count(out, "fill-opacity:0.8"))
	assert.Equal(t, 32, strings.Count(out, "data-square="))
}

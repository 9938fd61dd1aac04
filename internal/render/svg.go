// Package render draws boards for clients that cannot draw their own.
package render

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/benbeisheim/rulechess-backend/internal/model"
)

const (
	SquareSize = 60
	margin     = 20
	BoardSize  = 8*SquareSize + 2*margin

	lightSquare = "fill:#f0d9b5"
	darkSquare  = "fill:#b58863"
	highlight   = "fill:#cdd26a;fill-opacity:0.8"
	labelStyle  = "font-family:sans-serif;font-size:12px;fill:#555;text-anchor:middle"
	pieceStyle  = "font-family:serif;font-size:48px;text-anchor:middle;dominant-baseline:central"
)

var glyphs = map[model.Piece]string{
	{Type: model.King, Color: model.White}:   "♔",
	{Type: model.Queen, Color: model.White}:  "♕",
	{Type: model.Rook, Color: model.White}:   "♖",
	{Type: model.Bishop, Color: model.White}: "♗",
	{Type: model.Knight, Color: model.White}: "♘",
	{Type: model.Pawn, Color: model.White}:   "♙",
	{Type: model.King, Color: model.Black}:   "♚",
	{Type: model.Queen, Color: model.Black}:  "♛",
	{Type: model.Rook, Color: model.Black}:   "♜",
	{Type: model.Bishop, Color: model.Black}: "♝",
	{Type: model.Knight, Color: model.Black}: "♞",
	{Type: model.Pawn, Color: model.Black}:   "♟",
}

type Options struct {
	Orientation model.Orientation
	// Highlight squares, typically the last move.
	Highlight []model.Position
}

// Board writes board as an SVG document. Screen square (col, row) shows
// the board square Orientation.AlignPosition maps it to.
func Board(w io.Writer, board model.Board, opts Options) {
	canvas := svg.New(w)
	canvas.Start(BoardSize, BoardSize)
	canvas.Rect(0, 0, BoardSize, BoardSize, "fill:#fff")

	marked := make(map[model.Position]bool, len(opts.Highlight))
	for _, p := range opts.Highlight {
		marked[p] = true
	}

	canvas.Gid("squares")
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			sq := opts.Orientation.AlignPosition(model.NewPosition(col, row))
			x, y := margin+col*SquareSize, margin+row*SquareSize
			style := lightSquare
			if (sq.X+sq.Y)%2 == 1 {
				style = darkSquare
			}
			canvas.Rect(x, y, SquareSize, SquareSize, style)
			if marked[sq] {
				canvas.Rect(x, y, SquareSize, SquareSize, highlight)
			}
		}
	}
	canvas.Gend()

	canvas.Gid("pieces")
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			sq := opts.Orientation.AlignPosition(model.NewPosition(col, row))
			piece := board.At(sq)
			if piece.IsEmpty() {
				continue
			}
			x, y := margin+col*SquareSize+SquareSize/2, margin+row*SquareSize+SquareSize/2
			canvas.Text(x, y, glyphs[piece], pieceStyle, fmt.Sprintf(`data-square="%s"`, sq))
		}
	}
	canvas.Gend()

	canvas.Gid("labels")
	for i := 0; i < 8; i++ {
		file := opts.Orientation.AlignPosition(model.NewPosition(i, 7)).String()[:1]
		rank := opts.Orientation.AlignPosition(model.NewPosition(0, i)).String()[1:]
		canvas.Text(margin+i*SquareSize+SquareSize/2, BoardSize-margin/3, file, labelStyle)
		canvas.Text(margin/2, margin+i*SquareSize+SquareSize/2, rank, labelStyle)
	}
	canvas.Gend()

	canvas.End()
}

// Package render draws a player's fogged board view as a PNG.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"math"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/park285/dark-chess/internal/darkchess"
)

const (
	DefaultSquareSize = 64
	MinSquareSize     = 16
	MaxSquareSize     = 256
)

// Options tweaks a single render.
type Options struct {
	// LastMove draws an arrow between two cells; skipped unless both are visible.
	LastMove *darkchess.Move
	// Marks tints cells, e.g. the destinations of a selected piece.
	Marks     []darkchess.Move
	HUDHeader string
	HUDTurn   string
}

type BoardRenderer interface {
	RenderPNG(ctx context.Context, view darkchess.BoardView, opts Options) ([]byte, error)
}

type Renderer struct {
	squareSize int
}

// New returns a renderer; out-of-range sizes fall back to DefaultSquareSize.
func New(squareSize int) *Renderer {
	if squareSize < MinSquareSize || squareSize > MaxSquareSize {
		squareSize = DefaultSquareSize
	}
	return &Renderer{squareSize: squareSize}
}

// SquareSize reports the pixel size of one cell.
func (r *Renderer) SquareSize() int { return r.squareSize }

func (r *Renderer) RenderPNG(ctx context.Context, view darkchess.BoardView, opts Options) ([]byte, error) {
	if !view.Viewer.Valid() {
		return nil, errors.New("view has no viewer")
	}

	sq := r.squareSize
	boardSize := sq * darkchess.BoardSize
	sideMargin := sq / 2
	if sideMargin < 16 {
		sideMargin = 16
	}
	const (
		panelHeight  = 26
		panelRadius  = 8
		panelPadding = 14
		hudGap       = 10
	)
	topMargin := panelHeight + hudGap*2

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	img := image.NewRGBA(image.Rect(0, 0, boardSize+sideMargin*2, boardSize+topMargin+sideMargin))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	l := layout{origin: image.Point{X: sideMargin, Y: topMargin}, square: sq, flipped: view.Viewer == darkchess.Black}
	boardRect := image.Rect(l.origin.X, l.origin.Y, l.origin.X+boardSize, l.origin.Y+boardSize)

	drawHUD(img, opts, boardRect, panelHeight, panelRadius, panelPadding, hudGap)
	drawSquares(img, l)
	for _, m := range opts.Marks {
		if !view.Hidden(m.ToX, m.ToY) {
			drawCellOverlay(img, l, m.ToX, m.ToY, markColor)
		}
	}
	if err := drawPieces(img, view, l); err != nil {
		return nil, err
	}
	drawFog(img, view, l)
	if m := opts.LastMove; m != nil && !view.Hidden(m.FromX, m.FromY) && !view.Hidden(m.ToX, m.ToY) {
		drawArrow(img, l, *m, lastMoveArrow)
	}
	drawCoordinates(img, l, sideMargin)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return pngBuf.Bytes(), nil
}

var (
	backgroundColor     = color.RGBA{24, 26, 36, 255}
	lightSquare         = color.RGBA{233, 207, 163, 255}
	darkSquare          = color.RGBA{187, 136, 96, 255}
	fogColor            = color.NRGBA{R: 18, G: 20, B: 28, A: 235}
	fogHatchColor       = color.NRGBA{R: 70, G: 74, B: 92, A: 120}
	markColor           = color.NRGBA{R: 120, G: 200, B: 140, A: 120}
	lastMoveArrow       = color.NRGBA{R: 148, G: 207, B: 255, A: 170}
	hudPanelColor       = color.NRGBA{R: 28, G: 31, B: 46, A: 250}
	hudTurnPanelColor   = color.NRGBA{R: 32, G: 35, B: 52, A: 245}
	hudTextPrimary      = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	hudTurnTextColor    = color.NRGBA{R: 204, G: 210, B: 236, A: 255}
	coordinateTextColor = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
)

// layout maps board cells to pixels. White sees rank 8 at the top; black's view is flipped.
type layout struct {
	origin  image.Point
	square  int
	flipped bool
}

// toSquare: x=0 is the h-file, y is the rank.
func toSquare(x, y int) nchess.Square {
	return nchess.NewSquare(nchess.File(darkchess.BoardSize-1-x), nchess.Rank(y))
}

func (l layout) cellRect(x, y int) image.Rectangle {
	s := toSquare(x, y)
	col, row := int(s.File()), darkchess.BoardSize-1-int(s.Rank())
	if l.flipped {
		col, row = darkchess.BoardSize-1-col, darkchess.BoardSize-1-row
	}
	px := l.origin.X + col*l.square
	py := l.origin.Y + row*l.square
	return image.Rect(px, py, px+l.square, py+l.square)
}

func (l layout) cellCenter(x, y int) pointF {
	r := l.cellRect(x, y)
	return pointF{X: float64(r.Min.X) + float64(l.square)/2, Y: float64(r.Min.Y) + float64(l.square)/2}
}

func squareColor(x, y int) color.Color {
	s := toSquare(x, y)
	if (int(s.File())+int(s.Rank()))%2 == 0 {
		return darkSquare
	}
	return lightSquare
}

func drawSquares(dst *image.RGBA, l layout) {
	for x := 0; x < darkchess.BoardSize; x++ {
		for y := 0; y < darkchess.BoardSize; y++ {
			imagedraw.Draw(dst, l.cellRect(x, y), image.NewUniform(squareColor(x, y)), image.Point{}, imagedraw.Src)
		}
	}
}

func drawPieces(dst *image.RGBA, view darkchess.BoardView, l layout) error {
	for x := 0; x < darkchess.BoardSize; x++ {
		for y := 0; y < darkchess.BoardSize; y++ {
			c := view.At(x, y)
			if c.State != darkchess.CellOccupied {
				continue
			}
			img, err := renderPieceImage(c.Occupant, l.square)
			if err != nil {
				return err
			}
			imagedraw.Draw(dst, l.cellRect(x, y), img, image.Point{}, imagedraw.Over)
		}
	}
	return nil
}

// drawFog covers hidden cells so nothing of the underlying square shows through.
func drawFog(dst *image.RGBA, view darkchess.BoardView, l layout) {
	for x := 0; x < darkchess.BoardSize; x++ {
		for y := 0; y < darkchess.BoardSize; y++ {
			if !view.Hidden(x, y) {
				continue
			}
			r := l.cellRect(x, y)
			imagedraw.Draw(dst, r, image.NewUniform(fogColor), image.Point{}, imagedraw.Over)
			step := l.square / 6
			if step < 4 {
				step = 4
			}
			for d := step; d < l.square*2; d += step {
				for i := 0; i < l.square; i++ {
					j := d - i
					if j < 0 || j >= l.square {
						continue
					}
					blendPixel(dst, r.Min.X+i, r.Min.Y+j, fogHatchColor)
				}
			}
		}
	}
}

func drawCellOverlay(dst *image.RGBA, l layout, x, y int, clr color.Color) {
	imagedraw.Draw(dst, l.cellRect(x, y), image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func drawHUD(img *image.RGBA, opts Options, boardRect image.Rectangle, height, radius, padding, gap int) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: img, Face: face}

	title := strings.TrimSpace(opts.HUDHeader)
	if title == "" {
		title = "Dark Chess"
	}
	turn := strings.TrimSpace(opts.HUDTurn)

	top := boardRect.Min.Y - gap - height
	half := boardRect.Dx() / 2

	titleRect := image.Rect(boardRect.Min.X, top, boardRect.Min.X+half-gap/2, top+height)
	drawRoundedPanel(img, titleRect, radius, hudPanelColor)
	drawLabel(drawer, titleRect, fitLabel(face, title, titleRect.Dx()-padding*2), hudTextPrimary)

	if turn == "" {
		return
	}
	turnRect := image.Rect(boardRect.Min.X+half+gap/2, top, boardRect.Max.X, top+height)
	drawRoundedPanel(img, turnRect, radius, hudTurnPanelColor)
	drawLabel(drawer, turnRect, fitLabel(face, turn, turnRect.Dx()-padding*2), hudTurnTextColor)
}

func drawCoordinates(dst *image.RGBA, l layout, margin int) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: dst, Face: face, Src: image.NewUniform(coordinateTextColor)}
	ascent := face.Metrics().Ascent.Ceil()

	for i := 0; i < darkchess.BoardSize; i++ {
		// 랭크는 x=0 열, 파일은 y=0 행 기준으로 위치를 잡는다
		rankCell := l.cellRect(0, i)
		fileCell := l.cellRect(i, 0)
		s := toSquare(i, i)

		left := l.origin.X
		drawCenteredText(drawer, s.Rank().String(), left-margin/2, rankCell.Min.Y+l.square/2+ascent/2)

		bottom := l.origin.Y + l.square*darkchess.BoardSize
		drawCenteredText(drawer, s.File().String(), fileCell.Min.X+l.square/2, bottom+ascent+2)
	}
}

func drawArrow(img *image.RGBA, l layout, m darkchess.Move, clr color.Color) {
	if m.FromX == m.ToX && m.FromY == m.ToY {
		return
	}
	start := l.cellCenter(m.FromX, m.FromY)
	end := l.cellCenter(m.ToX, m.ToY)
	squareSize := float64(l.square)

	dx := end.X - start.X
	dy := end.Y - start.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	dirX, dirY := dx/length, dy/length
	perpX, perpY := -dirY, dirX

	baseLength := length - squareSize*0.45
	if baseLength < squareSize*0.35 {
		baseLength = length * 0.6
	}
	halfWidth := squareSize * 0.12
	headWidth := squareSize * 0.32

	baseX := start.X + dirX*baseLength
	baseY := start.Y + dirY*baseLength

	// 몸통과 화살촉을 한 윤곽으로
	fillPolygon(img, clr,
		pointF{X: start.X - perpX*halfWidth, Y: start.Y - perpY*halfWidth},
		pointF{X: baseX - perpX*halfWidth, Y: baseY - perpY*halfWidth},
		pointF{X: baseX - perpX*headWidth/2, Y: baseY - perpY*headWidth/2},
		end,
		pointF{X: baseX + perpX*headWidth/2, Y: baseY + perpY*headWidth/2},
		pointF{X: baseX + perpX*halfWidth, Y: baseY + perpY*halfWidth},
		pointF{X: start.X + perpX*halfWidth, Y: start.Y + perpY*halfWidth},
	)
}

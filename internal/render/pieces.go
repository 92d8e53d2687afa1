package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/park285/dark-chess/internal/darkchess"
)

// 45x45 viewBox silhouettes; %[1]s is the body fill, %[2]s the outline.
var pieceShapes = map[darkchess.PieceKind]string{
	darkchess.Pawn: `<circle cx="22.5" cy="14" r="5.5" style="fill:%[1]s;stroke:%[2]s;stroke-width:1.5"/>
<path d="M 17 21 L 28 21 L 31 33 L 14 33 Z" style="fill:%[1]s;stroke:%[2]s;stroke-width:1.5"/>
<path d="M 11 33 L 34 33 L 34 38 L 11 38 Z" style="fill:%[1]s;stroke:%[2]s;stroke-width:1.5"/>`,
	darkchess.Rook: `<path d="M 12 9 L 16 9 L 16 12 L 20 12 L 20 9 L 25 9 L 25 12 L 29 12 L 29 9 L 33 9 L 33 15 L 30 17 L 30 31 L 15 31 L 15 17 L 12 15 Z" style="fill:%[1]s;stroke:%[2]s;stroke-width:1.5"/>
<path d="M 10 31 L 35 31 L 35 38 L 10 38 Z" style="fill:%[1]s;stroke:%[2]s;stroke-width:1.5"/>`,
	darkchess.Knight: `<path d="M 22 10 C 32 11 36 18 35 38 L 15 38 C 15 30 24 28 22 22 L 17 25 L 13 24 L 11 19 L 19 11 Z" style="fill:%[1]s;stroke:%[2]s;stroke-width:1.5"/>
<circle cx="19" cy="16" r="1.5" style="fill:%[2]s"/>`,
	darkchess.Bishop: `<circle cx="22.5" cy="8" r="2.5" style="fill:%[1]s;stroke:%[2]s;stroke-width:1.5"/>
<path d="M 22.5 11 C 30 16 31 24 27 30 L 18 30 C 14 24 15 16 22.5 11 Z" style="fill:%[1]s;stroke:%[2]s;stroke-width:1.5"/>
<path d="M 11 32 L 34 32 L 34 38 L 11 38 Z" style="fill:%[1]s;stroke:%[2]s;stroke-width:1.5"/>`,
	darkchess.Queen: `<path d="M 9 14 L 15 28 L 16 12 L 22.5 27 L 29 12 L 30 28 L 36 14 L 33 33 L 12 33 Z" style="fill:%[1]s;stroke:%[2]s;stroke-width:1.5"/>
<path d="M 11 33 L 34 33 L 34 38 L 11 38 Z" style="fill:%[1]s;stroke:%[2]s;stroke-width:1.5"/>`,
	darkchess.King: `<path d="M 21 5 L 24 5 L 24 8 L 27 8 L 27 11 L 24 11 L 24 14 L 21 14 L 21 11 L 18 11 L 18 8 L 21 8 Z" style="fill:%[1]s;stroke:%[2]s;stroke-width:1"/>
<path d="M 22.5 15 C 34 15 38 22 32 32 L 13 32 C 7 22 11 15 22.5 15 Z" style="fill:%[1]s;stroke:%[2]s;stroke-width:1.5"/>
<path d="M 11 32 L 34 32 L 34 38 L 11 38 Z" style="fill:%[1]s;stroke:%[2]s;stroke-width:1.5"/>`,
}

func pieceSVG(o darkchess.Occupant) ([]byte, error) {
	shape, ok := pieceShapes[o.Kind]
	if !ok {
		return nil, fmt.Errorf("no shape for piece %q", o.Kind)
	}
	fill, stroke := "#f8f8f4", "#1b1b1b"
	if o.Player == darkchess.Black {
		fill, stroke = "#2a2a2e", "#e6e6e6"
	}
	var b bytes.Buffer
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 45 45" width="45" height="45">`)
	fmt.Fprintf(&b, shape, fill, stroke)
	b.WriteString(`</svg>`)
	return b.Bytes(), nil
}

type pieceCacheKey struct {
	piece darkchess.Occupant
	size  int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

func renderPieceImage(piece darkchess.Occupant, size int) (image.Image, error) {
	key := pieceCacheKey{piece: piece, size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	data, err := pieceSVG(piece)
	if err != nil {
		return nil, err
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()

	return img, nil
}

package folio

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	defaultPlaceholderWidth  = 400
	defaultPlaceholderHeight = 300

	// Largest featured image slot in the views is 1200x600.
	maxPlaceholderWidth  = 1200
	maxPlaceholderHeight = 800
)

var (
	placeholderBG = color.RGBA{R: 0xe7, G: 0xe5, B: 0xe4, A: 0xff}
	placeholderFG = color.RGBA{R: 0x78, G: 0x71, B: 0x6c, A: 0xff}
)

// handlePlaceholder serves a neutral PNG labelled with its size, used where a
// post has no featured image.
func handlePlaceholder(c echo.Context) error {
	w := placeholderSide(c.QueryParam("width"), defaultPlaceholderWidth, maxPlaceholderWidth)
	h := placeholderSide(c.QueryParam("height"), defaultPlaceholderHeight, maxPlaceholderHeight)
	data, err := placeholderPNG(w, h)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", data)
}

func placeholderSide(raw string, fallback, limit int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return min(n, limit)
}

// placeholderPNG draws a w by h image with a centred "WxH" label. The label
// is rasterised at the font's native size and scaled up to fit.
func placeholderPNG(w, h int) ([]byte, error) {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(placeholderBG), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	label := fmt.Sprintf("%dx%d", w, h)
	d := &font.Drawer{Face: face}
	tw := d.MeasureString(label).Ceil()
	th := face.Metrics().Height.Ceil()

	scale := min(w*2/3/tw, h/3/th)
	if scale >= 1 {
		txt := image.NewRGBA(image.Rect(0, 0, tw, th))
		d.Dst = txt
		d.Src = image.NewUniform(placeholderFG)
		d.Dot = fixed.P(0, face.Metrics().Ascent.Ceil())
		d.DrawString(label)

		sw, sh := tw*scale, th*scale
		at := image.Pt((w-sw)/2, (h-sh)/2)
		draw.NearestNeighbor.Scale(dst, image.Rect(0, 0, sw, sh).Add(at), txt, txt.Bounds(), draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

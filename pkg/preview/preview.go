// Package preview renders a point set and its oriented box to an image.
package preview

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/philipparndt/approxmvbb/pkg/geometry"
)

// Options control the rendering
type Options struct {
	Width, Height int
	// RotationX and RotationY orbit the camera, in radians
	RotationX, RotationY float64
	Background           color.RGBA
	PointColor           color.RGBA
	BoxColor             color.RGBA
}

// DefaultOptions renders a 800×600 isometric-ish view
func DefaultOptions() Options {
	return Options{
		Width:      800,
		Height:     600,
		RotationX:  math.Pi / 6,
		RotationY:  math.Pi / 4,
		Background: color.RGBA{R: 24, G: 24, B: 28, A: 255},
		PointColor: color.RGBA{R: 120, G: 180, B: 255, A: 255},
		BoxColor:   color.RGBA{R: 255, G: 170, B: 40, A: 255},
	}
}

// Render draws the points and the twelve edges of the box
func Render(points []geometry.Vector3, box geometry.OOBB, opts Options) (*image.RGBA, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, errors.Newf("invalid image size %dx%d", opts.Width, opts.Height)
	}

	corners := box.Corners()
	bounds := geometry.BoundsOf(corners[:])
	cam := NewCamera(bounds)
	cam.Rotate(opts.RotationX, opts.RotationY)

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: opts.Background}, image.Point{}, draw.Src)
	zbuffer := make([]float64, opts.Width*opts.Height)
	for i := range zbuffer {
		zbuffer[i] = math.Inf(1)
	}

	w, h := float64(opts.Width), float64(opts.Height)
	for _, p := range points {
		x, y, z := cam.Project(p, w, h)
		plot(img, zbuffer, int(x), int(y), z, shade(opts.PointColor, z, cam.Distance))
	}

	// corners differing in exactly one bit share an edge
	for a := 0; a < 8; a++ {
		for bit := 1; bit < 8; bit <<= 1 {
			b := a | bit
			if b == a {
				continue
			}
			x1, y1, z1 := cam.Project(corners[a], w, h)
			x2, y2, z2 := cam.Project(corners[b], w, h)
			// the box is drawn on top of the points it encloses
			drawLine(img, zbuffer, int(x1), int(y1), z1-cam.Distance, int(x2), int(y2), z2-cam.Distance, opts.BoxColor)
		}
	}
	return img, nil
}

// shade darkens far points
func shade(c color.RGBA, depth, distance float64) color.RGBA {
	f := math.Max(0.35, math.Min(1, 1.5-depth/(2*distance)))
	return color.RGBA{R: uint8(float64(c.R) * f), G: uint8(float64(c.G) * f), B: uint8(float64(c.B) * f), A: c.A}
}

// WritePNG renders and encodes the image
func WritePNG(w io.Writer, points []geometry.Vector3, box geometry.OOBB, opts Options) error {
	img, err := Render(points, box, opts)
	if err != nil {
		return err
	}
	return errors.Wrap(png.Encode(w, img), "encoding png")
}

package preview

import (
	"image"
	"image/color"
)

// plot sets a pixel if it is in bounds and closer than what is there
func plot(img *image.RGBA, zbuffer []float64, x, y int, z float64, col color.RGBA) {
	bounds := img.Bounds()
	if x < 0 || x >= bounds.Max.X || y < 0 || y >= bounds.Max.Y {
		return
	}
	i := y*bounds.Max.X + x
	if z >= zbuffer[i] {
		return
	}
	zbuffer[i] = z
	img.SetRGBA(x, y, col)
}

// drawLine draws a depth-tested line using Bresenham's algorithm
func drawLine(img *image.RGBA, zbuffer []float64, x1, y1 int, z1 float64, x2, y2 int, z2 float64, col color.RGBA) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}

	steps := max(dx, dy)
	err := dx - dy
	for step := 0; ; step++ {
		z := z1
		if steps > 0 {
			z = z1 + (z2-z1)*float64(step)/float64(steps)
		}
		plot(img, zbuffer, x1, y1, z, col)

		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

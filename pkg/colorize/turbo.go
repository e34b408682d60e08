package colorize

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Polynomial approximation of Google's Turbo colormap (Mikhailov, 2019).
var (
	turboRed   = [6]float64{0.13572138, 4.61539260, -42.66032258, 132.13108234, -152.94239396, 59.28637943}
	turboGreen = [6]float64{0.09140261, 2.19418839, 4.84296658, -14.18503333, 4.27729857, 2.82956604}
	turboBlue  = [6]float64{0.10667330, 12.64194608, -60.58204836, 110.36276771, -89.90310912, 27.34824973}
)

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func poly(c [6]float64, t float64) float64 {
	t2 := t * t
	t3 := t * t2
	t4 := t * t3
	t5 := t * t4
	return c[0] + c[1]*t + c[2]*t2 + c[3]*t3 + c[4]*t4 + c[5]*t5
}

func round255(v float64) int {
	return int(math.Floor(v*255 + 0.5))
}

// TurboRGB evaluates the turbo polynomial at t (clamped to [0,1]). The
// channels are not clamped, and the polynomial overshoots [0,255] slightly
// near t = 0.75 and t = 1.
func TurboRGB(t float64) (r, g, b int) {
	t = clamp01(t)
	return round255(poly(turboRed, t)), round255(poly(turboGreen, t)), round255(poly(turboBlue, t))
}

func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// Turbo returns the colour for t with each channel clamped to the valid range.
func Turbo(t float64) colorful.Color {
	r, g, b := TurboRGB(t)
	return colorful.Color{
		R: float64(clampByte(r)) / 255,
		G: float64(clampByte(g)) / 255,
		B: float64(clampByte(b)) / 255,
	}
}

// CSS formats the turbo colour for t as an rgb() string.
func CSS(t float64) string {
	return cssRGB(Turbo(t))
}

func cssRGB(c colorful.Color) string {
	r, g, b := c.RGB255()
	return fmt.Sprintf("rgb(%d,%d,%d)", r, g, b)
}

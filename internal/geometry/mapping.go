package geometry

import "math"

// NormalizedToBox maps device-normalized coordinates in [0, 1] onto box.
func NormalizedToBox(box Box, nx, ny float64) (float64, float64) {
	return nx*float64(box.Width) + float64(box.X), ny*float64(box.Height) + float64(box.Y)
}

// CalibrationRegion selects the part of a device's surface that is mapped to
// the full target area. Coordinates are normalized unless MM is set, in which
// case they are millimetres on the physical device.
type CalibrationRegion struct {
	X1, Y1 float64
	X2, Y2 float64
	MM     bool
}

// Apply rescales normalized device coordinates so that the calibrated
// sub-region spans [0, 1]. widthMM and heightMM give the device's physical
// size; a millimetre region on a device without a known size is ignored.
// NaN coordinates pass through untouched.
func (c CalibrationRegion) Apply(x, y, widthMM, heightMM float64) (float64, float64) {
	x1, x2 := c.X1, c.X2
	y1, y2 := c.Y1, c.Y2

	if c.MM {
		if widthMM == 0 || heightMM == 0 {
			return x, y
		}
		x1 /= widthMM
		x2 /= widthMM
		y1 /= heightMM
		y2 /= heightMM
	}

	return rescale(x1, x2, x), rescale(y1, y2, y)
}

func rescale(low, high, value float64) float64 {
	if math.IsNaN(value) {
		return value
	}
	return (value - low) / (high - low)
}

package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dualLayout() *Layout {
	return NewLayout(
		&Output{Name: "DP-1", Box: Box{X: 0, Y: 0, Width: 1920, Height: 1080}, Enabled: true},
		&Output{Name: "DP-2", Box: Box{X: 1920, Y: -200, Width: 2560, Height: 1440}, Enabled: true},
	)
}

func TestLayoutClosestPoint(t *testing.T) {
	layout := dualLayout()

	tests := []struct {
		name  string
		x, y  float64
		wantX float64
		wantY float64
	}{
		{name: "inside first output", x: 100, y: 100, wantX: 100, wantY: 100},
		{name: "inside second output", x: 3000, y: -100, wantX: 3000, wantY: -100},
		{name: "left of everything", x: -500, y: 500, wantX: 0, wantY: 500},
		{name: "above first output", x: 500, y: -50, wantX: 500, wantY: 0},
		{name: "far below second output", x: 3000, y: 1e9, wantX: 3000, wantY: 1240},
		{name: "gap under the taller output", x: 1000, y: 1200, wantX: 1000, wantY: 1080},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := layout.ClosestPoint(tt.x, tt.y)
			assert.InDelta(t, tt.wantX, x, 0.01)
			assert.InDelta(t, tt.wantY, y, 0.01)
			assert.True(t, layout.Contains(x, y), "clamped point (%v, %v) must be on an output", x, y)
		})
	}
}

func TestLayoutClosestPointAlwaysInside(t *testing.T) {
	layout := dualLayout()
	points := [][2]float64{
		{math.MaxFloat64, math.MaxFloat64},
		{-math.MaxFloat64, 0},
		{1920, 1080},
		{4480, 1240},
		{math.Inf(1), math.Inf(-1)},
	}
	for _, p := range points {
		x, y := layout.ClosestPoint(p[0], p[1])
		assert.True(t, layout.Contains(x, y), "warp of %v ended outside at (%v, %v)", p, x, y)
	}
}

func TestLayoutClosestPointDegenerate(t *testing.T) {
	t.Run("nan propagates", func(t *testing.T) {
		x, y := dualLayout().ClosestPoint(math.NaN(), 10)
		assert.True(t, math.IsNaN(x))
		assert.True(t, math.IsNaN(y))
	})

	t.Run("disabled and zero-size outputs are ignored", func(t *testing.T) {
		layout := NewLayout(
			&Output{Name: "off", Box: Box{Width: 800, Height: 600}, Enabled: false},
			&Output{Name: "zero", Box: Box{X: 5000}, Enabled: true},
			&Output{Name: "on", Box: Box{X: 1000, Y: 0, Width: 100, Height: 100}, Enabled: true},
		)
		x, y := layout.ClosestPoint(10, 10)
		assert.InDelta(t, 1000, x, 0.01)
		assert.InDelta(t, 10, y, 0.01)
		assert.Equal(t, Box{X: 1000, Width: 100, Height: 100}, layout.Extents())
	})

	t.Run("no outputs", func(t *testing.T) {
		layout := NewLayout()
		assert.False(t, layout.HasActiveOutputs())
		x, y := layout.ClosestPoint(10, 10)
		assert.Equal(t, 0.0, x)
		assert.Equal(t, 0.0, y)
	})
}

func TestLayoutAddRemove(t *testing.T) {
	layout := dualLayout()
	layout.Add(&Output{Name: "DP-1", Box: Box{Width: 800, Height: 600}, Enabled: true})
	require.Len(t, layout.Outputs(), 2)

	out, ok := layout.Get("DP-1")
	require.True(t, ok)
	assert.Equal(t, 800, out.Box.Width)

	assert.True(t, layout.Remove("DP-2"))
	assert.False(t, layout.Remove("DP-2"))
	_, ok = layout.OutputAt(3000, 0)
	assert.False(t, ok)
}

func TestNormalizedToBox(t *testing.T) {
	x, y := NormalizedToBox(Box{Width: 1920, Height: 1080}, 0.5, 0.5)
	assert.Equal(t, 960.0, x)
	assert.Equal(t, 540.0, y)

	x, y = NormalizedToBox(Box{X: -100, Y: 50, Width: 200, Height: 100}, 1, 0)
	assert.Equal(t, 100.0, x)
	assert.Equal(t, 50.0, y)
}

func TestCalibrationRegion(t *testing.T) {
	tests := []struct {
		name         string
		region       CalibrationRegion
		x, y         float64
		widthMM      float64
		heightMM     float64
		wantX, wantY float64
	}{
		{
			name:   "identity",
			region: CalibrationRegion{X1: 0, Y1: 0, X2: 1, Y2: 1},
			x:      0.25, y: 0.75,
			wantX: 0.25, wantY: 0.75,
		},
		{
			name:   "left half mapped to everything",
			region: CalibrationRegion{X1: 0, Y1: 0, X2: 0.5, Y2: 1},
			x:      0.25, y: 0.5,
			wantX: 0.5, wantY: 0.5,
		},
		{
			name:   "millimetre region",
			region: CalibrationRegion{X1: 10, Y1: 10, X2: 110, Y2: 60, MM: true},
			x:      60.0 / 200, y: 35.0 / 100,
			widthMM: 200, heightMM: 100,
			wantX: 0.5, wantY: 0.5,
		},
		{
			name:   "millimetre region on device without size",
			region: CalibrationRegion{X1: 10, Y1: 10, X2: 110, Y2: 60, MM: true},
			x:      0.3, y: 0.4,
			wantX: 0.3, wantY: 0.4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := tt.region.Apply(tt.x, tt.y, tt.widthMM, tt.heightMM)
			assert.InDelta(t, tt.wantX, x, 1e-9)
			assert.InDelta(t, tt.wantY, y, 1e-9)
		})
	}

	t.Run("nan passes through", func(t *testing.T) {
		x, _ := CalibrationRegion{X2: 0.5, Y2: 0.5}.Apply(math.NaN(), 0.1, 0, 0)
		assert.True(t, math.IsNaN(x))
	})
}

func TestRegionConfine(t *testing.T) {
	square := NewRegion(Box{X: 100, Y: 100, Width: 100, Height: 100})

	tests := []struct {
		name         string
		region       Region
		x1, y1       float64
		x2, y2       float64
		wantX, wantY float64
		wantOK       bool
	}{
		{
			name:   "motion inside stays untouched",
			region: square,
			x1:     150, y1: 150, x2: 160, y2: 170,
			wantX: 160, wantY: 170, wantOK: true,
		},
		{
			name:   "horizontal exit clipped at boundary",
			region: square,
			x1:     150, y1: 150, x2: 1150, y2: 150,
			wantX: 200, wantY: 150, wantOK: true,
		},
		{
			name:   "diagonal exit slides along the edge",
			region: square,
			x1:     150, y1: 150, x2: 250, y2: 160,
			wantX: 200, wantY: 160, wantOK: true,
		},
		{
			name:   "exit through a corner",
			region: square,
			x1:     150, y1: 150, x2: -1000, y2: -1000,
			wantX: 100, wantY: 100, wantOK: true,
		},
		{
			name:   "crosses into adjacent rectangle",
			region: NewRegion(Box{X: 0, Y: 0, Width: 100, Height: 100}, Box{X: 100, Y: 0, Width: 100, Height: 100}),
			x1:     50, y1: 50, x2: 180, y2: 50,
			wantX: 180, wantY: 50, wantOK: true,
		},
		{
			name:   "start outside region",
			region: square,
			x1:     10, y1: 10, x2: 150, y2: 150,
			wantX: 10, wantY: 10, wantOK: false,
		},
		{
			name:   "empty region allows nothing",
			region: Region{},
			x1:     10, y1: 10, x2: 20, y2: 20,
			wantX: 10, wantY: 10, wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, ok := tt.region.Confine(tt.x1, tt.y1, tt.x2, tt.y2)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.wantX, x, 0.01)
			assert.InDelta(t, tt.wantY, y, 0.01)
			if ok {
				_, inside := tt.region.ContainsPoint(x, y)
				assert.True(t, inside, "confined point (%v, %v) left the region", x, y)
			}
		})
	}
}

func TestRegionConfineNeverLeaves(t *testing.T) {
	region := NewRegion(
		Box{X: 0, Y: 0, Width: 50, Height: 50},
		Box{X: 50, Y: 20, Width: 50, Height: 10},
	)
	deltas := []float64{-1e6, -75, -3.5, 0, 0.25, 12, 49.99, 1e6}
	for _, dx := range deltas {
		for _, dy := range deltas {
			x, y, ok := region.Confine(25, 25, 25+dx, 25+dy)
			require.True(t, ok)
			_, inside := region.ContainsPoint(x, y)
			assert.True(t, inside, "delta (%v, %v) produced (%v, %v)", dx, dy, x, y)
		}
	}
}

func TestRegionOps(t *testing.T) {
	a := NewRegion(Box{X: 0, Y: 0, Width: 100, Height: 100})
	b := NewRegion(Box{X: 50, Y: 50, Width: 100, Height: 100}, Box{X: 500, Y: 500, Width: 10, Height: 10})

	inter := a.Intersect(b)
	assert.Equal(t, []Box{{X: 50, Y: 50, Width: 50, Height: 50}}, inter.Rects())
	assert.True(t, a.Intersect(Region{}).Empty())

	moved := inter.Translate(10, -10)
	assert.Equal(t, Box{X: 60, Y: 40, Width: 50, Height: 50}, moved.Extents())
	assert.False(t, moved.Equal(inter))
	assert.True(t, NewRegion(Box{}, Box{Width: -1}).Empty())
}

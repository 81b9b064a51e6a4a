package device

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseButton(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    uint32
		wantErr bool
	}{
		{name: "left", input: "button1", want: BtnLeft},
		{name: "middle", input: "button2", want: BtnMiddle},
		{name: "right uppercase prefix", input: "BUTTON3", want: BtnRight},
		{name: "scroll up", input: "button4", want: ScrollUp},
		{name: "scroll right", input: "button7", want: ScrollRight},
		{name: "side", input: "button8", want: BtnSide},
		{name: "extra", input: "button9", want: BtnExtra},
		{name: "button zero", input: "button0", wantErr: true},
		{name: "two digits", input: "button10", wantErr: true},
		{name: "event name", input: "BTN_LEFT", want: BtnLeft},
		{name: "event name side", input: "BTN_SIDE", want: BtnSide},
		{name: "unknown event name", input: "BTN_NOPE", wantErr: true},
		{name: "event code", input: "272", want: BtnLeft},
		{name: "event code of a key", input: "30", wantErr: true},
		{name: "negative code", input: "-5", wantErr: true},
		{name: "garbage", input: "left", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseButton(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnknownButton))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestButtonName(t *testing.T) {
	assert.Equal(t, "BTN_LEFT", ButtonName(BtnLeft))
	assert.Equal(t, "BTN_RIGHT", ButtonName(BtnRight))
	assert.Equal(t, "SCROLL_DOWN", ButtonName(ScrollDown))
	assert.Equal(t, "", ButtonName(ScrollRight+100))
}

func TestIdentifier(t *testing.T) {
	d := New("  Wacom Intuos\tPro M Pen ", ClassTabletTool)
	d.Vendor = 1386
	d.Product = 855
	assert.Equal(t, "1386:855:Wacom_Intuos_Pro_M_Pen", d.Identifier())
}

func TestRemoveFiresOnce(t *testing.T) {
	d := New("mouse", ClassPointer)
	fired := 0
	d.Destroy.Subscribe(func(got *Device) {
		assert.Same(t, d, got)
		fired++
	})

	d.Remove()
	d.Remove()
	assert.Equal(t, 1, fired)
	assert.True(t, d.Removed())
}

func TestToolTypes(t *testing.T) {
	typ, ok := ParseToolType("lens")
	require.True(t, ok)
	assert.Equal(t, ToolLens, typ)

	_, ok = ParseToolType("crayon")
	assert.False(t, ok)

	assert.Equal(t, "pen", Tool{Type: ToolPen}.String())
	assert.Equal(t, "eraser#beef", Tool{Type: ToolEraser, Serial: 0xbeef}.String())

	mask := AxisX | AxisPressure
	assert.True(t, mask.Has(AxisX))
	assert.False(t, mask.Has(AxisX|AxisY))
	assert.True(t, mask.Any(AxisX|AxisY))
}

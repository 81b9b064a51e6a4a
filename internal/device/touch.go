package device

import "github.com/bnema/waycursor/internal/signal"

// TouchEvents are the signals of a touch panel.
type TouchEvents struct {
	Down   signal.Signal[TouchDownEvent]
	Up     signal.Signal[TouchUpEvent]
	Motion signal.Signal[TouchMotionEvent]
	Cancel signal.Signal[TouchCancelEvent]
	Frame  signal.Signal[FrameEvent]
}

// TouchDownEvent starts a contact at a normalized position.
type TouchDownEvent struct {
	TimeMsec uint32
	TouchID  int32
	X, Y     float64
}

// TouchUpEvent ends a contact.
type TouchUpEvent struct {
	TimeMsec uint32
	TouchID  int32
}

// TouchMotionEvent moves a contact to a normalized position.
type TouchMotionEvent struct {
	TimeMsec uint32
	TouchID  int32
	X, Y     float64
}

// TouchCancelEvent aborts a contact, for instance when the palm rejection of
// the hardware kicks in.
type TouchCancelEvent struct {
	TimeMsec uint32
	TouchID  int32
}

package seat

import (
	"github.com/bnema/waycursor/internal/device"
	"github.com/bnema/waycursor/internal/signal"
)

// Kind tags the variant of an Adapter.
type Kind int

const (
	KindPointer Kind = iota
	KindTouch
	KindTablet
)

func (k Kind) String() string {
	switch k {
	case KindPointer:
		return "pointer"
	case KindTouch:
		return "touch"
	default:
		return "tablet"
	}
}

// Adapter connects one device to the seat. It is one of *PointerAdapter,
// *TouchAdapter or *TabletAdapter; switch on Kind or on the concrete type.
type Adapter interface {
	Kind() Kind
	Device() *device.Device
	// Subscriptions returns how many device signals the adapter listens to.
	Subscriptions() int

	close()
}

// base holds what every adapter variant owns.
type base struct {
	seat *Seat
	dev  *device.Device
	subs signal.Group
}

func (b *base) Device() *device.Device { return b.dev }

func (b *base) Subscriptions() int { return b.subs.Len() }

func (b *base) close() { b.subs.Close() }

func newBase(s *Seat, dev *device.Device) base {
	return base{seat: s, dev: dev}
}

// watchRemoval detaches the adapter as soon as its device goes away.
func (b *base) watchRemoval() {
	signal.Connect(&b.subs, &b.dev.Destroy, func(dev *device.Device) {
		b.seat.RemoveDevice(dev)
	})
}

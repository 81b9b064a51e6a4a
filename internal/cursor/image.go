package cursor

import "github.com/bnema/waycursor/internal/scene"

// SetPointerCapability tells the cursor whether its seat currently has a
// pointer. Image changes are ignored without one.
func (c *Cursor) SetPointerCapability(has bool) {
	c.pointerCap = has
}

// PointerCapability reports the last value given to SetPointerCapability.
func (c *Cursor) PointerCapability() bool {
	return c.pointerCap
}

// SetImage shows the named shape, or nothing when name is empty. Setting
// the shape already shown does nothing.
func (c *Cursor) SetImage(name string) {
	if !c.pointerCap {
		return
	}

	prev := c.image
	if name == "" {
		c.image = nil
		if prev != nil {
			c.imageSerial++
		}
		return
	}
	if prev != nil && prev.Surface == nil && prev.Name == name {
		return
	}
	c.image = &Image{Name: name}
	c.imageSerial++
}

// SetImageSurface shows a client surface with the given hotspot. A nil
// surface hides the image.
func (c *Cursor) SetImageSurface(surface *scene.Surface, hotspotX, hotspotY int32, client scene.ClientID) {
	if !c.pointerCap {
		return
	}
	c.imageSerial++
	if surface == nil {
		c.image = nil
		return
	}
	c.image = &Image{
		Surface:  surface,
		HotspotX: hotspotX,
		HotspotY: hotspotY,
		Client:   client,
	}
}

// Image returns the current image, or nil when none is set.
func (c *Cursor) Image() *Image {
	return c.image
}

// ImageSerial increases each time the displayed image actually changes.
func (c *Cursor) ImageSerial() uint64 {
	return c.imageSerial
}

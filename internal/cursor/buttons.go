package cursor

// PressButton counts a pressed button.
func (c *Cursor) PressButton() {
	c.pressed++
}

// ReleaseButton uncounts a pressed button. A release without a matching
// press is logged and ignored.
func (c *Cursor) ReleaseButton() bool {
	if c.pressed == 0 {
		c.log.Error("pressed button count was wrong")
		return false
	}
	c.pressed--
	return true
}

// PressedButtons returns the number of buttons held down.
func (c *Cursor) PressedButtons() uint32 {
	return c.pressed
}

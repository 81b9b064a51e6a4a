package cursor

import "time"

// Hidden reports whether the cursor is hidden.
func (c *Cursor) Hidden() bool {
	return c.hidden
}

// SetHideTimeout changes the idle timeout. Negative values disable hiding.
func (c *Cursor) SetHideTimeout(d time.Duration) {
	c.hideTimeout = d
}

// timeout is the idle delay to arm; the cursor never hides while a button
// is held.
func (c *Cursor) timeout() time.Duration {
	if c.pressed > 0 || c.hideTimeout < 0 {
		return 0
	}
	return c.hideTimeout
}

func (c *Cursor) armHideTimer() {
	d := c.timeout()
	c.lastHideArmed = d
	if c.hideTimer != nil {
		c.hideTimer.Update(d)
	}
}

// ArmedTimeout returns the duration the idle timer was last armed with.
func (c *Cursor) ArmedTimeout() time.Duration {
	return c.lastHideArmed
}

// Hide hides the cursor and drops pointer focus. It does nothing while a
// button is pressed and reports whether the cursor is hidden afterwards.
func (c *Cursor) Hide() bool {
	if c.pressed > 0 {
		return c.hidden
	}
	if !c.hidden {
		c.hidden = true
		c.rebaser.ClearPointerFocus()
	}
	return true
}

// Unhide re-arms the idle timer and, if the cursor was hidden, shows it
// again and rebases.
func (c *Cursor) Unhide() {
	if c.hidden {
		c.hidden = false
		c.rebaser.Rebase()
	}
	c.armHideTimer()
}

// NotifyActivity records user activity. Every source re-arms the idle
// timer; touches do not reveal a hidden cursor.
func (c *Cursor) NotifyActivity(source ActivitySource) {
	if source == ActivityTouch {
		c.armHideTimer()
		return
	}
	c.Unhide()
}

func (c *Cursor) hideNotify() {
	c.Hide()
}

// Close stops the idle timer.
func (c *Cursor) Close() {
	if c.hideTimer != nil {
		c.hideTimer.Remove()
	}
}

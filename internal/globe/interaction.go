package globe

import (
	"github.com/litescript/ls-globe/internal/camera"
	"github.com/litescript/ls-globe/internal/interact"
	"github.com/litescript/ls-globe/internal/markers"
	"github.com/litescript/ls-globe/internal/scene"
)

// PointerEvent is raw pointer input in viewport cells.
type PointerEvent struct {
	Type interact.EventType
	X, Y int
	Raw  any
}

// HandlePointer resolves the struck object and routes the event.
func (c *Controller) HandlePointer(ev PointerEvent) bool {
	if c.frozen || c.destroyed {
		return false
	}
	c.pointerX, c.pointerY, c.pointerValid = ev.X, ev.Y, true
	target := c.pick(ev.X, ev.Y)
	if ev.Type == interact.MouseMove {
		c.hovered = target
	}
	return c.router.Dispatch(interact.Event{Type: ev.Type, X: ev.X, Y: ev.Y, Target: target, Raw: ev.Raw})
}

// PointerLeave forgets the pointer, ending any hover.
func (c *Controller) PointerLeave() {
	c.pointerValid = false
	c.hovered = 0
	c.clearHover(interact.Event{Type: interact.MouseMove})
}

func (c *Controller) pick(x, y int) scene.ID {
	if c.deps.Picker == nil {
		return 0
	}
	return c.deps.Picker.Pick(x, y)
}

// refreshHover replays the pointer when the camera or markers moved a
// different object under it.
func (c *Controller) refreshHover() {
	if !c.pointerValid {
		return
	}
	target := c.pick(c.pointerX, c.pointerY)
	if target == c.hovered {
		return
	}
	c.hovered = target
	c.router.Dispatch(interact.Event{Type: interact.MouseMove, X: c.pointerX, Y: c.pointerY, Target: target})
}

func (c *Controller) registerMarker(obj *markers.Object) {
	key := obj.Key
	c.router.Register(obj.Node.ID, interact.Handlers{
		Click:     func(ev interact.Event) bool { return c.markerClick(key, ev) },
		MouseMove: func(ev interact.Event) bool { return c.markerMove(key, ev) },
	})
}

func (c *Controller) unregisterMarker(obj *markers.Object) {
	c.router.Unregister(obj.Node.ID)
	if c.hovered == obj.Node.ID {
		c.hovered = 0
	}
}

// markerRemovedWhileHovered ends the hover of a marker leaving the scene.
func (c *Controller) markerRemovedWhileHovered(obj *markers.Object) {
	c.hideTooltip()
	if cb := c.callbacks.OnMouseOutMarker; cb != nil {
		cb(obj.Marker, obj.Node, interact.Event{Type: interact.MouseMove, X: c.pointerX, Y: c.pointerY, Target: obj.Node.ID})
	}
}

func (c *Controller) markerClick(key string, ev interact.Event) bool {
	obj, ok := c.markers.Get(key)
	if !ok || obj.Exiting() {
		return false
	}
	if ev.Locked {
		c.hideTooltip()
		return true
	}
	target := obj.Marker.Coordinates
	c.UpdateFocus(&target, c.focusOpts, false)
	if cb := c.callbacks.OnClickMarker; cb != nil {
		cb(obj.Marker, obj.Node, ev)
	}
	return true
}

func (c *Controller) markerMove(key string, ev interact.Event) bool {
	if ev.Locked {
		c.hideTooltip()
		return true
	}
	obj, ok := c.markers.Get(key)
	if !ok || obj.Exiting() {
		return false
	}
	if prev, ok := c.markers.Active(); ok && prev.Key() != key {
		c.clearHover(ev)
	}
	if c.markers.Activate(key) {
		if cb := c.callbacks.OnMouseOverMarker; cb != nil {
			cb(obj.Marker, obj.Node, ev)
		}
	}
	opts := c.markers.Options()
	if opts.EnableTooltip && c.deps.Tooltip != nil {
		off := c.cfg.TooltipOffset
		c.deps.Tooltip.Show(ev.X+off, ev.Y+off, opts.TooltipContent(obj.Marker))
	}
	return true
}

func (c *Controller) backgroundClick(ev interact.Event) bool {
	if !c.focusOpts.EnableDefocus {
		return false
	}
	state := c.rig.State()
	if state != camera.Focusing && state != camera.Focused {
		return false
	}
	prev, _ := c.rig.Target()
	c.runner.Stop()
	c.UpdateFocus(nil, c.focusOpts, false)
	if cb := c.callbacks.OnDefocus; cb != nil {
		cb(prev, ev)
	}
	return true
}

func (c *Controller) backgroundMove(ev interact.Event) bool {
	c.clearHover(ev)
	return true
}

// clearHover deactivates the hovered marker and hides the tooltip.
func (c *Controller) clearHover(ev interact.Event) {
	if key := c.activeKey(); key != "" {
		obj, _ := c.markers.Get(key)
		if m, ok := c.markers.Deactivate(); ok {
			if cb := c.callbacks.OnMouseOutMarker; cb != nil && obj != nil {
				cb(m, obj.Node, ev)
			}
		}
	}
	c.hideTooltip()
}

func (c *Controller) activeKey() string {
	m, ok := c.markers.Active()
	if !ok {
		return ""
	}
	return m.Key()
}

func (c *Controller) hideTooltip() {
	if c.deps.Tooltip != nil {
		c.deps.Tooltip.Hide()
	}
}

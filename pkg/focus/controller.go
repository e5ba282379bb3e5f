package focus

import (
	"time"

	"github.com/ritzau/conflict-atlas/pkg/logging"
	"github.com/ritzau/conflict-atlas/pkg/model"
)

// DefaultDoubleClick is the window in which a second click opens the faction view
const DefaultDoubleClick = 500 * time.Millisecond

// ClickAction is the outcome of a node click
type ClickAction string

const (
	ClickIgnored     ClickAction = "ignored"      // Unknown node, nothing changed
	ClickFocus       ClickAction = "focus"        // Focus moved to the node
	ClickOpenFaction ClickAction = "open_faction" // Double click, navigate to faction view
)

// ClickResult describes what a click did
type ClickResult struct {
	Action     ClickAction `json:"action"`
	NodeID     string      `json:"nodeId"`
	Transition Transition  `json:"transition"`
}

// Controller tracks the focused node and the last published visible set
type Controller struct {
	focused     string
	visible     Set
	lastClickID string
	lastClickAt time.Time
	doubleClick time.Duration
}

// NewController creates a controller with the given double-click window
func NewController(doubleClick time.Duration) *Controller {
	if doubleClick <= 0 {
		doubleClick = DefaultDoubleClick
	}
	return &Controller{
		visible:     make(Set),
		doubleClick: doubleClick,
	}
}

// Focused returns the focused node id, or "" when no focus is active
func (c *Controller) Focused() string {
	return c.focused
}

// Active reports whether a focus is active
func (c *Controller) Active() bool {
	return c.focused != ""
}

// Visible returns the last computed visible set
func (c *Controller) Visible() Set {
	return c.visible
}

// Click handles a click on node id at time now. A click on a node missing
// from g is ignored. A second click on the same node inside the double-click
// window asks for the faction view; any other click moves the focus.
func (c *Controller) Click(g *model.GraphData, id string, now time.Time) ClickResult {
	if !g.HasNode(id) {
		logging.Warn("click on unknown faction ignored", "faction", id)
		return ClickResult{Action: ClickIgnored, NodeID: id}
	}

	if id == c.lastClickID && now.Sub(c.lastClickAt) <= c.doubleClick {
		c.lastClickID = ""
		c.lastClickAt = time.Time{}
		return ClickResult{Action: ClickOpenFaction, NodeID: id}
	}

	c.lastClickID = id
	c.lastClickAt = now
	c.focused = id

	return ClickResult{
		Action:     ClickFocus,
		NodeID:     id,
		Transition: c.apply(VisibleSet(g, id)),
	}
}

// ClickBackground clears the focus and restores the unfiltered graph
func (c *Controller) ClickBackground(g *model.GraphData) Transition {
	c.lastClickID = ""
	c.lastClickAt = time.Time{}
	if c.focused == "" {
		return Transition{Entered: []string{}, Exited: []string{}}
	}

	c.focused = ""
	return c.apply(VisibleSet(g, ""))
}

// Refresh recomputes the visible set against a freshly built graph and
// returns what changed since the previous call
func (c *Controller) Refresh(g *model.GraphData) Transition {
	return c.apply(VisibleSet(g, c.focused))
}

// Reset drops the focus and visible set without computing a transition
func (c *Controller) Reset() {
	c.focused = ""
	c.visible = make(Set)
	c.lastClickID = ""
	c.lastClickAt = time.Time{}
}

func (c *Controller) apply(next Set) Transition {
	t := Diff(c.visible, next)
	c.visible = next
	return t
}

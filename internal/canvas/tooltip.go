package canvas

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Tooltip is a bordered label drawn over the frame at a cell position.
type Tooltip struct {
	mu        sync.Mutex
	visible   bool
	destroyed bool
	x, y      int
	content   string
}

// Show places the tooltip with its top-left corner at (x, y).
func (t *Tooltip) Show(x, y int, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed {
		return
	}
	t.visible = true
	t.x, t.y = x, y
	t.content = content
}

// Hide removes the tooltip from view.
func (t *Tooltip) Hide() {
	t.mu.Lock()
	t.visible = false
	t.mu.Unlock()
}

// Destroy hides the tooltip permanently.
func (t *Tooltip) Destroy() {
	t.mu.Lock()
	t.visible = false
	t.destroyed = true
	t.content = ""
	t.mu.Unlock()
}

// Visible reports whether the tooltip is shown, and its content.
func (t *Tooltip) Visible() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.content, t.visible
}

// box returns the tooltip's rows and origin, or nil when hidden.
func (t *Tooltip) box() (rows [][]rune, x, y int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.visible {
		return nil, 0, 0
	}
	return boxRows(t.content), t.x, t.y
}

func boxRows(content string) [][]rune {
	border := lipgloss.RoundedBorder()
	lines := strings.Split(content, "\n")
	inner := 0
	for _, l := range lines {
		if w := lipgloss.Width(l); w > inner {
			inner = w
		}
	}
	inner += 2

	rows := make([][]rune, 0, len(lines)+2)
	rows = append(rows, []rune(border.TopLeft+strings.Repeat(border.Top, inner)+border.TopRight))
	for _, l := range lines {
		pad := inner - 1 - lipgloss.Width(l)
		rows = append(rows, []rune(border.Left+" "+l+strings.Repeat(" ", pad)+border.Right))
	}
	rows = append(rows, []rune(border.BottomLeft+strings.Repeat(border.Bottom, inner)+border.BottomRight))
	return rows
}

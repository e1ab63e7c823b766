// Package version provides build and version information.
package version

import "fmt"

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Guided tours, freeze/unfreeze, websocket marker stream
// 0.2.0 - Textured globe, clouds and glow, bar markers, hover tooltips
// 0.1.0 - Initial release: terminal globe, orbit camera, marker focus

// UserAgent returns the HTTP User-Agent sent by feed and texture requests.
func UserAgent() string {
	return fmt.Sprintf("ls-globe/%s (Terminal Globe)", Version)
}

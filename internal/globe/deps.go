package globe

import (
	"github.com/litescript/ls-globe/internal/camera"
	"github.com/litescript/ls-globe/internal/scene"
)

// Renderer draws the scene from the camera.
type Renderer interface {
	Render(root *scene.Node, cam camera.Camera)
	SetSize(width, height int)
}

// Picker resolves a viewport position to the object drawn there, or zero.
type Picker interface {
	Pick(x, y int) scene.ID
}

// Tooltip is a floating label near the pointer.
type Tooltip interface {
	Show(x, y int, content string)
	Hide()
	Destroy()
}

// TextureLoader decodes images without blocking. done may be called from any
// goroutine.
type TextureLoader interface {
	Load(src string, done func(scene.Texture, error))
}

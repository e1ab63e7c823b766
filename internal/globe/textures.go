package globe

import (
	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/scene"
)

const (
	slotSurface    = "surface"
	slotBackground = "background"
	slotClouds     = "clouds"
)

// UpdateGlobe applies globe options. Geometry and glow change immediately;
// textures load asynchronously. OnTextureLoaded fires once the surface
// texture resolves, whether or not it loaded.
func (c *Controller) UpdateGlobe(opts GlobeOptions) {
	if c.destroyed {
		return
	}
	opts = opts.Resolve()
	c.globeOpts = opts
	n := c.nodes
	r := c.cfg.Radius

	n.sphere.Geometry = scene.Sphere{Radius: r, Segments: GlobeSegments}
	n.glow.Visible = opts.EnableGlow
	if opts.EnableGlow {
		n.glow.Geometry = scene.Sphere{Radius: r * (1 + opts.GlowRadiusScale), Segments: GlobeSegments}
		n.glow.Material = scene.Material{BackSide: true, Transparent: true, Opacity: 1}
		n.glow.Glow = &scene.Glow{
			Color:       opts.GlowColor,
			Coefficient: opts.GlowCoefficient,
			Power:       opts.GlowPower,
			RadiusScale: opts.GlowRadiusScale,
		}
	}
	c.loadTexture(slotSurface, opts.Texture, true, func(tex *scene.Texture) {
		n.sphere.Material.Texture = tex
	})

	n.background.Visible = opts.EnableBackground
	if opts.EnableBackground {
		n.background.Geometry = scene.Sphere{Radius: r * BackgroundRadiusScale, Segments: GlobeSegments}
		n.background.Material = scene.Material{BackSide: true, Opacity: 1, Texture: n.background.Material.Texture}
		c.loadTexture(slotBackground, opts.BackgroundTexture, false, func(tex *scene.Texture) {
			n.background.Material.Texture = tex
		})
	}

	n.clouds.Visible = opts.EnableClouds
	if opts.EnableClouds {
		n.clouds.Geometry = scene.Sphere{Radius: r + CloudsRadiusOffset, Segments: GlobeSegments}
		n.clouds.Material = scene.Material{Transparent: true, Opacity: opts.CloudsOpacity, Texture: n.clouds.Material.Texture}
		c.loadTexture(slotClouds, opts.CloudsTexture, false, func(tex *scene.Texture) {
			n.clouds.Material.Texture = tex
		})
	}
}

// UpdateLights applies light colors, intensities and the point light offset.
func (c *Controller) UpdateLights(opts LightOptions) {
	if c.destroyed {
		return
	}
	opts = opts.Resolve()
	c.lightOpts = opts
	r := c.cfg.Radius
	c.nodes.ambient.Light = &scene.Light{Color: opts.AmbientLightColor, Intensity: opts.AmbientLightIntensity}
	c.nodes.point.Light = &scene.Light{Color: opts.PointLightColor, Intensity: opts.PointLightIntensity}
	s := opts.PointLightPositionRadiusScales
	c.nodes.point.Position = geo.Vec3{X: r * s[0], Y: r * s[1], Z: r * s[2]}
}

// loadTexture requests src and queues apply for the next tick. Only the most
// recent request per slot is applied. Failures apply a nil texture.
func (c *Controller) loadTexture(slot, src string, notify bool, apply func(*scene.Texture)) {
	c.texGen[slot]++
	gen := c.texGen[slot]

	finish := func(tex *scene.Texture, err error) {
		c.post(func() {
			if c.texGen[slot] != gen {
				return
			}
			if err != nil {
				c.log.Warn("texture %s %q failed: %v", slot, src, err)
				tex = nil
			}
			apply(tex)
			if notify && c.callbacks.OnTextureLoaded != nil {
				c.callbacks.OnTextureLoaded()
			}
		})
	}

	if src == "" || c.deps.Loader == nil {
		finish(nil, nil)
		return
	}
	c.deps.Loader.Load(src, func(tex scene.Texture, err error) {
		if err != nil {
			finish(nil, err)
			return
		}
		finish(&tex, nil)
	})
}

func (c *Controller) post(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	c.inbox = append(c.inbox, fn)
}

func (c *Controller) drainInbox() {
	c.mu.Lock()
	queued := c.inbox
	c.inbox = nil
	c.mu.Unlock()
	for _, fn := range queued {
		fn()
	}
}

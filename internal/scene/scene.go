// Package scene is a small retained scene graph.
package scene

import (
	"image"

	"github.com/litescript/ls-globe/internal/geo"
)

// ID identifies a node. The zero ID means "no object".
type ID uint64

// Kind classifies a node for renderers.
type Kind int

const (
	KindGroup Kind = iota
	KindMesh
	KindCamera
	KindAmbientLight
	KindPointLight
)

// Names of the nodes in the default globe tree.
const (
	NameScene           = "SCENE"
	NameCamera          = "CAMERA"
	NameAmbientLight    = "AMBIENT_LIGHT"
	NamePointLight      = "POINT_LIGHT"
	NameGlobe           = "GLOBE"
	NameGlobeSphere     = "GLOBE_SPHERE"
	NameGlobeBackground = "GLOBE_BACKGROUND"
	NameGlobeClouds     = "GLOBE_CLOUDS"
	NameGlobeGlow       = "GLOBE_GLOW"
	NameMarkerObjects   = "MARKER_OBJECTS"
	NameMarker          = "MARKER"
)

// Texture is a decoded image sampled by renderers.
type Texture struct {
	Source string
	Image  image.Image
}

// Geometry describes a node's shape. A nil geometry draws nothing.
type Geometry interface {
	geometry()
}

// Sphere is a sphere centered on the node origin.
type Sphere struct {
	Radius   float64
	Segments int
}

// Box is an axis-aligned box whose depth points away from the globe center.
type Box struct {
	Width, Height, Depth float64
}

func (Sphere) geometry() {}
func (Box) geometry()    {}

// Material is the surface description of a mesh.
type Material struct {
	Color       string // hex, e.g. "#d1d1d1"
	Opacity     float64
	Transparent bool
	BackSide    bool
	Texture     *Texture
}

// Glow is a fresnel-style halo around a mesh.
type Glow struct {
	Color       string
	Coefficient float64
	Power       float64
	RadiusScale float64
}

// Light is the lighting component of a light node.
type Light struct {
	Color     string
	Intensity float64
}

// Node is an element of the scene tree.
type Node struct {
	ID       ID
	Name     string
	Kind     Kind
	Position geo.Vec3
	Rotation geo.Vec3 // Euler angles in radians
	Scale    float64
	Visible  bool
	Geometry Geometry
	Material Material
	Glow     *Glow
	Light    *Light
	Data     any

	parent   *Node
	children []*Node
	graph    *Graph
}

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's children. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// Add attaches children, detaching each from any previous parent.
func (n *Node) Add(children ...*Node) {
	for _, c := range children {
		if c == nil || c == n {
			continue
		}
		if c.parent != nil {
			c.parent.Remove(c)
		}
		c.parent = n
		n.children = append(n.children, c)
	}
}

// Remove detaches a child. It reports whether the child was attached.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			child.parent = nil
			return true
		}
	}
	return false
}

// Clear detaches every child.
func (n *Node) Clear() {
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
}

// Walk visits n and its visible descendants depth first. Returning false from
// fn skips the node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if !n.Visible || !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// FindByName returns the first node in the subtree with the given name,
// including invisible nodes.
func (n *Node) FindByName(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.children {
		if found := c.FindByName(name); found != nil {
			return found
		}
	}
	return nil
}

// WorldScale returns the product of scales from the root to n.
func (n *Node) WorldScale() float64 {
	s := 1.0
	for p := n; p != nil; p = p.parent {
		s *= p.Scale
	}
	return s
}

// Destroy detaches n from its parent and forgets the subtree's IDs.
func (n *Node) Destroy() {
	if n.parent != nil {
		n.parent.Remove(n)
	}
	var forget func(*Node)
	forget = func(x *Node) {
		if x.graph != nil {
			delete(x.graph.nodes, x.ID)
		}
		for _, c := range x.children {
			forget(c)
		}
	}
	forget(n)
}

// Graph allocates node IDs and resolves them back to nodes.
type Graph struct {
	next  ID
	nodes map[ID]*Node
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[ID]*Node)}
}

// NewNode creates a visible, unit-scale node registered with the graph.
func (g *Graph) NewNode(kind Kind, name string) *Node {
	g.next++
	n := &Node{ID: g.next, Name: name, Kind: kind, Scale: 1, Visible: true, graph: g}
	g.nodes[n.ID] = n
	return n
}

// Lookup resolves an ID.
func (g *Graph) Lookup(id ID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Len returns the number of registered nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

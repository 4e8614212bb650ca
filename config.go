package sapling

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// SceneConfig describes a scene, its default camera and an initial node tree.
type SceneConfig struct {
	Name     string        `yaml:"name"`
	TickRate float64       `yaml:"tick_rate,omitempty"`
	Debug    bool          `yaml:"debug,omitempty"`
	Backend  string        `yaml:"backend,omitempty"`
	Camera   *CameraConfig `yaml:"camera,omitempty"`
	Nodes    []*NodeConfig `yaml:"nodes,omitempty"`
}

// CameraConfig describes the default camera.
type CameraConfig struct {
	Viewport [4]float64 `yaml:"viewport"` // x, y, width, height
	Position [2]float64 `yaml:"position,omitempty"`
	Zoom     float64    `yaml:"zoom,omitempty"`
}

// NodeConfig describes a node prefab: a node, its optional collision shape
// and its children.
type NodeConfig struct {
	Name     string        `yaml:"name"`
	Position []float64     `yaml:"position,omitempty"` // x, y[, z]
	Rotation float64       `yaml:"rotation,omitempty"` // radians
	EntityID uint32        `yaml:"entity_id,omitempty"`
	Shape    *ShapeConfig  `yaml:"shape,omitempty"`
	Children []*NodeConfig `yaml:"children,omitempty"`
}

// ShapeConfig describes a collision shape.
type ShapeConfig struct {
	Type string     `yaml:"type"`
	Rect [4]float64 `yaml:"rect"` // x, y, width, height relative to the node
}

// LoadSceneConfig decodes a YAML scene document.
func LoadSceneConfig(r io.Reader) (*SceneConfig, error) {
	var c SceneConfig
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode scene config: %w", err)
	}
	if c.Name == "" {
		return nil, fmt.Errorf("scene config: missing name: %w", ErrInvalidConfig)
	}
	return &c, nil
}

// LoadPrefab decodes a YAML node prefab.
func LoadPrefab(r io.Reader) (*NodeConfig, error) {
	var c NodeConfig
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode prefab: %w", err)
	}
	return &c, nil
}

// Shape converts the config into a Shape.
func (c *ShapeConfig) Shape() (Shape, error) {
	t, err := ParseShapeType(c.Type)
	if err != nil {
		return Shape{}, err
	}
	r := Rect{X: c.Rect[0], Y: c.Rect[1], Width: c.Rect[2], Height: c.Rect[3]}
	if r.Width < 0 || r.Height < 0 {
		return Shape{}, fmt.Errorf("shape rect %v: negative size: %w", c.Rect, ErrInvalidConfig)
	}
	return NewShape(t, r), nil
}

// Build instantiates the prefab. The subtree is assembled detached and then
// appended to parent, if any, so bodies are created in one pass and a failed
// build leaves the parent untouched.
func (c *NodeConfig) Build(parent *Node) (*Node, error) {
	n, err := c.build()
	if err != nil {
		return nil, err
	}
	if parent != nil {
		parent.AddChild(n)
	}
	return n, nil
}

func (c *NodeConfig) build() (*Node, error) {
	var pos mgl64.Vec3
	switch len(c.Position) {
	case 0:
	case 2, 3:
		copy(pos[:], c.Position)
	default:
		return nil, fmt.Errorf("node %q: position needs 2 or 3 components, got %d: %w",
			c.Name, len(c.Position), ErrInvalidConfig)
	}
	var shape *Shape
	if c.Shape != nil {
		s, err := c.Shape.Shape()
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", c.Name, err)
		}
		shape = &s
	}

	n := NewNode(c.Name)
	n.EntityID = c.EntityID
	n.SetPosition3D(pos)
	if c.Rotation != 0 {
		n.SetRotation(c.Rotation)
	}
	if shape != nil {
		if err := n.SetCollisionShape(*shape); err != nil && !errors.Is(err, ErrNoScene) {
			return nil, fmt.Errorf("node %q: %w", c.Name, err)
		}
	}
	for _, cc := range c.Children {
		child, err := cc.build()
		if err != nil {
			n.Dispose()
			return nil, err
		}
		n.AddChild(child)
	}
	return n, nil
}

// NewSceneFromConfig creates a scene from cfg. Options in opts are applied
// after the ones derived from cfg and take precedence.
func NewSceneFromConfig(cfg *SceneConfig, opts ...SceneOption) (*Scene, error) {
	var all []SceneOption
	if cfg.TickRate > 0 {
		all = append(all, WithFixedDelta(1/cfg.TickRate))
	}
	if cfg.Backend != "" {
		all = append(all, WithBackend(cfg.Backend))
	}
	all = append(all, opts...)

	s, err := NewScene(cfg.Name, all...)
	if err != nil {
		return nil, err
	}
	s.SetDebugMode(cfg.Debug)
	if cc := cfg.Camera; cc != nil {
		cam := NewCamera(Rect{X: cc.Viewport[0], Y: cc.Viewport[1], Width: cc.Viewport[2], Height: cc.Viewport[3]})
		cam.X, cam.Y = cc.Position[0], cc.Position[1]
		if cc.Zoom > 0 {
			cam.Zoom = cc.Zoom
		}
		s.SetDefaultCamera(cam)
	}
	for _, nc := range cfg.Nodes {
		if _, err := nc.Build(s.Root()); err != nil {
			s.Destroy()
			return nil, err
		}
	}
	return s, nil
}

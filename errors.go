package sapling

import "errors"

var (
	// ErrInvalidHandle is returned when a body handle is zero, was destroyed,
	// or belongs to another backend.
	ErrInvalidHandle = errors.New("sapling: invalid body handle")

	// ErrNoScene is returned when an operation needs the node to be attached
	// to a scene tree.
	ErrNoScene = errors.New("sapling: node is not attached to a scene")

	// ErrUnknownShapeType is returned when a shape type name cannot be parsed.
	ErrUnknownShapeType = errors.New("sapling: unknown shape type")

	// ErrUnknownBackend is returned when no backend is registered under a name.
	ErrUnknownBackend = errors.New("sapling: unknown collision backend")

	// ErrSceneExists is returned when a scene name is already registered.
	ErrSceneExists = errors.New("sapling: scene name already registered")

	// ErrInvalidConfig is returned when a configuration document is
	// well-formed YAML but describes an impossible scene or node.
	ErrInvalidConfig = errors.New("sapling: invalid configuration")
)

// Package sapling is a scene graph with a pluggable 2D collision engine for
// [Ebitengine] games.
//
// # Scene graph
//
// Every object is a [Node]. Nodes form a tree rooted at [Scene.Root]; each
// carries a local translation and rotation relative to its parent and a
// global transform that every setter recomputes synchronously for the whole
// subtree, so reads never observe stale values.
//
//	scene, err := sapling.NewScene("level1")
//	if err != nil {
//		log.Fatal(err)
//	}
//	player := sapling.NewNode("player")
//	player.SetPosition(6, 1)
//	scene.Root().AddChild(player)
//
// # Collision
//
// Attach a [Shape] to a node in a scene and the scene's backend creates a
// body for it. The built-in backend ([BackendSimple2D]) indexes bodies in a
// dynamic AABB tree and, on each [Scene.FixedUpdate], pushes dynamic bodies
// out of static and kinematic ones along the axis of least penetration,
// calling [Node.OnCollision] on both participants.
//
//	_ = player.SetCollisionShape(sapling.NewShape(sapling.ShapeDynamic, sapling.Rect{Width: 4, Height: 4}))
//	player.OnCollision = func(info *sapling.CollisionInfo) {
//		// info.Normal points away from info.Other
//	}
//
// Point, range, rectangle and ray queries are available on [Scene], for
// example [Scene.QueryCollisionAll] for hit traces.
//
// # Running
//
// [Loop] drives registered scenes with a fixed-step accumulator; [Run] wraps
// a Loop in an ebiten window and can draw each scene's collision debug mesh.
// Scenes and node prefabs can be described in YAML, see [LoadSceneConfig].
//
// ECS integration is available via a [Donburi] adapter in sapling/ecs.
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package sapling

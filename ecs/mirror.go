package ecs

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"

	drape "github.com/ProfMoriartey/3d-demo"
)

// BodyRefData points an entity at a physics body handle.
type BodyRefData struct {
	Body drape.Body
}

// MeshRefData points an entity at a mesh within a scene.
type MeshRefData struct {
	Scene *drape.Scene
	Mesh  drape.MeshID
}

var (
	BodyRef = donburi.NewComponentType[BodyRefData]()
	MeshRef = donburi.NewComponentType[MeshRefData]()
)

// FrameEventType is the Donburi event type for per-step frame reports.
// Subscribe to it in systems that react to the opening fraction or dirty
// meshes; deliver queued reports with ProcessEvents.
var FrameEventType = events.NewEventType[drape.Frame]()

// PublishFrame queues a frame report on the world.
func PublishFrame(world donburi.World, frame drape.Frame) {
	FrameEventType.Publish(world, frame)
}

// Attach creates an entity that mirrors body onto a scene mesh.
func Attach(world donburi.World, body drape.Body, scene *drape.Scene, mesh drape.MeshID) donburi.Entity {
	entity := world.Create(BodyRef, MeshRef)
	entry := world.Entry(entity)
	donburi.SetValue(entry, BodyRef, BodyRefData{Body: body})
	donburi.SetValue(entry, MeshRef, MeshRefData{Scene: scene, Mesh: mesh})
	return entity
}

// AttachRig registers the arm and every brick of a cloth rig. Intended for
// rigs built with ExternalMirrors, whose choreo skips the internal sync.
func AttachRig(world donburi.World, rig *drape.ClothRig) []donburi.Entity {
	scene := rig.Choreo.Scene()
	var entities []donburi.Entity
	if rig.Arm != nil {
		entities = append(entities, Attach(world, rig.Arm, scene, rig.ArmMesh))
	}
	for i, b := range rig.Bricks {
		if b == nil {
			continue
		}
		entities = append(entities, Attach(world, b, scene, rig.BrickMeshes[i]))
	}
	return entities
}

var mirrorQuery = donburi.NewQuery(filter.Contains(BodyRef, MeshRef))

// Mirror copies every attached body pose onto its mesh. Run once per frame
// after the physics step; entries missing a collaborator are skipped.
func Mirror(world donburi.World) {
	mirrorQuery.Each(world, func(entry *donburi.Entry) {
		body := donburi.Get[BodyRefData](entry, BodyRef).Body
		ref := donburi.Get[MeshRefData](entry, MeshRef)
		if body == nil || ref.Scene == nil {
			return
		}
		m := ref.Scene.Mesh(ref.Mesh)
		if m == nil {
			return
		}
		pos, rot := body.Transform()
		m.Position = pos
		m.Rotation = rot
	})
}

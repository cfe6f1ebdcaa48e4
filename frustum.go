package drape

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera describes a perspective view into the scene. Scene constructors size
// their geometry from it so the effect fills the viewport at any aspect ratio.
type Camera struct {
	// FOV is the vertical field of view in radians.
	FOV float64
	// Aspect is the viewport width divided by its height.
	Aspect float64

	// Position is the camera's world-space location.
	Position mgl64.Vec3
	// Target is the world-space point the camera looks at.
	Target mgl64.Vec3
	// Up is the camera's up direction. Zero value means +Y.
	Up mgl64.Vec3

	// Near and Far are the clip plane distances. Zero values mean 0.1 and 1000.
	Near, Far float64
}

// Ready reports whether the projection parameters have been populated.
func (c Camera) Ready() bool {
	return c.FOV > 0 && c.Aspect > 0
}

// ViewSize returns the world-space width and height of a plane, perpendicular
// to the view axis at the given distance from the camera, that exactly fills
// the frustum:
//
//	height = 2 * tan(FOV/2) * distance
//	width  = height * Aspect
//
// Pure function of the camera fields: call it again after changing FOV or
// Aspect, since geometry built from a previous result will not match.
// Returns ErrNotReady if the projection parameters are unset.
func (c Camera) ViewSize(distance float64) (width, height float64, err error) {
	if !c.Ready() {
		return 0, 0, ErrNotReady
	}
	height = 2 * math.Tan(c.FOV/2) * distance
	width = height * c.Aspect
	return width, height, nil
}

// up returns the configured up direction, defaulting to +Y.
func (c Camera) up() mgl64.Vec3 {
	if c.Up == (mgl64.Vec3{}) {
		return mgl64.Vec3{0, 1, 0}
	}
	return c.Up
}

// clip returns the near/far distances with defaults applied.
func (c Camera) clip() (near, far float64) {
	near, far = c.Near, c.Far
	if near <= 0 {
		near = 0.1
	}
	if far <= near {
		far = 1000
	}
	return near, far
}

// ViewMatrix returns the world-to-camera transform.
func (c Camera) ViewMatrix() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position, c.Target, c.up())
}

// ProjectionMatrix returns the perspective projection for the camera.
func (c Camera) ProjectionMatrix() mgl64.Mat4 {
	near, far := c.clip()
	return mgl64.Perspective(c.FOV, c.Aspect, near, far)
}

// Project maps a world-space point to pixel coordinates in a width x height
// viewport with the origin at the top-left, plus a depth value that lies in
// [0, 1] for points inside the clip volume (0 = near plane).
func (c Camera) Project(p mgl64.Vec3, width, height int) (x, y, depth float64) {
	win := mgl64.Project(p, c.ViewMatrix(), c.ProjectionMatrix(), 0, 0, width, height)
	return win.X(), float64(height) - win.Y(), win.Z()
}

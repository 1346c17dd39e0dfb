package core

// EyeOrigin is where the shooting camera sits.
var EyeOrigin = Vec3{}

// Hitscan casts the camera's forward ray against the body.
func Hitscan(camera CameraState, body PhysicsBody) bool {
	return body.CastRay(EyeOrigin, camera.Forward().Scale(HitscanRange))
}

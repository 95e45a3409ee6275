package domain

// CameraStatus is the lifecycle state of the AR camera.
type CameraStatus string

// Camera statuses.
const (
	CameraIdle    CameraStatus = "idle"
	CameraLoading CameraStatus = "loading"
	CameraActive  CameraStatus = "active"
	CameraError   CameraStatus = "error"
)

// FacingMode is a capture constraint on which camera to use.
type FacingMode string

// Facing modes.
const (
	FacingAny         FacingMode = ""
	FacingEnvironment FacingMode = "environment"
	FacingUser        FacingMode = "user"
)

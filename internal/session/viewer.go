package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/chemlab-api/internal/catalog"
	"github.com/phrazzld/chemlab-api/internal/domain"
	"github.com/phrazzld/chemlab-api/internal/platform/capture"
	"github.com/phrazzld/chemlab-api/internal/task"
)

// Camera error messages shown to the learner.
const (
	CameraNotSupportedMsg = "Camera API not supported in this browser. Ensure you are using HTTPS."
	CameraPermissionMsg   = "Camera permission denied. Please check site settings."
	CameraAccessMsgPrefix = "Could not access camera: "
	CameraStartFailedMsg  = "Failed to start video stream."
)

// Camera acquisition outcomes reported to the CameraObserver.
const (
	CameraOutcomeActive       = "active"
	CameraOutcomeStale        = "stale"
	CameraOutcomeNotSupported = "not_supported"
	CameraOutcomePermission   = "permission_denied"
	CameraOutcomeStartFailed  = "start_failed"
	CameraOutcomeError        = "error"
)

const insightContextTemplate = "Tell me a fun fact about %s structure"

// CameraObserver is told how each camera acquisition ended.
type CameraObserver interface {
	CameraAcquired(outcome string)
}

// ViewerState is a snapshot of the molecule viewer.
type ViewerState struct {
	Molecule    domain.Molecule     `json:"molecule"`
	ARMode      bool                `json:"ar_mode"`
	Camera      domain.CameraStatus `json:"camera_status"`
	CameraError string              `json:"camera_error,omitempty"`
}

func (s ViewerState) selectMolecule(m domain.Molecule) ViewerState {
	s.Molecule = m
	return s
}

func (s ViewerState) arOn() ViewerState {
	s.ARMode = true
	s.Camera = domain.CameraLoading
	s.CameraError = ""
	return s
}

func (s ViewerState) arOff() ViewerState {
	s.ARMode = false
	s.Camera = domain.CameraIdle
	s.CameraError = ""
	return s
}

func (s ViewerState) cameraActive() ViewerState {
	s.Camera = domain.CameraActive
	s.CameraError = ""
	return s
}

func (s ViewerState) cameraFailed(msg string) ViewerState {
	s.Camera = domain.CameraError
	s.CameraError = msg
	return s
}

// canRetry reports whether a camera retry is allowed.
func (s ViewerState) canRetry() bool {
	return s.ARMode && (s.Camera == domain.CameraIdle || s.Camera == domain.CameraError)
}

// Viewer is the molecule viewer session. It owns at most one camera stream,
// which is stopped whenever AR mode ends.
type Viewer struct {
	mu      sync.Mutex
	state   ViewerState
	seq     uint64
	stream  capture.Stream
	mounted bool

	catalog    *catalog.Catalog
	device     capture.Device
	tutor      *Tutor
	dispatcher task.Dispatcher
	observer   CameraObserver
	logger     *slog.Logger
}

func newViewer(deps Deps, tutor *Tutor) *Viewer {
	return &Viewer{
		state:      ViewerState{Molecule: deps.Catalog.DefaultMolecule(), Camera: domain.CameraIdle},
		mounted:    true,
		catalog:    deps.Catalog,
		device:     deps.Device,
		tutor:      tutor,
		dispatcher: deps.Dispatcher,
		observer:   deps.CameraObserver,
		logger:     deps.Logger.With("component", "viewer"),
	}
}

// State returns the current viewer state.
func (v *Viewer) State() (ViewerState, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return ViewerState{}, ErrViewNotActive
	}
	return v.state, nil
}

// SelectMolecule shows the catalog molecule with the given id.
func (v *Viewer) SelectMolecule(id string) (ViewerState, error) {
	m, err := v.catalog.Molecule(id)
	if err != nil {
		return ViewerState{}, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return ViewerState{}, ErrViewNotActive
	}
	v.state = v.state.selectMolecule(m)
	return v.state, nil
}

// SetAR turns AR mode on or off. Turning it on starts a camera acquisition;
// turning it off releases the camera. Setting the current mode is a no-op and
// reports false.
func (v *Viewer) SetAR(ctx context.Context, on bool) (bool, error) {
	v.mu.Lock()
	if !v.mounted {
		v.mu.Unlock()
		return false, ErrViewNotActive
	}
	if v.state.ARMode == on {
		v.mu.Unlock()
		return false, nil
	}

	if !on {
		v.releaseLocked()
		v.state = v.state.arOff()
		v.mu.Unlock()
		return true, nil
	}

	v.state = v.state.arOn()
	v.seq++
	seq := v.seq
	v.mu.Unlock()

	v.acquire(ctx, seq)
	return true, nil
}

// RetryCamera restarts acquisition after a failure. It is accepted only while
// AR mode is on and the camera is idle or in error.
func (v *Viewer) RetryCamera(ctx context.Context) (bool, error) {
	v.mu.Lock()
	if !v.mounted {
		v.mu.Unlock()
		return false, ErrViewNotActive
	}
	if !v.state.canRetry() {
		v.mu.Unlock()
		return false, nil
	}
	v.releaseLocked()
	v.state = v.state.arOn()
	v.seq++
	seq := v.seq
	v.mu.Unlock()

	v.acquire(ctx, seq)
	return true, nil
}

// AskInsight asks the tutor for a fact about the selected molecule.
func (v *Viewer) AskInsight(ctx context.Context) error {
	v.mu.Lock()
	if !v.mounted {
		v.mu.Unlock()
		return ErrViewNotActive
	}
	name := v.state.Molecule.Name
	v.mu.Unlock()

	return v.tutor.Ask(ctx, name, fmt.Sprintf(insightContextTemplate, name))
}

// unmount releases the camera and invalidates any acquisition in flight.
func (v *Viewer) unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mounted = false
	v.releaseLocked()
	v.state = v.state.arOff()
}

// releaseLocked stops the held stream and makes pending acquisitions stale.
func (v *Viewer) releaseLocked() {
	v.seq++
	if v.stream != nil {
		v.stream.Stop()
		v.stream = nil
	}
}

func (v *Viewer) acquire(ctx context.Context, seq uint64) {
	submit(ctx, v.dispatcher, v.logger, task.TypeCamera,
		func(ctx context.Context) {
			stream, msg, outcome := openCamera(ctx, v.device)
			v.completeAcquisition(seq, stream, msg, outcome)
		},
		func() {
			v.completeAcquisition(seq, nil, CameraAccessMsgPrefix+"request could not be scheduled", CameraOutcomeError)
		},
	)
}

func (v *Viewer) completeAcquisition(seq uint64, stream capture.Stream, msg, outcome string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if seq != v.seq || !v.mounted {
		if stream != nil {
			stream.Stop()
		}
		v.observe(CameraOutcomeStale)
		v.logger.Debug("discarding stale camera acquisition", "seq", seq, "latest", v.seq)
		return
	}

	v.observe(outcome)
	if stream == nil {
		v.state = v.state.cameraFailed(msg)
		return
	}
	v.stream = stream
	v.state = v.state.cameraActive()
}

func (v *Viewer) observe(outcome string) {
	if v.observer != nil {
		v.observer.CameraAcquired(outcome)
	}
}

// openCamera opens and starts a stream, preferring the rear camera. On
// failure it returns the message to show and a nil stream.
func openCamera(ctx context.Context, device capture.Device) (capture.Stream, string, string) {
	if device == nil {
		return nil, CameraNotSupportedMsg, CameraOutcomeNotSupported
	}

	stream, err := device.Open(ctx, capture.Constraints{FacingMode: domain.FacingEnvironment})
	if errors.Is(err, capture.ErrOverconstrained) {
		stream, err = device.Open(ctx, capture.Constraints{})
	}

	switch {
	case err == nil:
	case errors.Is(err, capture.ErrNotSupported):
		return nil, CameraNotSupportedMsg, CameraOutcomeNotSupported
	case errors.Is(err, capture.ErrPermissionDenied):
		return nil, CameraPermissionMsg, CameraOutcomePermission
	default:
		return nil, CameraAccessMsgPrefix + err.Error(), CameraOutcomeError
	}

	if err := stream.Start(); err != nil {
		stream.Stop()
		return nil, CameraStartFailedMsg, CameraOutcomeStartFailed
	}
	return stream, "", CameraOutcomeActive
}

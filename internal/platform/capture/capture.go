// Package capture wraps the camera used by the molecule viewer's AR mode.
// The server has no camera of its own, so the device offered to viewers is a
// VirtualDevice whose availability, permission and supported facing modes
// come from configuration; it behaves like a browser media device would.
package capture

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/phrazzld/chemlab-api/internal/config"
	"github.com/phrazzld/chemlab-api/internal/domain"
)

// Errors reported by Open.
var (
	// ErrNotSupported is returned when no capture API is available.
	ErrNotSupported = errors.New("camera capture not supported")

	// ErrPermissionDenied is returned when the user refused camera access.
	ErrPermissionDenied = errors.New("camera permission denied")

	// ErrOverconstrained is returned when no camera satisfies the constraints.
	ErrOverconstrained = errors.New("no camera satisfies constraints")

	// ErrStartFailed is returned by Stream.Start when playback cannot begin.
	ErrStartFailed = errors.New("video stream failed to start")
)

// Constraints select a camera. The zero value accepts any camera.
type Constraints struct {
	FacingMode domain.FacingMode
}

// Stream is an opened camera stream. Stop releases it and is safe to call
// more than once.
type Stream interface {
	Start() error
	Stop()
}

// Device opens camera streams.
type Device interface {
	Open(ctx context.Context, c Constraints) (Stream, error)
}

// VirtualDevice is a configurable Device.
type VirtualDevice struct {
	available   bool
	permission  bool
	facingModes []domain.FacingMode
	failStart   bool
	logger      *slog.Logger

	mu   sync.Mutex
	open int
}

var _ Device = (*VirtualDevice)(nil)

// NewVirtualDevice builds a device from camera configuration.
func NewVirtualDevice(cfg config.CameraConfig, logger *slog.Logger) *VirtualDevice {
	modes := make([]domain.FacingMode, 0, len(cfg.FacingModes))
	for _, m := range cfg.FacingModes {
		modes = append(modes, domain.FacingMode(m))
	}
	return &VirtualDevice{
		available:   cfg.Available,
		permission:  cfg.PermissionGranted,
		facingModes: modes,
		logger:      logger.With("component", "virtual_camera"),
	}
}

// FailStart makes every stream opened afterwards fail to start.
func (d *VirtualDevice) FailStart(fail bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failStart = fail
}

// OpenStreams returns the number of streams opened and not yet stopped.
func (d *VirtualDevice) OpenStreams() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// Open returns a new stream satisfying c.
func (d *VirtualDevice) Open(ctx context.Context, c Constraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !d.available {
		return nil, ErrNotSupported
	}
	if !d.permission {
		return nil, ErrPermissionDenied
	}
	if c.FacingMode != domain.FacingAny && !slices.Contains(d.facingModes, c.FacingMode) {
		return nil, ErrOverconstrained
	}
	if len(d.facingModes) == 0 {
		return nil, ErrOverconstrained
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.open++
	d.logger.DebugContext(ctx, "camera stream opened", "facing_mode", c.FacingMode, "open_streams", d.open)
	return &virtualStream{device: d, failStart: d.failStart}, nil
}

func (d *VirtualDevice) release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open--
	d.logger.Debug("camera stream stopped", "open_streams", d.open)
}

type virtualStream struct {
	device    *VirtualDevice
	failStart bool
	stopOnce  sync.Once
}

func (s *virtualStream) Start() error {
	if s.failStart {
		return ErrStartFailed
	}
	return nil
}

func (s *virtualStream) Stop() {
	s.stopOnce.Do(s.device.release)
}

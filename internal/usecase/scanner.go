package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/gidascan/backend/internal/domain"
)

// ScanMode selects which capture flow the live camera serves.
type ScanMode int

const (
	ModeBarcode ScanMode = iota
	ModePhoto
)

// ScanState is the acquisition state machine's current state. The camera is
// held in exactly the ScanningBarcode and PhotoCapture states.
type ScanState int

const (
	StateIdle ScanState = iota
	StateScanningBarcode
	StatePhotoCapture
	StateReviewing
)

// MsgCameraError is the banner shown when the camera cannot be acquired.
const MsgCameraError = "Kamera açılamadı. Lütfen kamera izni verin."

// Scanner manages the camera lifecycle and turns user capture actions into
// acquisition events. Camera ownership is scoped to the camera-holding
// states: every transition out of them closes the session, including error
// paths and Close.
type Scanner struct {
	camera  domain.CameraDevice
	decoder domain.BarcodeDecoder

	mu        sync.Mutex
	state     ScanState
	mode      ScanMode
	prevMode  ScanMode
	session   domain.CameraSession
	captured  *domain.Frame
	deviceErr string
	detected  bool
	events    chan domain.AcquisitionEvent
}

// NewScanner creates a scanner in Idle with barcode mode preselected.
func NewScanner(camera domain.CameraDevice, decoder domain.BarcodeDecoder) *Scanner {
	return &Scanner{
		camera:  camera,
		decoder: decoder,
		state:   StateIdle,
		mode:    ModeBarcode,
		events:  make(chan domain.AcquisitionEvent, 1),
	}
}

// Events delivers at most one acquisition event per successful scan or
// confirmed capture. Events are created transiently and expected to be
// consumed immediately.
func (s *Scanner) Events() <-chan domain.AcquisitionEvent {
	return s.events
}

// State returns the current state.
func (s *Scanner) State() ScanState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Mode returns the current capture mode.
func (s *Scanner) Mode() ScanMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Err returns the user-facing device error from the last failed camera
// acquisition, or "" when the last acquisition succeeded.
func (s *Scanner) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deviceErr
}

// StartScanning acquires the camera in continuous-decode mode. Per-frame
// decode misses are never reported; only camera acquisition failure surfaces,
// flagging an error-marked Idle.
func (s *Scanner) StartScanning(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateScanningBarcode {
		return nil
	}
	s.mode = ModeBarcode
	return s.acquireLocked(ctx, StateScanningBarcode)
}

// CapturePhoto grabs the current live frame as a still image, releases the
// camera and moves to Reviewing. Without a live frame it is a no-op, not an
// error.
func (s *Scanner) CapturePhoto() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return
	}
	frame, err := s.session.Grab()
	if err != nil || frame == nil {
		return
	}

	s.closeSessionLocked()
	s.prevMode = s.mode
	s.captured = frame
	s.state = StateReviewing
}

// SelectFile accepts externally supplied image bytes and moves straight to
// Reviewing. Valid from any state; a held camera is released.
func (s *Scanner) SelectFile(data []byte, mimeType string) {
	if len(data) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeSessionLocked()
	if s.state != StateReviewing {
		s.prevMode = s.mode
	}
	s.captured = &domain.Frame{Data: data, MIMEType: mimeType}
	s.state = StateReviewing
}

// Confirm emits the held image as an ImageCaptured event. Valid only in
// Reviewing; a no-op elsewhere.
func (s *Scanner) Confirm() {
	s.mu.Lock()
	if s.state != StateReviewing || s.captured == nil {
		s.mu.Unlock()
		return
	}
	frame := s.captured
	s.captured = nil
	s.state = StateIdle
	s.mu.Unlock()

	s.emit(domain.AcquisitionEvent{
		Type:     domain.EventImageCaptured,
		Image:    frame.Data,
		MIMEType: frame.MIMEType,
	})
}

// Retake discards the held image and returns to the mode that was active
// before capture, re-acquiring the camera for that mode. Valid only in
// Reviewing.
func (s *Scanner) Retake(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReviewing {
		return nil
	}
	s.captured = nil
	s.mode = s.prevMode

	target := StateScanningBarcode
	if s.mode == ModePhoto {
		target = StatePhotoCapture
	}
	return s.acquireLocked(ctx, target)
}

// SwitchMode releases any held camera, switches mode and re-acquires the
// camera for the target mode. Valid from Idle, ScanningBarcode and
// PhotoCapture; a no-op while Reviewing.
func (s *Scanner) SwitchMode(ctx context.Context, target ScanMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateReviewing {
		return nil
	}
	s.mode = target

	state := StateScanningBarcode
	if target == ModePhoto {
		state = StatePhotoCapture
	}
	return s.acquireLocked(ctx, state)
}

// Close releases every held resource and returns to Idle. Safe to call from
// any state; this is the forced-navigation/unmount path.
func (s *Scanner) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeSessionLocked()
	s.captured = nil
	s.state = StateIdle
}

// acquireLocked swaps the current camera session for a fresh one serving the
// target state. Acquisition failure leaves the machine in an error-flagged
// Idle. Callers hold s.mu.
func (s *Scanner) acquireLocked(ctx context.Context, target ScanState) error {
	s.closeSessionLocked()
	s.deviceErr = ""
	s.detected = false

	session, err := s.camera.Open(ctx)
	if err != nil {
		s.state = StateIdle
		s.deviceErr = MsgCameraError
		log.Printf("[SCANNER] Camera acquisition failed: %v", err)
		return fmt.Errorf("%w: %v", domain.ErrCameraUnavailable, err)
	}

	s.session = session
	s.state = target

	if target == StateScanningBarcode {
		go s.decodeLoop(session)
	}
	return nil
}

// decodeLoop drains the session's frame stream through the decoder. The first
// successful decode wins: it releases the camera and emits exactly one
// BarcodeDetected event; later decodes are ignored until the machine leaves
// ScanningBarcode. Frames without a readable code are skipped silently.
func (s *Scanner) decodeLoop(session domain.CameraSession) {
	for frame := range session.Frames() {
		code, err := s.decoder.Decode(frame)
		if err != nil {
			continue
		}

		s.mu.Lock()
		if s.state != StateScanningBarcode || s.session != session || s.detected {
			s.mu.Unlock()
			continue
		}
		s.detected = true
		s.closeSessionLocked()
		s.state = StateIdle
		s.mu.Unlock()

		s.emit(domain.AcquisitionEvent{
			Type: domain.EventBarcodeDetected,
			Code: code,
		})
		return
	}
}

// closeSessionLocked releases the camera if held. Callers hold s.mu.
func (s *Scanner) closeSessionLocked() {
	if s.session == nil {
		return
	}
	if err := s.session.Close(); err != nil {
		log.Printf("[SCANNER] Session close error: %v", err)
	}
	s.session = nil
}

// emit hands the event to the consumer without blocking state transitions.
func (s *Scanner) emit(event domain.AcquisitionEvent) {
	select {
	case s.events <- event:
	default:
		log.Printf("[SCANNER] Dropped %s event: previous event not consumed", event.Type)
	}
}

package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gidascan/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSession is a scripted camera session. Frames are pushed by the test;
// Close closes the frame channel exactly once.
type fakeSession struct {
	frames    chan domain.Frame
	grabFrame *domain.Frame
	grabErr   error

	mu     sync.Mutex
	closed bool
}

func (s *fakeSession) Frames() <-chan domain.Frame { return s.frames }

func (s *fakeSession) Grab() (*domain.Frame, error) {
	if s.grabErr != nil {
		return nil, s.grabErr
	}
	return s.grabFrame, nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.frames)
	}
	return nil
}

func (s *fakeSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// fakeCamera records every session it opens.
type fakeCamera struct {
	mu        sync.Mutex
	openErr   error
	grabFrame *domain.Frame
	grabErr   error
	sessions  []*fakeSession
}

func (c *fakeCamera) Open(ctx context.Context) (domain.CameraSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.openErr != nil {
		return nil, c.openErr
	}
	session := &fakeSession{
		frames:    make(chan domain.Frame, 8),
		grabFrame: c.grabFrame,
		grabErr:   c.grabErr,
	}
	c.sessions = append(c.sessions, session)
	return session, nil
}

func (c *fakeCamera) openCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

func (c *fakeCamera) session(i int) *fakeSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions[i]
}

// fakeDecoder reads codes out of frames whose data is "code:<value>".
type fakeDecoder struct{}

func (fakeDecoder) Decode(frame domain.Frame) (string, error) {
	s := string(frame.Data)
	if code, ok := strings.CutPrefix(s, "code:"); ok {
		return code, nil
	}
	return "", domain.ErrNoBarcode
}

func codeFrame(code string) domain.Frame {
	return domain.Frame{Data: []byte("code:" + code), MIMEType: "image/jpeg"}
}

func noiseFrame() domain.Frame {
	return domain.Frame{Data: []byte("noise"), MIMEType: "image/jpeg"}
}

func receiveEvent(t *testing.T, s *Scanner) domain.AcquisitionEvent {
	t.Helper()
	select {
	case event := <-s.Events():
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for acquisition event")
		return domain.AcquisitionEvent{}
	}
}

func assertNoEvent(t *testing.T, s *Scanner) {
	t.Helper()
	select {
	case event := <-s.Events():
		t.Fatalf("unexpected event: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStartScanning_DetectsBarcodeOnce(t *testing.T) {
	camera := &fakeCamera{}
	scanner := NewScanner(camera, fakeDecoder{})

	require.NoError(t, scanner.StartScanning(context.Background()))
	assert.Equal(t, StateScanningBarcode, scanner.State())

	session := camera.session(0)
	session.frames <- noiseFrame() // per-frame miss, ignored
	session.frames <- codeFrame("8690504012345")

	event := receiveEvent(t, scanner)
	assert.Equal(t, domain.EventBarcodeDetected, event.Type)
	assert.Equal(t, "8690504012345", event.Code)

	// Detection releases the camera and returns to Idle.
	assert.Equal(t, StateIdle, scanner.State())
	assert.True(t, session.isClosed())
}

func TestStartScanning_RapidDoubleDecodeEmitsOneEvent(t *testing.T) {
	camera := &fakeCamera{}
	scanner := NewScanner(camera, fakeDecoder{})

	require.NoError(t, scanner.StartScanning(context.Background()))

	session := camera.session(0)
	session.frames <- codeFrame("1111111111111")
	session.frames <- codeFrame("2222222222222")

	event := receiveEvent(t, scanner)
	assert.Equal(t, "1111111111111", event.Code, "first detection wins")
	assertNoEvent(t, scanner)
}

func TestStartScanning_CameraFailure(t *testing.T) {
	camera := &fakeCamera{openErr: errors.New("permission denied")}
	scanner := NewScanner(camera, fakeDecoder{})

	err := scanner.StartScanning(context.Background())

	assert.ErrorIs(t, err, domain.ErrCameraUnavailable)
	assert.Equal(t, StateIdle, scanner.State())
	assert.Equal(t, MsgCameraError, scanner.Err())
}

func TestStartScanning_ErrorFlagClearedOnRecovery(t *testing.T) {
	camera := &fakeCamera{openErr: errors.New("permission denied")}
	scanner := NewScanner(camera, fakeDecoder{})

	require.Error(t, scanner.StartScanning(context.Background()))
	assert.Equal(t, MsgCameraError, scanner.Err())

	camera.mu.Lock()
	camera.openErr = nil
	camera.mu.Unlock()

	require.NoError(t, scanner.StartScanning(context.Background()))
	assert.Empty(t, scanner.Err())
	assert.Equal(t, StateScanningBarcode, scanner.State())
}

func TestCapturePhoto_IdleIsNoOp(t *testing.T) {
	scanner := NewScanner(&fakeCamera{}, fakeDecoder{})

	scanner.CapturePhoto()

	assert.Equal(t, StateIdle, scanner.State())
	assertNoEvent(t, scanner)
}

func TestCapturePhoto_GrabFailureIsNoOp(t *testing.T) {
	camera := &fakeCamera{grabErr: errors.New("no frame yet")}
	scanner := NewScanner(camera, fakeDecoder{})

	require.NoError(t, scanner.StartScanning(context.Background()))
	scanner.CapturePhoto()

	assert.Equal(t, StateScanningBarcode, scanner.State(), "failed grab must not change state")
	assert.False(t, camera.session(0).isClosed(), "camera stays live after failed grab")
}

func TestCapturePhoto_MovesToReviewing(t *testing.T) {
	frame := &domain.Frame{Data: []byte("still"), MIMEType: "image/jpeg"}
	camera := &fakeCamera{grabFrame: frame}
	scanner := NewScanner(camera, fakeDecoder{})

	require.NoError(t, scanner.StartScanning(context.Background()))
	scanner.CapturePhoto()

	assert.Equal(t, StateReviewing, scanner.State())
	assert.True(t, camera.session(0).isClosed(), "capture releases the camera")

	scanner.Confirm()
	event := receiveEvent(t, scanner)
	assert.Equal(t, domain.EventImageCaptured, event.Type)
	assert.Equal(t, []byte("still"), event.Image)
	assert.Equal(t, "image/jpeg", event.MIMEType)
	assert.Equal(t, StateIdle, scanner.State())
}

func TestConfirm_OutsideReviewingIsNoOp(t *testing.T) {
	scanner := NewScanner(&fakeCamera{}, fakeDecoder{})

	scanner.Confirm()

	assertNoEvent(t, scanner)
}

func TestSelectFile_ValidFromIdle(t *testing.T) {
	scanner := NewScanner(&fakeCamera{}, fakeDecoder{})

	scanner.SelectFile([]byte("uploaded"), "image/png")
	assert.Equal(t, StateReviewing, scanner.State())

	scanner.Confirm()
	event := receiveEvent(t, scanner)
	assert.Equal(t, domain.EventImageCaptured, event.Type)
	assert.Equal(t, []byte("uploaded"), event.Image)
	assert.Equal(t, "image/png", event.MIMEType)
}

func TestSelectFile_ReleasesHeldCamera(t *testing.T) {
	camera := &fakeCamera{}
	scanner := NewScanner(camera, fakeDecoder{})

	require.NoError(t, scanner.StartScanning(context.Background()))
	scanner.SelectFile([]byte("uploaded"), "image/png")

	assert.Equal(t, StateReviewing, scanner.State())
	assert.True(t, camera.session(0).isClosed())
}

func TestSelectFile_EmptyBytesIgnored(t *testing.T) {
	scanner := NewScanner(&fakeCamera{}, fakeDecoder{})

	scanner.SelectFile(nil, "")

	assert.Equal(t, StateIdle, scanner.State())
}

func TestRetake_ReturnsToBarcodeMode(t *testing.T) {
	camera := &fakeCamera{grabFrame: &domain.Frame{Data: []byte("still")}}
	scanner := NewScanner(camera, fakeDecoder{})

	require.NoError(t, scanner.StartScanning(context.Background()))
	scanner.CapturePhoto()
	require.Equal(t, StateReviewing, scanner.State())

	require.NoError(t, scanner.Retake(context.Background()))

	assert.Equal(t, StateScanningBarcode, scanner.State())
	assert.Equal(t, ModeBarcode, scanner.Mode())
	assert.Equal(t, 2, camera.openCount(), "retake re-acquires the camera")
	assertNoEvent(t, scanner)
}

func TestRetake_ReturnsToPhotoMode(t *testing.T) {
	camera := &fakeCamera{grabFrame: &domain.Frame{Data: []byte("still")}}
	scanner := NewScanner(camera, fakeDecoder{})

	require.NoError(t, scanner.SwitchMode(context.Background(), ModePhoto))
	require.Equal(t, StatePhotoCapture, scanner.State())

	scanner.CapturePhoto()
	require.Equal(t, StateReviewing, scanner.State())

	require.NoError(t, scanner.Retake(context.Background()))
	assert.Equal(t, StatePhotoCapture, scanner.State())
	assert.Equal(t, ModePhoto, scanner.Mode())
}

func TestRetake_OutsideReviewingIsNoOp(t *testing.T) {
	camera := &fakeCamera{}
	scanner := NewScanner(camera, fakeDecoder{})

	require.NoError(t, scanner.Retake(context.Background()))

	assert.Equal(t, StateIdle, scanner.State())
	assert.Zero(t, camera.openCount())
}

func TestSwitchMode_BarcodeToPhoto(t *testing.T) {
	camera := &fakeCamera{}
	scanner := NewScanner(camera, fakeDecoder{})

	require.NoError(t, scanner.StartScanning(context.Background()))
	require.NoError(t, scanner.SwitchMode(context.Background(), ModePhoto))

	assert.Equal(t, StatePhotoCapture, scanner.State())
	assert.Equal(t, ModePhoto, scanner.Mode())
	assert.True(t, camera.session(0).isClosed(), "old session released before mode switch")
	assert.Equal(t, 2, camera.openCount())
}

func TestSwitchMode_WhileReviewingIsNoOp(t *testing.T) {
	camera := &fakeCamera{}
	scanner := NewScanner(camera, fakeDecoder{})

	scanner.SelectFile([]byte("uploaded"), "image/png")
	require.NoError(t, scanner.SwitchMode(context.Background(), ModeBarcode))

	assert.Equal(t, StateReviewing, scanner.State())
	assert.Zero(t, camera.openCount())
}

func TestClose_ReleasesCamera(t *testing.T) {
	camera := &fakeCamera{}
	scanner := NewScanner(camera, fakeDecoder{})

	require.NoError(t, scanner.StartScanning(context.Background()))
	scanner.Close()

	assert.Equal(t, StateIdle, scanner.State())
	assert.True(t, camera.session(0).isClosed())
}

func TestDecodeFromStaleSessionIgnored(t *testing.T) {
	camera := &fakeCamera{}
	scanner := NewScanner(camera, fakeDecoder{})

	require.NoError(t, scanner.StartScanning(context.Background()))
	stale := camera.session(0)

	// Switching to photo mode abandons the first session before any decode.
	require.NoError(t, scanner.SwitchMode(context.Background(), ModePhoto))
	assert.True(t, stale.isClosed())

	assertNoEvent(t, scanner)
	assert.Equal(t, StatePhotoCapture, scanner.State())
}

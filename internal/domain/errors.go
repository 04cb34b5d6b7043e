package domain

import "errors"

var (
	// ErrProductNotFound is returned when the barcode database has no record
	// for the scanned code.
	ErrProductNotFound = errors.New("product not found in database")

	// ErrLookupFailure is returned when the barcode database request fails
	// at the transport or decoding level.
	ErrLookupFailure = errors.New("barcode lookup request failed")

	// ErrVisionAPIFailure is returned when the vision inference request fails
	// at the transport level or the backend returns an error status.
	ErrVisionAPIFailure = errors.New("vision inference request failed")

	// ErrExtraction is returned when the vision backend responded but no
	// product object could be parsed out of its text.
	ErrExtraction = errors.New("no product object in vision response")

	// ErrCameraUnavailable is returned when the camera device cannot be
	// acquired (missing hardware, permission denied).
	ErrCameraUnavailable = errors.New("camera unavailable")

	// ErrNoBarcode is returned by decoders for frames that contain no
	// readable barcode. Per-frame misses are expected and never surfaced.
	ErrNoBarcode = errors.New("no barcode in frame")

	// ErrInvalidRequest is returned when request parameters are invalid.
	ErrInvalidRequest = errors.New("invalid request parameters")
)

// ClassificationError is returned by the vision adapter when the backend
// answered successfully but classified the image as not a recognizable food
// label. Reason is the model's own message and is safe to show to the user.
type ClassificationError struct {
	Reason string
}

func (e *ClassificationError) Error() string {
	return e.Reason
}

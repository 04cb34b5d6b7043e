package domain

import "context"

// BarcodeLookup defines the interface for the structured barcode database.
type BarcodeLookup interface {
	GetProduct(ctx context.Context, barcode string) (*Product, error)
}

// VisionAnalyzer defines the interface for the AI vision backend that
// extracts a product record from a label photograph.
type VisionAnalyzer interface {
	AnalyzeImage(ctx context.Context, image []byte, mimeType string) (*Product, error)
}

// CameraDevice opens camera sessions. Exactly one session may be live at a
// time; the scanner state machine owns that invariant.
type CameraDevice interface {
	Open(ctx context.Context) (CameraSession, error)
}

// CameraSession is a live video feed. Frames delivers the continuous stream
// used for barcode decoding; Grab snapshots the current frame for photo
// capture. Close releases the device and closes the Frames channel.
type CameraSession interface {
	Frames() <-chan Frame
	Grab() (*Frame, error)
	Close() error
}

// BarcodeDecoder decodes a single frame. It returns ErrNoBarcode for frames
// without a readable code.
type BarcodeDecoder interface {
	Decode(frame Frame) (string, error)
}

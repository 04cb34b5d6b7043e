package domain

// Category is the closed product taxonomy every resolved product is mapped onto.
type Category string

const (
	CategoryBeverage Category = "Beverage"
	CategorySnack    Category = "Snack"
	CategoryDairy    Category = "Dairy"
	CategoryGrain    Category = "Grain"
	CategoryMeat     Category = "Meat"
	CategoryFrozen   Category = "Frozen"
	CategoryCanned   Category = "Canned"
	CategoryOther    Category = "Other"
)

// Nutrition holds the eight canonical nutrient values, all per 100 g / 100 ml.
type Nutrition struct {
	Energy        float64 `json:"energy"` // kcal
	Protein       float64 `json:"protein"`
	Carbohydrates float64 `json:"carbohydrates"`
	Sugar         float64 `json:"sugar"`
	Fat           float64 `json:"fat"`
	SaturatedFat  float64 `json:"saturated_fat"`
	Fiber         float64 `json:"fiber"`
	Salt          float64 `json:"salt"`
}

// Product is the canonical record produced by both resolution sources.
// Every field is populated after the adapter step: missing source data is
// defaulted, never left absent or mistyped.
type Product struct {
	Name        string    `json:"name"`
	Brand       string    `json:"brand"`
	Category    Category  `json:"category"`
	ServingSize string    `json:"serving_size"`
	Image       *string   `json:"image"` // never populated by the vision source
	Nutrition   Nutrition `json:"nutrition"`
	Ingredients string    `json:"ingredients"`
	Additives   []string  `json:"additives"`   // E-codes, uppercase, source order
	NovaGroup   int       `json:"nova_group"`  // 1-4, default 3
	NutriScore  *string   `json:"nutri_score"` // A-E or null
	Allergens   []string  `json:"allergens"`
}

// Resolution sources.
const (
	SourceDatabase = "database"
	SourceVision   = "vision"
)

// ResolutionResult is the uniform outcome of a resolution request.
// Exactly one of Product/Error is meaningful: Product on success, Error (a short
// user-facing message, never a raw transport error) on failure.
type ResolutionResult struct {
	Success bool     `json:"success"`
	Source  string   `json:"source,omitempty"`
	Product *Product `json:"product,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Frame is a single still image grabbed from a camera session.
type Frame struct {
	Data     []byte
	MIMEType string
}

// AcquisitionEventType discriminates the two outcomes of the capture flow.
type AcquisitionEventType string

const (
	EventBarcodeDetected AcquisitionEventType = "barcode_detected"
	EventImageCaptured   AcquisitionEventType = "image_captured"
)

// AcquisitionEvent is emitted by the scanner state machine once per successful
// scan or confirmed capture. Barcode events carry Code; image events carry
// Image bytes plus their MIME type.
type AcquisitionEvent struct {
	Type     AcquisitionEventType
	Code     string
	Image    []byte
	MIMEType string
}

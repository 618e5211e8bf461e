package types

// ProductDescription is the catalogue metadata a vision model proposes
// for a cropped product image
type ProductDescription struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	// Fallback is set when the model reply could not be used
	Fallback bool `json:"fallback,omitempty"`
}

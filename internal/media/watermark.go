package media

// Brand is stamped on every video-derived artifact.
const Brand = "Mansio"

// Watermark carries the metadata composited onto video outputs and echoed in
// responses. Image artifacts never carry one.
type Watermark struct {
	User      string `json:"user"`
	Timestamp string `json:"timestamp"`
	Brand     string `json:"brand"`
}

// NewWatermark builds a Watermark with the fixed brand.
func NewWatermark(user, timestamp string) Watermark {
	return Watermark{User: user, Timestamp: timestamp, Brand: Brand}
}

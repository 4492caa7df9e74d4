package render

// Bucket classifies an engagement score for colouring.
type Bucket string

const (
	BucketPositive Bucket = "positive"
	BucketWarning  Bucket = "warning"
	BucketNegative Bucket = "negative"
)

// EngagementBucket returns positive above 50, warning above 25 and negative otherwise.
func EngagementBucket(score float64) Bucket {
	switch {
	case score > 50:
		return BucketPositive
	case score > 25:
		return BucketWarning
	default:
		return BucketNegative
	}
}

// bootstrapClass returns the progress bar class for a bucket.
func (b Bucket) bootstrapClass() string {
	switch b {
	case BucketPositive:
		return "bg-success"
	case BucketWarning:
		return "bg-warning"
	default:
		return "bg-danger"
	}
}

// clampPercent keeps a score inside the 0..100 progress range.
func clampPercent(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

package course

// LowAccuracyThreshold is the confidence score below which an extracted
// record is surfaced as low confidence. 80 itself is not low (strict <).
const LowAccuracyThreshold = 80.0

// IsLowConfidence reports whether a record should be flagged for review.
// An explicit flag from the extraction service wins over the numeric
// threshold, so upstream can flag cases the score does not capture.
// Low-confidence records are kept, never dropped.
func IsLowConfidence(accuracy float64, explicitLow bool) bool {
	return explicitLow || accuracy < LowAccuracyThreshold
}

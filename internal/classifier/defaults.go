package classifier

// Values reported when an analyzer cannot produce an answer: the detector is
// unavailable, found nothing, the image did not decode, or the analyzer
// panicked. Classification never fails; it falls back to these.
const (
	DefaultHasClosedEyes      = false
	DefaultNotLookingAtCamera = false
	DefaultIsGroupPhoto       = false
	DefaultIsBlurry           = false
	DefaultBlurScore          = 0.0
	DefaultIsCentered         = true
	DefaultCenterDistance     = 0.0

	// NoSubjectConfidence is reported by AnalyzeCentering when nothing was
	// detected; FailedCenteringConfidence when the analysis itself failed.
	NoSubjectConfidence       = 0.5
	FailedCenteringConfidence = 0.0
)

// DefaultBlur is the blur result for an image that could not be analyzed.
var DefaultBlur = BlurResult{IsBlurry: DefaultIsBlurry, BlurScore: DefaultBlurScore}

// DefaultCentering is the composition result for a failed analysis.
var DefaultCentering = CenterResult{
	IsCentered: DefaultIsCentered,
	Distance:   DefaultCenterDistance,
	Confidence: FailedCenteringConfidence,
}

// DefaultResult is returned for an image nothing could be learned from.
func DefaultResult() ClassificationResult {
	return ClassificationResult{
		HasClosedEyes:      DefaultHasClosedEyes,
		NotLookingAtCamera: DefaultNotLookingAtCamera,
		IsGroupPhoto:       DefaultIsGroupPhoto,
		IsBlurry:           DefaultIsBlurry,
		BlurScore:          DefaultBlurScore,
		IsCentered:         DefaultIsCentered,
		CenterDistance:     DefaultCenterDistance,
	}
}

package models

// AnalysisType selects what an AI decision or analysis asks the classifier
// to do.
type AnalysisType string

const (
	AnalysisSentiment         AnalysisType = "sentiment"
	AnalysisContentModeration AnalysisType = "content_moderation"
	AnalysisIntentDetection   AnalysisType = "intent_detection"
)

// ClassificationUncertain is the label an ai_decision resolves to when the
// classifier's confidence falls below the configured threshold, so graphs can
// route low-confidence results explicitly.
const ClassificationUncertain = "uncertain"

// KnownLabels returns the closed label set for the analysis type, or nil when
// the labels are free-form (intent detection).
func (t AnalysisType) KnownLabels() []string {
	switch t {
	case AnalysisSentiment:
		return []string{"positive", "negative", "neutral"}
	case AnalysisContentModeration:
		return []string{"inappropriate", "safe"}
	default:
		return nil
	}
}

package collaborators

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/weftlabs/weft/pkg/actions"
	"github.com/weftlabs/weft/pkg/models"
)

// LexiconClassifier scores text against fixed keyword lexicons. It is the
// built-in stand-in for a model-backed classifier: deterministic, instant,
// and conservative enough that single weak signals stay below the usual
// decision thresholds and route through the uncertain path.
type LexiconClassifier struct{}

func NewLexiconClassifier() *LexiconClassifier {
	return &LexiconClassifier{}
}

var (
	positiveWords = []string{
		"great", "good", "love", "thanks", "thank", "awesome", "perfect",
		"happy", "excellent", "wonderful", "amazing", "best",
	}
	negativeWords = []string{
		"bad", "terrible", "awful", "hate", "angry", "broken", "worst",
		"disappointed", "unacceptable", "refund", "useless", "horrible",
	}
	flaggedWords = []string{
		"spam", "scam", "fraud", "abuse", "idiot", "stupid", "hate", "kill",
	}
)

// intents are matched in declaration order; the first strictly-best score
// wins, so ties resolve deterministically.
var intents = []struct {
	label string
	words []string
}{
	{"question", []string{"how", "what", "why", "when", "where", "help", "can"}},
	{"purchase", []string{"buy", "price", "order", "purchase", "subscribe", "upgrade"}},
	{"complaint", []string{"refund", "broken", "cancel", "complaint", "angry", "disappointed"}},
	{"greeting", []string{"hello", "hi", "hey", "thanks", "thank"}},
}

func (c *LexiconClassifier) Classify(_ context.Context, text string, analysisType models.AnalysisType) (actions.Classification, error) {
	tokens := tokenize(text)

	switch analysisType {
	case models.AnalysisSentiment:
		return classifySentiment(tokens), nil
	case models.AnalysisContentModeration:
		return classifyModeration(tokens), nil
	case models.AnalysisIntentDetection:
		return classifyIntent(tokens), nil
	default:
		return actions.Classification{}, fmt.Errorf("unsupported analysis type %q", analysisType)
	}
}

func classifySentiment(tokens map[string]int) actions.Classification {
	positive := countHits(tokens, positiveWords)
	negative := countHits(tokens, negativeWords)

	if positive == negative {
		return actions.Classification{Label: "neutral", Confidence: 0.5}
	}

	label := "positive"
	if negative > positive {
		label = "negative"
	}

	return actions.Classification{
		Label:      label,
		Confidence: hitConfidence(positive, negative),
	}
}

func classifyModeration(tokens map[string]int) actions.Classification {
	flagged := countHits(tokens, flaggedWords)
	if flagged == 0 {
		return actions.Classification{Label: "safe", Confidence: 0.9}
	}

	return actions.Classification{
		Label:      "inappropriate",
		Confidence: hitConfidence(flagged, 0),
	}
}

func classifyIntent(tokens map[string]int) actions.Classification {
	bestLabel := ""
	bestHits := 0

	for _, intent := range intents {
		if hits := countHits(tokens, intent.words); hits > bestHits {
			bestLabel = intent.label
			bestHits = hits
		}
	}

	if bestHits == 0 {
		return actions.Classification{Label: "general", Confidence: 0.4}
	}

	return actions.Classification{
		Label:      bestLabel,
		Confidence: hitConfidence(bestHits, 0),
	}
}

// hitConfidence maps a hit margin to (0.5, 0.95]. One isolated hit lands at
// 0.725, below the common 0.75 threshold; two or more agreeing hits clear it.
func hitConfidence(hits, opposing int) float64 {
	diff := hits - opposing
	if diff < 0 {
		diff = -diff
	}

	return 0.5 + 0.45*float64(diff)/float64(hits+opposing+1)
}

func tokenize(text string) map[string]int {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	tokens := make(map[string]int, len(fields))
	for _, field := range fields {
		tokens[field]++
	}

	return tokens
}

func countHits(tokens map[string]int, lexicon []string) int {
	hits := 0
	for _, word := range lexicon {
		hits += tokens[word]
	}

	return hits
}

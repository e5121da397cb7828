// Package sentiment scores free text on a polarity scale from -1 (negative) to 1 (positive).
package sentiment

import (
	"math"

	"github.com/de-tools/report-atlas/pkg/services/textproc"
)

// Scorer assigns a polarity in [-1, 1] to a piece of text. Empty text scores 0.
type Scorer interface {
	Score(text string) float64
}

// LexiconScorer averages the polarity of known words. A negator flips and damps the
// next scored word; an intensifier scales it.
type LexiconScorer struct {
	lexicon      map[string]float64
	negators     map[string]struct{}
	intensifiers map[string]float64
}

// NewLexiconScorer returns a scorer using the built-in review lexicon.
func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{
		lexicon:      defaultLexicon,
		negators:     defaultNegators,
		intensifiers: defaultIntensifiers,
	}
}

func (s *LexiconScorer) Score(text string) float64 {
	tokens := textproc.Tokenize(textproc.CleanText(text))

	var (
		sum      float64
		n        int
		negate   bool
		modifier = 1.0
	)
	for _, tok := range tokens {
		if _, ok := s.negators[tok]; ok {
			negate = true
			continue
		}
		if m, ok := s.intensifiers[tok]; ok {
			modifier *= m
			continue
		}
		polarity, ok := s.lexicon[tok]
		if !ok {
			continue
		}
		polarity *= modifier
		if negate {
			polarity *= -0.5
		}
		sum += clamp(polarity)
		n++
		negate = false
		modifier = 1.0
	}
	if n == 0 {
		return 0
	}
	return clamp(sum / float64(n))
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

var defaultNegators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "nothing": {}, "hardly": {}, "dont": {}, "didnt": {},
	"wasnt": {}, "isnt": {}, "werent": {}, "cant": {}, "couldnt": {}, "wont": {},
}

var defaultIntensifiers = map[string]float64{
	"very": 1.3, "really": 1.3, "extremely": 1.5, "super": 1.3, "so": 1.2, "totally": 1.3,
	"quite": 1.1, "slightly": 0.6, "somewhat": 0.7, "bit": 0.7,
}

var defaultLexicon = map[string]float64{
	"amazing": 0.6, "awesome": 1.0, "beautiful": 0.85, "best": 1.0, "clean": 0.37,
	"comfortable": 0.4, "convenient": 0.3, "delicious": 1.0, "easy": 0.43, "efficient": 0.4,
	"enjoyed": 0.5, "excellent": 1.0, "fantastic": 0.4, "fast": 0.2, "friendly": 0.38,
	"good": 0.7, "great": 0.8, "happy": 0.8, "helpful": 0.5, "love": 0.5, "loved": 0.7,
	"lovely": 0.5, "nice": 0.6, "perfect": 1.0, "pleasant": 0.73, "polite": 0.3,
	"quick": 0.33, "recommend": 0.4, "smooth": 0.4, "spacious": 0.3, "superb": 1.0,
	"wonderful": 1.0, "worth": 0.3, "ok": 0.5, "okay": 0.5, "fine": 0.42, "fun": 0.3,
	"affordable": 0.3, "seamless": 0.5, "thanks": 0.2, "professional": 0.1,

	"awful": -1.0, "bad": -0.7, "boring": -1.0, "broken": -0.4, "cancelled": -0.3,
	"cold": -0.6, "confusing": -0.3, "delayed": -0.4, "dirty": -0.6, "disappointed": -0.75,
	"disappointing": -0.6, "expensive": -0.5, "horrible": -1.0, "late": -0.3, "lost": -0.4,
	"mediocre": -0.5, "noisy": -0.4, "overpriced": -0.6, "poor": -0.4, "rude": -0.3,
	"slow": -0.3, "small": -0.25, "terrible": -1.0, "unhelpful": -0.5, "uncomfortable": -0.5,
	"unprofessional": -0.5, "worst": -1.0, "wrong": -0.5, "hate": -0.8, "hated": -0.9,
	"crowded": -0.3, "smelly": -0.6, "stale": -0.5, "refund": -0.1, "problem": -0.3,
	"issue": -0.2, "issues": -0.2,
}

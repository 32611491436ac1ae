// Package sentiment labels short texts such as news headlines as positive,
// negative or neutral using the VADER lexicon.
package sentiment

import (
	"time"

	"github.com/jonreiter/govader"
	"github.com/patrickmn/go-cache"

	"golang-stock-sentiment/pkg/common"
)

// Label is a coarse sentiment class.
type Label string

const (
	Positive Label = common.SentimentPositive
	Negative Label = common.SentimentNegative
	Neutral  Label = common.SentimentNeutral
)

// Threshold is the absolute compound score at or beyond which a text stops being neutral.
const Threshold = 0.05

// Valid reports whether l is one of the three known labels.
func (l Label) Valid() bool {
	return l == Positive || l == Negative || l == Neutral
}

// Score maps a label onto the integer used for aggregation.
func (l Label) Score() int {
	switch l {
	case Positive:
		return 1
	case Negative:
		return -1
	default:
		return 0
	}
}

// LabelFromScore thresholds a compound score in [-1, 1].
func LabelFromScore(score float64) Label {
	switch {
	case score >= Threshold:
		return Positive
	case score <= -Threshold:
		return Negative
	default:
		return Neutral
	}
}

// Aggregate averages label scores and applies the same threshold as LabelFromScore.
// An empty slice is neutral.
func Aggregate(labels []Label) Label {
	if len(labels) == 0 {
		return Neutral
	}
	sum := 0
	for _, l := range labels {
		sum += l.Score()
	}
	return LabelFromScore(float64(sum) / float64(len(labels)))
}

// Classifier labels a piece of text.
type Classifier interface {
	Classify(text string) Label
}

// Result is the outcome of analysing a text.
type Result struct {
	Label    Label
	Compound float64
}

// Analyzer is a Classifier backed by VADER. It is safe for concurrent use.
type Analyzer struct {
	vader *govader.SentimentIntensityAnalyzer
	memo  *cache.Cache
}

// NewAnalyzer builds an Analyzer. Scores are memoised for memoTTL; a zero TTL disables memoisation.
func NewAnalyzer(memoTTL time.Duration) *Analyzer {
	a := &Analyzer{vader: govader.NewSentimentIntensityAnalyzer()}
	if memoTTL > 0 {
		a.memo = cache.New(memoTTL, 2*memoTTL)
	}
	return a
}

// Analyze returns the compound score and its label.
func (a *Analyzer) Analyze(text string) Result {
	if a.memo != nil {
		if cached, ok := a.memo.Get(text); ok {
			return cached.(Result)
		}
	}

	compound := a.vader.PolarityScores(text).Compound
	res := Result{Label: LabelFromScore(compound), Compound: compound}

	if a.memo != nil {
		a.memo.SetDefault(text, res)
	}
	return res
}

// Classify implements Classifier.
func (a *Analyzer) Classify(text string) Label {
	return a.Analyze(text).Label
}

// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

// Package sentiment scores free-text student check-ins.
//
// The analyzer combines a lexicon-based polarity model with two fixed keyword
// vocabularies (stress indicators and positive indicators) that shift the
// base polarity before classification. Scoring never fails: empty input
// degrades to a neutral default.
//
// Results are cached by exact input text for the lifetime of the process.
// The cache is append-only and idempotent under concurrent insertion, since
// scoring is deterministic for identical input.
package sentiment

import (
	"math"
	"strings"
	"sync"

	"github.com/edulens/edulens/internal/metrics"
)

// Label is the 3-way sentiment classification.
type Label string

const (
	Positive Label = "Positive"
	Neutral  Label = "Neutral"
	Negative Label = "Negative"
)

// Fixed keyword vocabularies. Match order in results follows list order.
var (
	// stressKeywords indicate stress or concern in a check-in.
	stressKeywords = []string{
		"stressed", "anxious", "worried", "overwhelmed", "struggling",
		"difficult", "hard", "failing", "depressed", "hopeless",
		"scared", "confused", "lost", "behind", "pressure",
		"tired", "exhausted", "burnout", "frustrated", "discouraged",
		"dropout", "quit", "hate", "terrible", "worst",
	}

	// positiveKeywords indicate a positive mental state.
	positiveKeywords = []string{
		"happy", "excited", "confident", "motivated", "accomplished",
		"great", "excellent", "love", "enjoy", "fantastic",
		"proud", "satisfied", "optimistic", "wonderful", "amazing",
		"successful", "achieved", "grateful", "positive", "engaged",
	}
)

// keywordShift is how much each matched indicator shifts the base polarity.
const keywordShift = 0.15

// Result is the outcome of scoring one text.
type Result struct {
	Sentiment          Label    `json:"sentiment"`
	Polarity           float64  `json:"polarity"`
	Subjectivity       float64  `json:"subjectivity"`
	StressIndicators   []string `json:"stress_indicators"`
	PositiveIndicators []string `json:"positive_indicators"`
	Confidence         float64  `json:"confidence"`
}

// BatchSummary aggregates the scoring of multiple texts.
type BatchSummary struct {
	TotalAnalyzed int `json:"total_analyzed"`

	// Distribution counts results per sentiment class.
	Distribution map[Label]int `json:"sentiment_distribution"`

	AveragePolarity float64 `json:"average_polarity"`

	// CommonStressIndicators is the deduplicated union of stress
	// indicators across the batch, in fixed-vocabulary order.
	CommonStressIndicators []string `json:"common_stress_indicators"`

	// CommonPositiveIndicators is the deduplicated union of positive
	// indicators across the batch, in fixed-vocabulary order.
	CommonPositiveIndicators []string `json:"common_positive_indicators"`

	Individual []Result `json:"individual_results"`
}

// Analyzer scores text and caches results. Safe for concurrent use.
type Analyzer struct {
	mu    sync.RWMutex
	cache map[string]Result
}

// NewAnalyzer creates an analyzer with an empty cache.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		cache: make(map[string]Result),
	}
}

// neutralResult is the fixed default for empty or blank input.
func neutralResult() Result {
	return Result{
		Sentiment:          Neutral,
		Polarity:           0,
		Subjectivity:       0,
		StressIndicators:   []string{},
		PositiveIndicators: []string{},
		Confidence:         0.5,
	}
}

// Analyze scores one text. It never fails: empty or whitespace-only input
// returns the neutral default. Repeated calls with identical text return the
// cached result.
func (a *Analyzer) Analyze(text string) Result {
	if strings.TrimSpace(text) == "" {
		return neutralResult()
	}

	a.mu.RLock()
	cached, ok := a.cache[text]
	a.mu.RUnlock()
	if ok {
		metrics.SentimentCacheHits.Inc()
		return cached
	}
	metrics.SentimentCacheMisses.Inc()

	normalized := normalize(text)

	polarity, subjectivity := scoreText(normalized)
	stress := findKeywords(normalized, stressKeywords)
	positive := findKeywords(normalized, positiveKeywords)

	label, confidence := classify(polarity, len(stress), len(positive))

	result := Result{
		Sentiment:          label,
		Polarity:           round3(polarity),
		Subjectivity:       round3(subjectivity),
		StressIndicators:   stress,
		PositiveIndicators: positive,
		Confidence:         round3(confidence),
	}

	// Last-writer-wins is fine under concurrent insertion: identical input
	// always produces identical results.
	a.mu.Lock()
	a.cache[text] = result
	metrics.SentimentCacheSize.Set(float64(len(a.cache)))
	a.mu.Unlock()

	return result
}

// AnalyzeBatch scores each text independently and aggregates the results.
func (a *Analyzer) AnalyzeBatch(texts []string) BatchSummary {
	summary := BatchSummary{
		Distribution:             map[Label]int{Positive: 0, Neutral: 0, Negative: 0},
		CommonStressIndicators:   []string{},
		CommonPositiveIndicators: []string{},
		Individual:               make([]Result, 0, len(texts)),
	}

	stressSeen := make(map[string]struct{})
	positiveSeen := make(map[string]struct{})

	var polaritySum float64
	for _, text := range texts {
		result := a.Analyze(text)
		summary.Individual = append(summary.Individual, result)
		summary.Distribution[result.Sentiment]++
		polaritySum += result.Polarity

		for _, kw := range result.StressIndicators {
			stressSeen[kw] = struct{}{}
		}
		for _, kw := range result.PositiveIndicators {
			positiveSeen[kw] = struct{}{}
		}
	}

	summary.TotalAnalyzed = len(summary.Individual)
	if summary.TotalAnalyzed > 0 {
		summary.AveragePolarity = round3(polaritySum / float64(summary.TotalAnalyzed))
	}

	// Report unions in vocabulary order so output is deterministic.
	for _, kw := range stressKeywords {
		if _, ok := stressSeen[kw]; ok {
			summary.CommonStressIndicators = append(summary.CommonStressIndicators, kw)
		}
	}
	for _, kw := range positiveKeywords {
		if _, ok := positiveSeen[kw]; ok {
			summary.CommonPositiveIndicators = append(summary.CommonPositiveIndicators, kw)
		}
	}

	return summary
}

// MentalHealthScore maps a result to a 1 (very concerning) to 10 (excellent)
// wellbeing score.
func MentalHealthScore(r Result) int {
	score := 5.5 + r.Polarity*2.5
	score -= float64(len(r.StressIndicators)) * 0.5
	score += float64(len(r.PositiveIndicators)) * 0.3
	return int(clamp(math.Round(score), 1, 10))
}

// MentalHealthLabel maps a wellbeing score to its 4-tier label.
func MentalHealthLabel(score int) string {
	switch {
	case score <= 3:
		return "Concerning - Seek support"
	case score <= 5:
		return "Fair - Monitor closely"
	case score <= 7:
		return "Good - Maintain balance"
	default:
		return "Excellent - Keep it up"
	}
}

// normalize lowercases the text, strips characters outside alphanumerics,
// spaces and basic punctuation (.,!?), and collapses whitespace.
func normalize(text string) string {
	lower := strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == ',', r == '!', r == '?':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '\r':
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// findKeywords returns the vocabulary entries contained in the normalized
// text, in vocabulary order.
func findKeywords(normalized string, vocabulary []string) []string {
	found := []string{}
	for _, kw := range vocabulary {
		if strings.Contains(normalized, kw) {
			found = append(found, kw)
		}
	}
	return found
}

// classify applies keyword boosting to the base polarity and derives the
// sentiment label and confidence.
func classify(polarity float64, stressCount, positiveCount int) (Label, float64) {
	adjusted := polarity - float64(stressCount)*keywordShift + float64(positiveCount)*keywordShift
	adjusted = clamp(adjusted, -1, 1)

	var label Label
	var confidence float64
	switch {
	case adjusted > 0.1:
		label = Positive
		confidence = math.Min(0.9, 0.5+math.Abs(adjusted)*0.4)
	case adjusted < -0.1:
		label = Negative
		confidence = math.Min(0.9, 0.5+math.Abs(adjusted)*0.4)
	default:
		label = Neutral
		confidence = 0.5 + (0.1-math.Abs(adjusted))*2
	}

	// Boost confidence when >= 2 keywords support the winning label.
	if label == Negative && stressCount >= 2 {
		confidence = math.Min(0.95, confidence+0.1)
	}
	if label == Positive && positiveCount >= 2 {
		confidence = math.Min(0.95, confidence+0.1)
	}

	return label, confidence
}

// round3 rounds to three decimal places for stable JSON output.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

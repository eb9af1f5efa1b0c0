// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

package sentiment

import (
	"reflect"
	"sync"
	"testing"
)

func TestAnalyzeClassification(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		want       Label
		wantStress []string
	}{
		{
			name: "blank input is neutral",
			text: "   ",
			want: Neutral,
		},
		{
			name: "positive with supporting keywords",
			text: "I am happy and excited about my progress",
			want: Positive,
		},
		{
			name:       "negative with stress keywords",
			text:       "I am stressed and overwhelmed",
			want:       Negative,
			wantStress: []string{"stressed", "overwhelmed"},
		},
		{
			name: "no sentiment words is neutral",
			text: "the class meets on mondays in room 204",
			want: Neutral,
		},
		{
			name: "negation flips polarity",
			text: "not happy with the results",
			want: Negative,
		},
		{
			name: "punctuation and case are ignored",
			text: "This course is GREAT!! I love it.",
			want: Positive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnalyzer()
			got := a.Analyze(tt.text)

			if got.Sentiment != tt.want {
				t.Errorf("Analyze(%q).Sentiment = %v (polarity %v), want %v",
					tt.text, got.Sentiment, got.Polarity, tt.want)
			}
			if got.Confidence < 0.5 || got.Confidence > 0.95 {
				t.Errorf("confidence %v out of [0.5, 0.95]", got.Confidence)
			}
			if tt.wantStress != nil && !reflect.DeepEqual(got.StressIndicators, tt.wantStress) {
				t.Errorf("stress indicators = %v, want %v", got.StressIndicators, tt.wantStress)
			}
		})
	}
}

func TestAnalyzeNeutralConfidence(t *testing.T) {
	a := NewAnalyzer()

	// No lexicon matches and no keywords: adjusted polarity is exactly 0,
	// so confidence is 0.5 + 0.1*2.
	got := a.Analyze("the lecture hall was renovated last semester")
	if got.Sentiment != Neutral {
		t.Fatalf("sentiment = %v, want Neutral", got.Sentiment)
	}
	if got.Confidence != 0.7 {
		t.Errorf("confidence = %v, want 0.7", got.Confidence)
	}
}

func TestAnalyzeKeywordBoostCapsConfidence(t *testing.T) {
	a := NewAnalyzer()

	got := a.Analyze("I am stressed and overwhelmed, totally exhausted and hopeless")
	if got.Sentiment != Negative {
		t.Fatalf("sentiment = %v, want Negative", got.Sentiment)
	}
	if got.Confidence != 0.95 {
		t.Errorf("confidence = %v, want capped 0.95", got.Confidence)
	}
	if len(got.StressIndicators) < 2 {
		t.Errorf("stress indicators = %v, want at least 2", got.StressIndicators)
	}
}

func TestAnalyzeCacheIdempotent(t *testing.T) {
	a := NewAnalyzer()
	text := "I am worried about failing the exam"

	first := a.Analyze(text)
	second := a.Analyze(text)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached result differs: first %+v, second %+v", first, second)
	}
}

func TestAnalyzeConcurrent(t *testing.T) {
	a := NewAnalyzer()
	texts := []string{
		"I am happy and motivated",
		"feeling stressed and anxious",
		"nothing to report",
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, text := range texts {
				a.Analyze(text)
			}
		}()
	}
	wg.Wait()

	for _, text := range texts {
		got := a.Analyze(text)
		if got.Sentiment == "" {
			t.Errorf("Analyze(%q) returned empty sentiment after concurrent use", text)
		}
	}
}

func TestAnalyzeBatch(t *testing.T) {
	a := NewAnalyzer()
	texts := []string{
		"I am happy and excited to learn",
		"feeling stressed and overwhelmed lately",
		"",
	}

	got := a.AnalyzeBatch(texts)

	if got.TotalAnalyzed != 3 {
		t.Errorf("TotalAnalyzed = %d, want 3", got.TotalAnalyzed)
	}
	if got.Distribution[Positive] != 1 || got.Distribution[Negative] != 1 || got.Distribution[Neutral] != 1 {
		t.Errorf("distribution = %v, want one of each class", got.Distribution)
	}
	if !reflect.DeepEqual(got.CommonStressIndicators, []string{"stressed", "overwhelmed"}) {
		t.Errorf("common stress indicators = %v, want [stressed overwhelmed]", got.CommonStressIndicators)
	}
	if len(got.Individual) != 3 {
		t.Errorf("individual results = %d, want 3", len(got.Individual))
	}
}

func TestAnalyzeBatchEmpty(t *testing.T) {
	a := NewAnalyzer()
	got := a.AnalyzeBatch(nil)

	if got.TotalAnalyzed != 0 {
		t.Errorf("TotalAnalyzed = %d, want 0", got.TotalAnalyzed)
	}
	if got.AveragePolarity != 0 {
		t.Errorf("AveragePolarity = %v, want 0", got.AveragePolarity)
	}
}

func TestMentalHealthScore(t *testing.T) {
	tests := []struct {
		name string
		r    Result
		want int
	}{
		{"fully positive polarity", Result{Polarity: 1}, 8},
		{"neutral", Result{Polarity: 0}, 6},
		{"negative with heavy stress", Result{
			Polarity:         -1,
			StressIndicators: []string{"stressed", "hopeless", "exhausted", "worried"},
		}, 1},
		{"positive indicators lift the score", Result{
			Polarity:           0.5,
			PositiveIndicators: []string{"happy", "motivated"},
		}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MentalHealthScore(tt.r); got != tt.want {
				t.Errorf("MentalHealthScore(%+v) = %d, want %d", tt.r, got, tt.want)
			}
		})
	}
}

func TestMentalHealthLabel(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{1, "Concerning - Seek support"},
		{3, "Concerning - Seek support"},
		{4, "Fair - Monitor closely"},
		{5, "Fair - Monitor closely"},
		{6, "Good - Maintain balance"},
		{7, "Good - Maintain balance"},
		{8, "Excellent - Keep it up"},
		{10, "Excellent - Keep it up"},
	}

	for _, tt := range tests {
		if got := MentalHealthLabel(tt.score); got != tt.want {
			t.Errorf("MentalHealthLabel(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello,  World!", "hello, world!"},
		{"UPPER case", "upper case"},
		{"emoji ❤ stripped", "emoji stripped"},
		{"tabs\tand\nnewlines", "tabs and newlines"},
	}

	for _, tt := range tests {
		if got := normalize(tt.in); got != tt.want {
			t.Errorf("normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

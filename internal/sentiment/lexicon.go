// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

package sentiment

import "strings"

// valence is one lexicon entry: a base polarity in [-1, 1] and a
// subjectivity weight in [0, 1].
type valence struct {
	polarity     float64
	subjectivity float64
}

// lexicon maps sentiment-bearing words to their base valence. Entries cover
// the vocabulary that shows up in student check-ins: affect words, academic
// outcome words, and common evaluative adjectives.
var lexicon = map[string]valence{
	// Strong positive
	"amazing":     {0.9, 0.9},
	"awesome":     {0.9, 0.9},
	"excellent":   {0.9, 0.8},
	"fantastic":   {0.9, 0.9},
	"wonderful":   {0.9, 0.9},
	"perfect":     {0.9, 0.8},
	"love":        {0.8, 0.7},
	"great":       {0.8, 0.8},
	"happy":       {0.8, 0.9},
	"excited":     {0.7, 0.8},
	"thrilled":    {0.8, 0.9},
	"delighted":   {0.8, 0.9},
	"proud":       {0.7, 0.8},
	"confident":   {0.6, 0.7},
	"motivated":   {0.6, 0.7},
	"optimistic":  {0.6, 0.7},
	"grateful":    {0.7, 0.8},
	"enjoy":       {0.6, 0.6},
	"enjoyed":     {0.6, 0.6},
	"fun":         {0.6, 0.7},
	"good":        {0.5, 0.6},
	"nice":        {0.5, 0.6},
	"better":      {0.4, 0.5},
	"improved":    {0.5, 0.5},
	"improving":   {0.5, 0.5},
	"well":        {0.4, 0.4},
	"fine":        {0.3, 0.4},
	"okay":        {0.2, 0.4},
	"ok":          {0.2, 0.4},
	"calm":        {0.3, 0.5},
	"relaxed":     {0.4, 0.6},
	"rested":      {0.4, 0.5},
	"successful":  {0.7, 0.6},
	"succeeded":   {0.7, 0.6},
	"passed":      {0.5, 0.4},
	"achieved":    {0.6, 0.5},
	"progress":    {0.4, 0.4},
	"helpful":     {0.5, 0.5},
	"interesting": {0.5, 0.6},
	"engaged":     {0.5, 0.5},

	// Strong negative
	"terrible":    {-0.9, 0.9},
	"horrible":    {-0.9, 0.9},
	"awful":       {-0.9, 0.9},
	"worst":       {-1.0, 0.9},
	"hate":        {-0.8, 0.8},
	"hopeless":    {-0.9, 0.9},
	"depressed":   {-0.8, 0.9},
	"miserable":   {-0.8, 0.9},
	"devastated":  {-0.9, 0.9},
	"failing":     {-0.7, 0.7},
	"failed":      {-0.7, 0.6},
	"fail":        {-0.6, 0.6},
	"bad":         {-0.6, 0.7},
	"sad":         {-0.6, 0.8},
	"unhappy":     {-0.6, 0.8},
	"upset":       {-0.6, 0.8},
	"angry":       {-0.7, 0.8},
	"stressed":    {-0.6, 0.8},
	"stressful":   {-0.6, 0.8},
	"anxious":     {-0.6, 0.8},
	"worried":     {-0.5, 0.8},
	"overwhelmed": {-0.7, 0.8},
	"exhausted":   {-0.6, 0.7},
	"tired":       {-0.4, 0.6},
	"struggling":  {-0.6, 0.7},
	"difficult":   {-0.5, 0.6},
	"hard":        {-0.3, 0.5},
	"confused":    {-0.4, 0.6},
	"lost":        {-0.4, 0.6},
	"scared":      {-0.6, 0.8},
	"afraid":      {-0.6, 0.8},
	"lonely":      {-0.6, 0.8},
	"frustrated":  {-0.6, 0.8},
	"discouraged": {-0.6, 0.8},
	"pressure":    {-0.4, 0.6},
	"behind":      {-0.3, 0.4},
	"worse":       {-0.5, 0.6},
	"poor":        {-0.5, 0.6},
	"boring":      {-0.5, 0.7},
	"useless":     {-0.7, 0.8},
	"quit":        {-0.5, 0.5},
	"burnout":     {-0.7, 0.8},
}

// negators flip and dampen the polarity of the following sentiment word.
var negators = map[string]struct{}{
	"not":     {},
	"no":      {},
	"never":   {},
	"nothing": {},
	"cant":    {},
	"cannot":  {},
	"dont":    {},
	"didnt":   {},
	"wont":    {},
	"isnt":    {},
	"wasnt":   {},
	"arent":   {},
	"hardly":  {},
	"barely":  {},
}

// intensifiers scale the polarity of the following sentiment word.
var intensifiers = map[string]float64{
	"very":       1.3,
	"really":     1.3,
	"so":         1.2,
	"extremely":  1.5,
	"incredibly": 1.5,
	"totally":    1.3,
	"completely": 1.3,
	"quite":      1.1,
	"too":        1.2,
	"super":      1.3,
}

// negationFactor is applied when a sentiment word is negated: the polarity
// is flipped and dampened, since "not great" is weaker than "terrible".
const negationFactor = -0.5

// scoreText computes base polarity and subjectivity for normalized text.
// It averages the valence of matched lexicon words, applying negation and
// intensity from the immediately preceding token. Text with no lexicon
// matches scores (0, 0).
func scoreText(normalized string) (polarity, subjectivity float64) {
	tokens := strings.Fields(normalized)
	if len(tokens) == 0 {
		return 0, 0
	}

	var polaritySum, subjectivitySum float64
	matched := 0

	for i, raw := range tokens {
		word := strings.Trim(raw, ".,!?")
		v, ok := lexicon[word]
		if !ok {
			continue
		}

		p := v.polarity
		if i > 0 {
			prev := strings.Trim(tokens[i-1], ".,!?")
			if _, neg := negators[prev]; neg {
				p *= negationFactor
			} else if scale, ok := intensifiers[prev]; ok {
				p *= scale
			}
		}

		polaritySum += clamp(p, -1, 1)
		subjectivitySum += v.subjectivity
		matched++
	}

	if matched == 0 {
		return 0, 0
	}
	return polaritySum / float64(matched), subjectivitySum / float64(matched)
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Package youtube analyzes video comments for Hope/Hate sentiment and fetches
// video statistics, live via the YouTube Data API v3 or simulated.
package youtube

import (
	"errors"
	"regexp"
	"strings"
)

// Sentiment labels derived from the Hope/Hate tallies.
const (
	SentimentPositive = "Positive"
	SentimentNegative = "Negative"
	SentimentNeutral  = "Neutral"
)

// ErrServiceUnavailable indicates the Data API client could not be
// constructed (typically a missing API key). Callers should not start an
// operation that is doomed to fail.
var ErrServiceUnavailable = errors.New("youtube: api service unavailable")

// videoIDPattern matches the common URL shapes a video id arrives in.
var videoIDPattern = regexp.MustCompile(`(?:v=|youtu\.be/|embed/|watch\?v=)([A-Za-z0-9_-]+)`)

// ExtractVideoID normalizes a raw video URL or id to a bare video id.
// Input that matches none of the known URL shapes is assumed to already be an
// id, so the function is idempotent.
func ExtractVideoID(input string) string {
	if m := videoIDPattern.FindStringSubmatch(input); m != nil {
		return m[1]
	}
	return strings.TrimSpace(input)
}

// SentimentLabel derives the overall label from the Hope/Hate tallies:
// Positive iff hope > hate, Negative iff hate > hope, Neutral on a tie.
func SentimentLabel(hope, hate int) string {
	switch {
	case hope > hate:
		return SentimentPositive
	case hate > hope:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/pemistahl/lingua-go"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"tubepulse/classifier"
	"tubepulse/internal/retry"
)

// commentPageSize is the maximum page size the Data API allows.
const commentPageSize = 100

// CommentPage is one page of top-level comment texts.
type CommentPage struct {
	// Comments holds the plain-text display form of each top-level comment.
	Comments []string
	// NextPageToken continues the walk; empty means the last page.
	NextPageToken string
}

// CommentLister pages through a video's public comment threads.
type CommentLister interface {
	ListComments(ctx context.Context, videoID, pageToken string) (*CommentPage, error)
}

// APICommentLister implements CommentLister using the Data API's
// commentThreads endpoint, newest threads first.
type APICommentLister struct {
	service *youtube.Service
	policy  retry.Policy
}

// NewAPICommentLister builds a Data API comment lister.
// Returns ErrServiceUnavailable when no API key is configured or the service
// cannot be constructed.
func NewAPICommentLister(ctx context.Context, apiKey string) (*APICommentLister, error) {
	if apiKey == "" {
		return nil, ErrServiceUnavailable
	}
	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	return &APICommentLister{service: service, policy: retry.DefaultPolicy()}, nil
}

// ListComments fetches one page of top-level comments for the video.
func (l *APICommentLister) ListComments(ctx context.Context, videoID, pageToken string) (*CommentPage, error) {
	var page *CommentPage
	err := retry.Do(ctx, l.policy, apiRetryable, func(ctx context.Context) error {
		call := l.service.CommentThreads.List([]string{"snippet"}).
			VideoId(videoID).
			MaxResults(commentPageSize).
			Order("time").
			TextFormat("plainText").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return err
		}

		page = &CommentPage{NextPageToken: resp.NextPageToken}
		for _, item := range resp.Items {
			if item.Snippet == nil || item.Snippet.TopLevelComment == nil || item.Snippet.TopLevelComment.Snippet == nil {
				continue
			}
			page.Comments = append(page.Comments, item.Snippet.TopLevelComment.Snippet.TextDisplay)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Analysis is the aggregated outcome of one comment walk. When the walk stops
// early, the counts gathered so far are kept and Err describes the failure.
type Analysis struct {
	HopeCount         int                  `json:"hope_count"`
	HateCount         int                  `json:"hate_count"`
	UnknownCount      int                  `json:"unknown_count"`
	CommentsProcessed int                  `json:"comments_processed"`
	Results           []classifier.Outcome `json:"results"`
	HopeComments      []string             `json:"hope_comments"`
	HateComments      []string             `json:"hate_comments"`
	Err               string               `json:"error,omitempty"`
}

// Sentiment derives the overall label from the tallies.
func (a *Analysis) Sentiment() string {
	return SentimentLabel(a.HopeCount, a.HateCount)
}

// Analyzer walks a video's comments, filters them to English text, and
// classifies each into Hope or Hate.
type Analyzer struct {
	lister   CommentLister
	cls      classifier.Classifier
	detector lingua.LanguageDetector
	log      *slog.Logger
}

// NewAnalyzer builds an analyzer. The language detector is built once here;
// it is the only expensive piece of construction.
func NewAnalyzer(lister CommentLister, cls classifier.Classifier, log *slog.Logger) *Analyzer {
	if log == nil {
		log = slog.Default()
	}
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English, lingua.Spanish, lingua.French, lingua.German,
			lingua.Portuguese, lingua.Hindi, lingua.Arabic, lingua.Russian,
			lingua.Japanese, lingua.Korean,
		).
		Build()
	return &Analyzer{lister: lister, cls: cls, detector: detector, log: log}
}

// AnalyzeComments pages through all comment threads of the video and tallies
// Hope/Hate outcomes. An upstream failure mid-walk does not discard progress:
// the partial analysis is returned with Err set. ErrServiceUnavailable is
// returned when no lister or classifier was constructed at all.
func (a *Analyzer) AnalyzeComments(ctx context.Context, videoID string) (*Analysis, error) {
	if a.lister == nil || a.cls == nil {
		return nil, ErrServiceUnavailable
	}

	a.log.Info("starting comment analysis", "video_id", videoID)
	analysis := &Analysis{}

	pageToken := ""
	for {
		page, err := a.lister.ListComments(ctx, videoID, pageToken)
		if err != nil {
			analysis.Err = fmt.Sprintf("comment listing failed: %v", err)
			a.log.Warn("comment walk stopped early",
				"video_id", videoID, "processed", analysis.CommentsProcessed, "error", err)
			return analysis, nil
		}

		for _, text := range page.Comments {
			if !a.isEnglish(text) || !containsText(text) {
				continue
			}

			out, err := a.cls.Predict(ctx, text)
			analysis.CommentsProcessed++
			analysis.Results = append(analysis.Results, out)

			switch out.HopeHate {
			case classifier.Hope:
				analysis.HopeCount++
				analysis.HopeComments = append(analysis.HopeComments, text)
			case classifier.Hate:
				analysis.HateCount++
				analysis.HateComments = append(analysis.HateComments, text)
			default:
				// A failed classification degrades this comment only.
				analysis.UnknownCount++
				if err != nil {
					a.log.Warn("comment classification failed", "video_id", videoID, "error", err)
				}
			}

			if analysis.CommentsProcessed%20 == 0 {
				a.log.Info("analysis progress",
					"video_id", videoID, "processed", analysis.CommentsProcessed)
			}
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	a.log.Info("comment analysis complete", "video_id", videoID,
		"processed", analysis.CommentsProcessed,
		"hope", analysis.HopeCount, "hate", analysis.HateCount)
	return analysis, nil
}

func (a *Analyzer) isEnglish(text string) bool {
	lang, ok := a.detector.DetectLanguageOf(text)
	return ok && lang == lingua.English
}

// containsText reports whether the string has at least one letter or digit.
func containsText(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// apiRetryable mirrors the Data API's transient failure modes: throttling and
// server errors retry, everything else is permanent.
func apiRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	msg := err.Error()
	for _, transient := range []string{"quotaExceeded", "rateLimitExceeded", "backendError", "internalError"} {
		if strings.Contains(msg, transient) {
			return true
		}
	}
	return false
}

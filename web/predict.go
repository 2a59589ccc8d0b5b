package web

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"tubepulse/youtube"
)

const recentPredictions = 5

func (s *Server) predictPage(c *fiber.Ctx) error {
	return s.renderPredict(c, nil, false)
}

func (s *Server) predict(c *fiber.Ctx) error {
	sess := currentSession(c)

	videoInput := strings.TrimSpace(c.FormValue("video_id"))
	if videoInput == "" {
		flashNow(c, "Please enter a YouTube video ID or URL", "error")
		return s.renderPredict(c, nil, false)
	}
	videoID := youtube.ExtractVideoID(videoInput)
	if videoID == "" {
		flashNow(c, "Please enter a valid YouTube video ID or URL", "error")
		return s.renderPredict(c, nil, false)
	}

	analysis, err := s.analyzer.AnalyzeComments(c.Context(), videoID)
	if err != nil {
		if errors.Is(err, youtube.ErrServiceUnavailable) {
			flashNext(c, "YouTube API service is not available.", "error")
			return c.Redirect("/predict")
		}
		s.log.Error("analysis failed", "video_id", videoID, "error", err)
		flashNow(c, fmt.Sprintf("An error occurred: %v", err), "error")
		return s.renderPredict(c, nil, false)
	}
	if analysis.Err != "" {
		flashNow(c, analysis.Err, "error")
		return s.renderPredict(c, nil, false)
	}

	suggestChatbot := analysis.HateCount > analysis.HopeCount
	if suggestChatbot {
		flashNow(c, "High level of negative comments detected. Our AI assistant can help you understand and manage this.", "warning")
	}

	sentiment := analysis.Sentiment()
	if _, err := s.store.AddPrediction(c.Context(), sess.UserID, videoID, sentiment); err != nil {
		s.log.Error("prediction insert failed", "user_id", sess.UserID, "error", err)
	}

	flashNow(c, fmt.Sprintf("Prediction completed! Overall Sentiment: %s", sentiment), "success")
	return s.renderPredict(c, fiber.Map{
		"VideoID":           videoID,
		"Sentiment":         sentiment,
		"HopeCount":         analysis.HopeCount,
		"HateCount":         analysis.HateCount,
		"CommentsProcessed": analysis.CommentsProcessed,
		"HopeComments":      analysis.HopeComments,
		"HateComments":      analysis.HateComments,
	}, suggestChatbot)
}

func (s *Server) renderPredict(c *fiber.Ctx, latest fiber.Map, suggestChatbot bool) error {
	sess := currentSession(c)
	recent, err := s.store.ListPredictions(c.Context(), sess.UserID, recentPredictions)
	if err != nil {
		s.log.Error("prediction history load failed", "user_id", sess.UserID, "error", err)
	}
	return s.render(c, "predict", fiber.Map{
		"LatestPrediction":  latest,
		"RecentPredictions": recent,
		"SuggestChatbot":    suggestChatbot,
	})
}

func (s *Server) dashboard(c *fiber.Ctx) error {
	sess := currentSession(c)

	predictions, err := s.store.ListPredictions(c.Context(), sess.UserID, 0)
	if err != nil {
		s.log.Error("prediction list failed", "user_id", sess.UserID, "error", err)
	}
	stats, err := s.store.SentimentStats(c.Context(), sess.UserID)
	if err != nil {
		s.log.Error("sentiment stats failed", "user_id", sess.UserID, "error", err)
		stats = map[string]int{}
	}
	history, err := s.store.ListTrackerHistory(c.Context(), sess.UserID, 3)
	if err != nil {
		s.log.Error("tracker history load failed", "user_id", sess.UserID, "error", err)
	}

	return s.render(c, "dashboard", fiber.Map{
		"Predictions":    predictions,
		"PositiveCount":  stats[youtube.SentimentPositive],
		"NeutralCount":   stats[youtube.SentimentNeutral],
		"NegativeCount":  stats[youtube.SentimentNegative],
		"TrackerHistory": history,
	})
}

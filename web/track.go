package web

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) trackerPage(c *fiber.Ctx) error {
	return s.render(c, "youtube_tracker", nil)
}

// trackVideo runs a tracking session inline: the request blocks for the full
// interval*(samples-1) minutes. A known simplification, kept deliberately.
func (s *Server) trackVideo(c *fiber.Ctx) error {
	sess := currentSession(c)

	videoID := strings.TrimSpace(c.FormValue("video_id"))
	interval, errI := strconv.Atoi(c.FormValue("interval", "5"))
	samples, errS := strconv.Atoi(c.FormValue("samples", "5"))

	if errI != nil || errS != nil {
		flashNow(c, "Interval and samples must be integers.", "error")
		return s.render(c, "youtube_tracker", nil)
	}
	if videoID == "" {
		flashNow(c, "Please provide a YouTube Video ID.", "error")
		return s.render(c, "youtube_tracker", nil)
	}
	if interval < 1 || samples < 1 {
		flashNow(c, "Interval and samples must be positive.", "error")
		return s.render(c, "youtube_tracker", nil)
	}

	flashNow(c, "Starting to track video stats. This might take a while...", "info")

	bind := fiber.Map{
		"VideoID":  videoID,
		"Interval": interval,
		"Samples":  samples,
	}

	plots, err := s.tracker.Run(c.Context(), videoID, interval, samples)
	if err != nil {
		s.log.Error("tracking session failed", "video_id", videoID, "error", err)
		flashNow(c, fmt.Sprintf("An error occurred: %v", err), "error")
		return s.render(c, "youtube_tracker", bind)
	}
	if len(plots) == 0 {
		flashNow(c, "Could not generate any plots. The video might not exist or the API key may be invalid.", "error")
		return s.render(c, "youtube_tracker", bind)
	}

	if _, err := s.store.AddTrackerHistory(c.Context(), sess.UserID, videoID, plots); err != nil {
		s.log.Error("tracker history insert failed", "user_id", sess.UserID, "error", err)
	}

	flashNow(c, "Tracking complete!", "success")
	bind["Plots"] = plots
	return s.render(c, "youtube_tracker", bind)
}

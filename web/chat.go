package web

import (
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"
)

const defaultGreeting = "Hello! I'm your AI assistant. Ask me anything about content creation, YouTube, or sentiment analysis."

const negativityFallback = "I noticed your recent video analysis showed a high number of negative comments. I'm here to help you with that. How can I assist?"

// chatbotPage renders the chat page. When the request carries analysis
// context (redirected from a high-negativity prediction) the opening message
// is generated from that context, with a static fallback if the assistant is
// unreachable.
func (s *Server) chatbotPage(c *fiber.Ctx) error {
	videoID := c.Query("video_id")
	hopeCount := c.Query("hope_count")
	hateCount := c.Query("hate_count")

	initial := defaultGreeting
	if videoID != "" && hopeCount != "" && hateCount != "" {
		prompt := fmt.Sprintf(
			"The user was just redirected to me after analyzing the YouTube video with ID '%s'. "+
				"The analysis found %s negative comments and %s positive comments. "+
				"Since the negative comments were high, greet the user, acknowledge the analysis results, "+
				"and offer specific, actionable advice on how a content creator can manage, understand, or respond to this negative feedback. "+
				"Keep the tone helpful and encouraging. Start by saying something like 'I noticed your video...'.",
			videoID, hateCount, hopeCount)

		reply, err := s.assistant.Reply(c.Context(), prompt)
		if err != nil {
			s.log.Warn("contextual chat greeting failed", "video_id", videoID, "error", err)
			initial = negativityFallback
		} else {
			initial = reply
		}
	}

	return s.render(c, "chatbot", fiber.Map{"InitialMessage": initial})
}

// chat is the JSON endpoint. Failures never surface as HTTP errors; they are
// reshaped into {status: "error", message}.
func (s *Server) chat(c *fiber.Ctx) error {
	prompt, err := url.PathUnescape(c.Params("prompt"))
	if err != nil {
		prompt = c.Params("prompt")
	}

	reply, err := s.assistant.Reply(c.Context(), prompt)
	if err != nil {
		s.log.Warn("chat reply failed", "error", err)
		return c.JSON(fiber.Map{
			"status":  "error",
			"message": fmt.Sprintf("An error occurred: %v", err),
		})
	}

	return c.JSON(fiber.Map{
		"status":  "ok",
		"message": reply,
	})
}

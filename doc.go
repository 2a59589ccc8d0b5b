// Tubepulse is a web application for YouTube creators. It analyzes the
// emotional tone of a video's comments (hope versus hate), tracks video and
// channel statistics over time with generated charts, and answers creator
// questions through an AI assistant.
//
// # Running
//
// The server reads its configuration from the environment, optionally seeded
// from a .env file in the working directory:
//
//	GEMINI_API_KEY   key for the generative-language API (required)
//	YOUTUBE_API_KEY  key for the YouTube Data API; without it comment
//	                 analysis is unavailable and the tracker produces
//	                 simulated statistics
//	EMOTION_API_URL  endpoint of the emotion-classification model
//	EMOTION_API_TOKEN bearer token for that endpoint
//	SESSION_SECRET   signs the session cookie
//	LISTEN_ADDR      HTTP listen address (default :5005)
//	DATABASE_PATH    SQLite database file (default instance/tubepulse.db)
//	REDIS_ADDR       enables the sentiment-stats cache when set
//
// Then:
//
//	go run .
//
// and open http://localhost:5005.
//
// # Packages
//
//   - web: HTTP handlers, sessions, and templates
//   - youtube: comment analysis and video statistics
//   - classifier: the emotion-classification client
//   - tracker: bounded statistics-sampling sessions and charts
//   - assistant: the Gemini-backed creator assistant
//   - storage: users, predictions, and tracker history
package main

package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"tubepulse/storage"
	"tubepulse/youtube"
)

// stubAnalyzer returns a fixed analysis or error.
type stubAnalyzer struct {
	analysis *youtube.Analysis
	err      error
}

func (s *stubAnalyzer) AnalyzeComments(ctx context.Context, videoID string) (*youtube.Analysis, error) {
	return s.analysis, s.err
}

// stubTracker returns fixed chart paths.
type stubTracker struct {
	plots []string
	err   error
}

func (s *stubTracker) Run(ctx context.Context, videoID string, intervalMin, samples int) ([]string, error) {
	return s.plots, s.err
}

// stubAssistant echoes or fails.
type stubAssistant struct {
	reply string
	err   error
}

func (s *stubAssistant) Reply(ctx context.Context, prompt string) (string, error) {
	return s.reply, s.err
}

type testEnv struct {
	server *Server
	store  *storage.GormStore
	// cookies carries the session across requests.
	cookies []*http.Cookie
}

func newTestEnv(t *testing.T, analyzer CommentAnalyzer, tracker StatsTracker, asst *stubAssistant) *testEnv {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"), nil, nil)
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if analyzer == nil {
		analyzer = &stubAnalyzer{analysis: &youtube.Analysis{}}
	}
	if tracker == nil {
		tracker = &stubTracker{}
	}
	if asst == nil {
		asst = &stubAssistant{reply: "hello"}
	}

	server := New(Config{
		Store:     store,
		Analyzer:  analyzer,
		Tracker:   tracker,
		Assistant: asst,
		Sessions:  NewSessionManager("test-secret"),
		ViewsDir:  "./views",
	})
	return &testEnv{server: server, store: store}
}

// do sends a request, remembering any cookies the response sets.
func (e *testEnv) do(t *testing.T, method, target string, form url.Values) *http.Response {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range e.cookies {
		req.AddCookie(c)
	}

	resp, err := e.server.App().Test(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, target, err)
	}
	for _, c := range resp.Cookies() {
		e.setCookie(c)
	}
	return resp
}

func (e *testEnv) setCookie(c *http.Cookie) {
	for i, existing := range e.cookies {
		if existing.Name == c.Name {
			e.cookies[i] = c
			return
		}
	}
	e.cookies = append(e.cookies, c)
}

func (e *testEnv) signupAndLogin(t *testing.T) {
	t.Helper()

	resp := e.do(t, http.MethodPost, "/signup", url.Values{
		"username":         {"creator"},
		"email":            {"creator@example.com"},
		"password":         {"secret123"},
		"confirm_password": {"secret123"},
	})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("signup status = %d, want 302", resp.StatusCode)
	}

	resp = e.do(t, http.MethodPost, "/login", url.Values{
		"email":    {"creator@example.com"},
		"password": {"secret123"},
	})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("login status = %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/predict" {
		t.Errorf("login redirect = %q, want /predict", loc)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()
	return string(data)
}

func TestSignupDuplicate(t *testing.T) {
	env := newTestEnv(t, nil, nil, nil)
	env.signupAndLogin(t)

	resp := env.do(t, http.MethodPost, "/signup", url.Values{
		"username":         {"creator"},
		"email":            {"other@example.com"},
		"password":         {"secret123"},
		"confirm_password": {"secret123"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("duplicate signup status = %d, want 200 re-render", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "already exists") {
		t.Error("duplicate signup page missing 'already exists' flash")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t, nil, nil, nil)
	env.signupAndLogin(t)
	env.cookies = nil // fresh anonymous client

	resp := env.do(t, http.MethodPost, "/login", url.Values{
		"email":    {"creator@example.com"},
		"password": {"wrong-password"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("bad login status = %d, want 200 re-render", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "Invalid email or password") {
		t.Error("bad login page missing rejection flash")
	}
}

func TestPredictRequiresLogin(t *testing.T) {
	env := newTestEnv(t, nil, nil, nil)

	resp := env.do(t, http.MethodGet, "/predict", nil)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("anonymous /predict status = %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Errorf("anonymous /predict redirect = %q, want /login", loc)
	}
}

func TestPredictNegativeMajoritySuggestsAssistant(t *testing.T) {
	analyzer := &stubAnalyzer{analysis: &youtube.Analysis{
		HopeCount:         1,
		HateCount:         4,
		CommentsProcessed: 5,
		HateComments:      []string{"terrible", "awful", "bad", "worst"},
		HopeComments:      []string{"nice"},
	}}
	env := newTestEnv(t, analyzer, nil, nil)
	env.signupAndLogin(t)

	resp := env.do(t, http.MethodPost, "/predict", url.Values{
		"video_id": {"https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("predict status = %d, want 200", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Negative") {
		t.Error("predict page missing Negative sentiment")
	}
	if !strings.Contains(body, "negative comments detected") {
		t.Error("predict page missing assistant suggestion flash")
	}

	// The prediction row was persisted with the normalized video id.
	preds, err := env.store.ListPredictions(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("ListPredictions() error = %v", err)
	}
	if len(preds) != 1 {
		t.Fatalf("persisted %d predictions, want 1", len(preds))
	}
	if preds[0].VideoID != "dQw4w9WgXcQ" {
		t.Errorf("persisted video id = %q, want normalized dQw4w9WgXcQ", preds[0].VideoID)
	}
	if preds[0].Sentiment != youtube.SentimentNegative {
		t.Errorf("persisted sentiment = %q, want Negative", preds[0].Sentiment)
	}
}

func TestPredictServiceUnavailableRedirects(t *testing.T) {
	env := newTestEnv(t, &stubAnalyzer{err: youtube.ErrServiceUnavailable}, nil, nil)
	env.signupAndLogin(t)

	resp := env.do(t, http.MethodPost, "/predict", url.Values{"video_id": {"vid123"}})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("predict status = %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/predict" {
		t.Errorf("predict redirect = %q, want /predict", loc)
	}
}

func TestPredictPartialFailureShowsError(t *testing.T) {
	analyzer := &stubAnalyzer{analysis: &youtube.Analysis{
		HopeCount: 2, HateCount: 1, CommentsProcessed: 3,
		Err: "comment listing failed: quotaExceeded",
	}}
	env := newTestEnv(t, analyzer, nil, nil)
	env.signupAndLogin(t)

	resp := env.do(t, http.MethodPost, "/predict", url.Values{"video_id": {"vid123"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("predict status = %d, want 200", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "comment listing failed") {
		t.Error("predict page missing partial-failure message")
	}

	// No prediction row is written for a failed walk.
	preds, err := env.store.ListPredictions(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("ListPredictions() error = %v", err)
	}
	if len(preds) != 0 {
		t.Errorf("persisted %d predictions, want 0", len(preds))
	}
}

func TestTrackerPersistsHistory(t *testing.T) {
	tracker := &stubTracker{plots: []string{
		"images/tracker/vid123_views_1700000000.png",
		"images/tracker/vid123_likes_1700000000.png",
		"images/tracker/vid123_subscribers_1700000000.png",
	}}
	env := newTestEnv(t, nil, tracker, nil)
	env.signupAndLogin(t)

	resp := env.do(t, http.MethodPost, "/youtube_tracker", url.Values{
		"video_id": {"vid123"},
		"interval": {"1"},
		"samples":  {"2"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("tracker status = %d, want 200", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "Tracking complete!") {
		t.Error("tracker page missing completion flash")
	}

	history, err := env.store.ListTrackerHistory(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("ListTrackerHistory() error = %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("persisted %d history rows, want 1", len(history))
	}
	if history[0].ViewsPlot() == "" || history[0].LikesPlot() == "" || history[0].SubscribersPlot() == "" {
		t.Error("history row missing chart paths")
	}
}

func TestTrackerRejectsNonIntegerInput(t *testing.T) {
	env := newTestEnv(t, nil, nil, nil)
	env.signupAndLogin(t)

	resp := env.do(t, http.MethodPost, "/youtube_tracker", url.Values{
		"video_id": {"vid123"},
		"interval": {"five"},
		"samples":  {"2"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("tracker status = %d, want 200 re-render", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "must be integers") {
		t.Error("tracker page missing integer-validation flash")
	}
}

func TestChatEndpointReshapesErrors(t *testing.T) {
	env := newTestEnv(t, nil, nil, &stubAssistant{err: errors.New("model timed out")})

	resp := env.do(t, http.MethodPost, "/chat/how%20do%20I%20grow", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/chat status = %d, want 200 even on failure", resp.StatusCode)
	}

	var payload struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode chat payload: %v", err)
	}
	resp.Body.Close()

	if payload.Status != "error" {
		t.Errorf("status = %q, want error", payload.Status)
	}
	if payload.Message == "" {
		t.Error("error message is empty")
	}
}

func TestChatEndpointSuccess(t *testing.T) {
	env := newTestEnv(t, nil, nil, &stubAssistant{reply: "post twice a week"})

	resp := env.do(t, http.MethodPost, "/chat/upload%20schedule", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/chat status = %d, want 200", resp.StatusCode)
	}

	var payload struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode chat payload: %v", err)
	}
	resp.Body.Close()

	if payload.Status != "ok" || payload.Message != "post twice a week" {
		t.Errorf("payload = %+v, want ok/post twice a week", payload)
	}
}

func TestDashboardShowsCounts(t *testing.T) {
	env := newTestEnv(t, nil, nil, nil)
	env.signupAndLogin(t)

	ctx := context.Background()
	for _, sentiment := range []string{"Positive", "Negative", "Negative"} {
		if _, err := env.store.AddPrediction(ctx, 1, "vid123", sentiment); err != nil {
			t.Fatalf("AddPrediction() error = %v", err)
		}
	}

	resp := env.do(t, http.MethodGet, "/dashboard", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard status = %d, want 200", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Positive: 1") || !strings.Contains(body, "Negative: 2") {
		t.Error("dashboard missing sentiment tallies")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	env := newTestEnv(t, nil, nil, nil)
	env.signupAndLogin(t)

	resp := env.do(t, http.MethodGet, "/logout", nil)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("logout status = %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Errorf("logout redirect = %q, want /", loc)
	}

	resp = env.do(t, http.MethodGet, "/predict", nil)
	if resp.StatusCode != http.StatusFound {
		t.Errorf("post-logout /predict status = %d, want 302 to login", resp.StatusCode)
	}
}

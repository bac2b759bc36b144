package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NAVER-CLOUD-3-ANDROID/swen-backend/internal/config"
	"github.com/NAVER-CLOUD-3-ANDROID/swen-backend/internal/domain"
	"github.com/NAVER-CLOUD-3-ANDROID/swen-backend/internal/services"
	"github.com/NAVER-CLOUD-3-ANDROID/swen-backend/internal/storage"
)

type fakeSearcher struct {
	articles []domain.NewsArticle
}

func (f *fakeSearcher) Search(ctx context.Context, query string, display, start int, sort string) []domain.NewsArticle {
	return f.articles
}

type fakeScriptGen struct{}

func (f *fakeScriptGen) GenerateScript(ctx context.Context, article domain.NewsArticle) (string, bool) {
	return "script text", false
}

type fakeGateway struct{}

func (f *fakeGateway) Submit(ctx context.Context, request services.SpeechRequest) (services.SubmitResponse, error) {
	return services.SubmitResponse{RequestID: "r1", Status: "progress"}, nil
}

func (f *fakeGateway) PollStatus(ctx context.Context, requestID string) (services.StatusResponse, error) {
	return services.StatusResponse{RequestID: requestID, Status: services.DubbingStatusComplete, DownloadURL: "http://x/y"}, nil
}

func (f *fakeGateway) WaitForCompletion(ctx context.Context, requestID string) (services.StatusResponse, error) {
	return services.StatusResponse{RequestID: requestID, Status: services.DubbingStatusComplete, DownloadURL: "http://x/y"}, nil
}

func (f *fakeGateway) Download(ctx context.Context, downloadURL string) ([]byte, error) {
	return []byte("mp3-bytes"), nil
}

func setupTestServer(t *testing.T, articles []domain.NewsArticle) (*gin.Engine, *storage.Store) {
	t.Helper()

	tmpDir := t.TempDir()

	cfg := config.Config{
		Port:           "8080",
		DataDir:        tmpDir,
		DefaultSpeaker: "nara",
		PollInterval:   time.Millisecond,
		WaitDeadline:   time.Second,
	}

	store, err := storage.NewStore(tmpDir)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	artifacts, err := storage.NewFileManager(tmpDir)
	if err != nil {
		t.Fatalf("file manager: %v", err)
	}

	searcher := &fakeSearcher{articles: articles}
	scripts := &fakeScriptGen{}
	speechSvc := services.NewSpeechService(&fakeGateway{}, store, artifacts)
	pipeline := services.NewNewsAudioService(searcher, scripts, speechSvc)

	engine := gin.New()
	engine.Use(gin.Recovery())
	api := NewAPI(cfg, store, searcher, scripts, speechSvc, pipeline)
	registerRoutes(engine, api)

	return engine, store
}

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine, _ := setupTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()

	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if ok, exists := body["ok"].(bool); !exists || !ok {
		t.Fatalf("expected ok=true, body=%v", body)
	}
}

func TestKeywordAudioEndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine, _ := setupTestServer(t, []domain.NewsArticle{{ID: "a1", Title: "T", Content: "C"}})

	req := httptest.NewRequest(http.MethodPost, "/api/news/with-audio/keyword", strings.NewReader(`{"keyword":"economy"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body %s", rec.Code, rec.Body.String())
	}

	var result domain.NewsWithAudioResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}

	if !result.Success {
		t.Fatalf("expected success, got %q", result.Error)
	}
	if result.Speech == nil || result.Speech.Status != domain.SpeechStatusCompleted {
		t.Fatalf("expected completed speech, got %+v", result.Speech)
	}
	if result.Speech.AudioURL == "" || result.Speech.DownloadURL == "" {
		t.Fatalf("expected both artifact urls, got %+v", result.Speech)
	}

	audioReq := httptest.NewRequest(http.MethodGet, "/api/speech/"+result.Speech.ID+"/audio", nil)
	audioRec := httptest.NewRecorder()
	engine.ServeHTTP(audioRec, audioReq)

	if audioRec.Code != http.StatusOK {
		t.Fatalf("expected 200 for stored audio, got %d", audioRec.Code)
	}
	if audioRec.Body.String() != "mp3-bytes" {
		t.Fatalf("unexpected audio body: %q", audioRec.Body.String())
	}
}

func TestKeywordAudioRequiresKeyword(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine, _ := setupTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/news/with-audio/keyword", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRandomAudioWithNoCandidates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine, _ := setupTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/news/with-audio/random", nil)
	rec := httptest.NewRecorder()

	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for empty candidate set, got %d", rec.Code)
	}

	var result domain.NewsWithAudioResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Success || result.Error == "" {
		t.Fatalf("expected failure result, got %+v", result)
	}
}

func TestSpeechLookupNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine, _ := setupTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/speech/nope", nil)
	rec := httptest.NewRecorder()

	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCollectNewsStoresArticles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine, store := setupTestServer(t, []domain.NewsArticle{
		{ID: "a1", Title: "T", Content: "C", URL: "http://news/1"},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/news/collect", strings.NewReader(`{"query":"economy","count":5}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	saved, err := store.ArticleByID("a1")
	if err != nil || saved == nil {
		t.Fatalf("expected article persisted, got %+v %v", saved, err)
	}
}

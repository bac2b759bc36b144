package services

import (
	"context"
	"errors"
	"testing"

	"github.com/NAVER-CLOUD-3-ANDROID/swen-backend/internal/domain"
)

type stubSearcher struct {
	articles []domain.NewsArticle
	calls    int
	query    string
}

func (s *stubSearcher) Search(ctx context.Context, query string, display, start int, sort string) []domain.NewsArticle {
	s.calls++
	s.query = query
	return s.articles
}

type stubScriptGen struct {
	script   string
	fallback bool
	calls    int
}

func (s *stubScriptGen) GenerateScript(ctx context.Context, article domain.NewsArticle) (string, bool) {
	s.calls++
	return s.script, s.fallback
}

type stubSynthesizer struct {
	speech domain.Speech
	err    error
	calls  int
}

func (s *stubSynthesizer) GenerateSpeechFromScript(ctx context.Context, scriptID, scriptText, speaker string) (domain.Speech, error) {
	s.calls++
	if s.err != nil {
		return domain.Speech{}, s.err
	}
	speech := s.speech
	speech.ScriptID = scriptID
	return speech, nil
}

func TestPipelineShortCircuitsOnEmptyCandidates(t *testing.T) {
	searcher := &stubSearcher{}
	scripts := &stubScriptGen{script: "unused"}
	synth := &stubSynthesizer{}
	svc := NewNewsAudioService(searcher, scripts, synth)

	result := svc.GenerateRandom(context.Background(), "nara", true)

	if result.Success {
		t.Fatal("expected failure result for empty candidate set")
	}
	if result.Error == "" {
		t.Fatal("expected error message in failure result")
	}
	if scripts.calls != 0 {
		t.Fatalf("script generation must not run, got %d calls", scripts.calls)
	}
	if synth.calls != 0 {
		t.Fatalf("synthesis must not run, got %d calls", synth.calls)
	}
}

func TestPipelineEndToEndHappyPath(t *testing.T) {
	article := domain.NewsArticle{ID: "a1", Title: "T", Content: "C"}
	searcher := &stubSearcher{articles: []domain.NewsArticle{article}}
	scripts := &stubScriptGen{script: "script text"}
	synth := &stubSynthesizer{
		speech: domain.Speech{
			ID:          "sp1",
			RequestID:   "r1",
			Status:      domain.SpeechStatusCompleted,
			AudioURL:    "/data/audio/sp1.mp3",
			DownloadURL: "http://x/y",
		},
	}
	svc := NewNewsAudioService(searcher, scripts, synth)

	result := svc.GenerateRandom(context.Background(), "nara", true)

	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if result.News == nil || result.News.ID != "a1" {
		t.Fatalf("expected selected article a1, got %+v", result.News)
	}
	if result.Script == nil || result.Script.Script != "script text" {
		t.Fatalf("expected generated script, got %+v", result.Script)
	}
	if result.Speech == nil || result.Speech.Status != domain.SpeechStatusCompleted {
		t.Fatalf("expected completed speech, got %+v", result.Speech)
	}
	if result.Speech.AudioURL == "" {
		t.Fatal("expected audio url in speech record")
	}
	if result.Speech.ScriptID != result.Script.ID {
		t.Fatalf("speech must reference the generated script, got %q vs %q", result.Speech.ScriptID, result.Script.ID)
	}
	if result.Message == "" {
		t.Fatal("expected completion message")
	}
}

func TestPipelineDowngradesSynthesisErrorToData(t *testing.T) {
	searcher := &stubSearcher{articles: []domain.NewsArticle{{ID: "a1", Title: "T", Content: "C"}}}
	scripts := &stubScriptGen{script: "script text"}
	synth := &stubSynthesizer{err: errors.New("boom")}
	svc := NewNewsAudioService(searcher, scripts, synth)

	result := svc.GenerateByKeyword(context.Background(), "economy", "nara", true)

	if result.Success {
		t.Fatal("expected failure result")
	}
	if result.Error == "" || result.Speech != nil {
		t.Fatalf("expected error string and no speech, got %+v", result)
	}
	if searcher.query != "economy" {
		t.Fatalf("expected keyword search, got query %q", searcher.query)
	}
}

func TestPipelineSkipsSynthesisWithoutAudio(t *testing.T) {
	searcher := &stubSearcher{articles: []domain.NewsArticle{{ID: "a1", Title: "T", Content: "C"}}}
	scripts := &stubScriptGen{script: "script text"}
	synth := &stubSynthesizer{}
	svc := NewNewsAudioService(searcher, scripts, synth)

	result := svc.GenerateRandom(context.Background(), "nara", false)

	if !result.Success {
		t.Fatalf("expected success, got %q", result.Error)
	}
	if result.Speech != nil {
		t.Fatal("expected no speech record without audio")
	}
	if synth.calls != 0 {
		t.Fatalf("synthesis must not run, got %d calls", synth.calls)
	}
}

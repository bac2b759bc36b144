package storage

import (
	"context"
	"testing"
	"time"

	"github.com/NAVER-CLOUD-3-ANDROID/swen-backend/internal/domain"
)

func TestSpeechCRUD(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	ctx := context.Background()

	speech := domain.NewSpeech("script-1", "nara")
	saved, err := store.SaveSpeech(ctx, speech)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID == "" || saved.Status != domain.SpeechStatusProcessing {
		t.Fatalf("unexpected saved record: %+v", saved)
	}

	byID, err := store.SpeechByID(ctx, saved.ID)
	if err != nil || byID == nil {
		t.Fatalf("lookup by id: %v %+v", err, byID)
	}

	byScript, err := store.SpeechByScriptID(ctx, "script-1")
	if err != nil || byScript == nil || byScript.ID != saved.ID {
		t.Fatalf("lookup by script id: %v %+v", err, byScript)
	}

	updated, err := store.UpdateSpeech(ctx, saved.WithRequestID("r1"))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.RequestID != "r1" {
		t.Fatalf("expected request id r1, got %q", updated.RequestID)
	}

	byRequest, err := store.SpeechByRequestID(ctx, "r1")
	if err != nil || byRequest == nil || byRequest.ID != saved.ID {
		t.Fatalf("lookup by request id: %v %+v", err, byRequest)
	}

	deleted, err := store.DeleteSpeech(ctx, saved.ID)
	if err != nil || !deleted {
		t.Fatalf("delete: %v %v", deleted, err)
	}

	gone, err := store.SpeechByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("lookup after delete: %v", err)
	}
	if gone != nil {
		t.Fatalf("expected nil after delete, got %+v", gone)
	}
}

func TestAbsentLookupsReturnNil(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	ctx := context.Background()

	if speech, err := store.SpeechByID(ctx, "nope"); err != nil || speech != nil {
		t.Fatalf("expected nil, nil for absent id, got %+v %v", speech, err)
	}
	if speech, err := store.SpeechByScriptID(ctx, "nope"); err != nil || speech != nil {
		t.Fatalf("expected nil, nil for absent script id, got %+v %v", speech, err)
	}
	if speech, err := store.SpeechByRequestID(ctx, "nope"); err != nil || speech != nil {
		t.Fatalf("expected nil, nil for absent request id, got %+v %v", speech, err)
	}

	deleted, err := store.DeleteSpeech(ctx, "nope")
	if err != nil {
		t.Fatalf("delete absent: %v", err)
	}
	if deleted {
		t.Fatal("expected false for absent delete")
	}
}

func TestUpdateMissingSpeechFails(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	if _, err := store.UpdateSpeech(context.Background(), domain.NewSpeech("script-1", "nara")); err == nil {
		t.Fatal("expected error updating a record that was never saved")
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	speech := domain.NewSpeech("script-1", "nara").WithRequestID("r1")
	if _, err := store.SaveSpeech(ctx, speech); err != nil {
		t.Fatalf("save: %v", err)
	}

	reopened, err := NewStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}

	got, err := reopened.SpeechByScriptID(ctx, "script-1")
	if err != nil {
		t.Fatalf("lookup after reopen: %v", err)
	}
	if got == nil || got.RequestID != "r1" || got.Status != domain.SpeechStatusProcessing {
		t.Fatalf("expected persisted record after reopen, got %+v", got)
	}
}

func TestStaleProcessing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	ctx := context.Background()

	stale := domain.NewSpeech("script-old", "nara")
	stale.UpdatedAt = time.Now().Add(-time.Hour)
	if _, err := store.SaveSpeech(ctx, stale); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := store.SaveSpeech(ctx, domain.NewSpeech("script-fresh", "nara")); err != nil {
		t.Fatalf("save: %v", err)
	}

	terminal := domain.NewSpeech("script-done", "nara").WithFailed("x")
	terminal.UpdatedAt = time.Now().Add(-time.Hour)
	if _, err := store.SaveSpeech(ctx, terminal); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.StaleProcessing(ctx, 10*time.Minute)
	if err != nil {
		t.Fatalf("stale scan: %v", err)
	}
	if len(got) != 1 || got[0].ScriptID != "script-old" {
		t.Fatalf("expected only the stale processing record, got %+v", got)
	}
}

func TestArticleAndScriptStorage(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	if article, err := store.RandomArticle(); err != nil || article != nil {
		t.Fatalf("expected nil article from empty store, got %+v %v", article, err)
	}

	article := domain.NewNewsArticle("T", "C", "http://news/1", "Mon, 01 Jan 2024 00:00:00 +0900")
	if _, err := store.SaveArticle(article); err != nil {
		t.Fatalf("save article: %v", err)
	}

	random, err := store.RandomArticle()
	if err != nil || random == nil || random.ID != article.ID {
		t.Fatalf("random article: %v %+v", err, random)
	}

	script := domain.NewNewsScript(article.ID, "script text")
	if _, err := store.SaveScript(script); err != nil {
		t.Fatalf("save script: %v", err)
	}

	byNews, err := store.ScriptByNewsID(article.ID)
	if err != nil || byNews == nil || byNews.ID != script.ID {
		t.Fatalf("script by news id: %v %+v", err, byNews)
	}

	if missing, err := store.ScriptByNewsID("nope"); err != nil || missing != nil {
		t.Fatalf("expected nil for absent script, got %+v %v", missing, err)
	}
}

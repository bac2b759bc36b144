package services

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"github.com/NAVER-CLOUD-3-ANDROID/swen-backend/internal/domain"
)

const searchDisplay = 20

// ArticleSearcher finds candidate articles. It returns an empty set, never an
// error, when the remote search is unavailable.
type ArticleSearcher interface {
	Search(ctx context.Context, query string, display, start int, sort string) []domain.NewsArticle
}

// ScriptGenerator turns an article into a narration script. The bool reports
// whether the deterministic fallback script was used.
type ScriptGenerator interface {
	GenerateScript(ctx context.Context, article domain.NewsArticle) (string, bool)
}

// Synthesizer drives one speech-synthesis job to a terminal state.
type Synthesizer interface {
	GenerateSpeechFromScript(ctx context.Context, scriptID, scriptText, speaker string) (domain.Speech, error)
}

// NewsAudioService composes article selection, script generation and speech
// synthesis into one user-facing operation. All outcomes, including failures,
// come back as a NewsWithAudioResult; no error escapes this layer.
type NewsAudioService struct {
	news    ArticleSearcher
	scripts ScriptGenerator
	speech  Synthesizer
}

func NewNewsAudioService(news ArticleSearcher, scripts ScriptGenerator, speech Synthesizer) *NewsAudioService {
	return &NewsAudioService{news: news, scripts: scripts, speech: speech}
}

func (svc *NewsAudioService) GenerateRandom(ctx context.Context, speaker string, includeAudio bool) domain.NewsWithAudioResult {
	return svc.run(ctx, "", speaker, includeAudio, "random news")
}

func (svc *NewsAudioService) GenerateByKeyword(ctx context.Context, keyword, speaker string, includeAudio bool) domain.NewsWithAudioResult {
	return svc.run(ctx, keyword, speaker, includeAudio, fmt.Sprintf("news for %q", keyword))
}

func (svc *NewsAudioService) run(ctx context.Context, keyword, speaker string, includeAudio bool, label string) domain.NewsWithAudioResult {
	articles := svc.news.Search(ctx, keyword, searchDisplay, 1, "date")
	if len(articles) == 0 {
		return domain.FailureResult(fmt.Sprintf("no %s found", label))
	}

	selected := articles[rand.Intn(len(articles))]

	script, usedFallback := svc.scripts.GenerateScript(ctx, selected)
	if usedFallback {
		log.Printf("script generation degraded to fallback for article %s", selected.ID)
	}

	newsScript := domain.NewNewsScript(selected.ID, script)

	var speech *domain.Speech
	if includeAudio {
		generated, err := svc.speech.GenerateSpeechFromScript(ctx, newsScript.ID, script, speaker)
		if err != nil {
			return domain.FailureResult(fmt.Sprintf("%s audio generation failed: %v", label, err))
		}
		speech = &generated
	}

	message := fmt.Sprintf("%s script generated", label)
	if includeAudio {
		message = fmt.Sprintf("%s audio generated", label)
	}

	return domain.SuccessResult(selected, newsScript, speech, message)
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/NAVER-CLOUD-3-ANDROID/swen-backend/internal/config"
	"github.com/NAVER-CLOUD-3-ANDROID/swen-backend/internal/domain"
)

const (
	scriptRequestTimeout  = 60 * time.Second
	fallbackContentRunes  = 300
	scriptSystemPrompt    = "You are an expert at turning news articles into natural spoken-narration scripts."
	scriptPromptTemplate  = `Rewrite the following news article as a natural script suitable for reading aloud.

Title: %s
Content: %s

Rules:
1. Keep it short enough to read within one minute.
2. Convert stiff written style into natural spoken language.
3. Structure it so it is easy to follow by ear.
4. Keep the important facts, drop unnecessary detail.
5. Open with a greeting and close with a sign-off.
6. Spell out numbers and jargon so they read naturally.

Script:`
)

// ScriptClient generates narration scripts through the HyperCLOVA chat API.
// It fails open: any remote failure yields a deterministic fallback script
// built from the article itself, so callers never see an error. The second
// return value reports whether the fallback was used.
type ScriptClient struct {
	apiKey        string
	apiKeyPrimary string
	endpoint      string
	httpClient    *http.Client
}

func NewScriptClient(cfg config.Config) *ScriptClient {
	return &ScriptClient{
		apiKey:        cfg.ClovaStudioAPIKey,
		apiKeyPrimary: cfg.ClovaStudioAPIKeyPrimary,
		endpoint:      cfg.ClovaStudioURL,
		httpClient: &http.Client{
			Timeout: scriptRequestTimeout,
		},
	}
}

func (c *ScriptClient) GenerateScript(ctx context.Context, article domain.NewsArticle) (string, bool) {
	payload := map[string]any{
		"messages": []map[string]string{
			{"role": "system", "content": scriptSystemPrompt},
			{"role": "user", "content": fmt.Sprintf(scriptPromptTemplate, article.Title, article.Content)},
		},
		"topP":             0.8,
		"topK":             0,
		"maxTokens":        500,
		"temperature":      0.5,
		"repeatPenalty":    5.0,
		"stopBefore":       []string{},
		"includeAiFilters": true,
	}

	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		log.Printf("script generation encode failed: %v", err)
		return fallbackScript(article), true
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, buf)
	if err != nil {
		log.Printf("script generation request failed: %v", err)
		return fallbackScript(article), true
	}
	req.Header.Set("X-NCP-CLOVASTUDIO-API-KEY", c.apiKey)
	req.Header.Set("X-NCP-CLOVASTUDIO-API-KEY-PRIMARY", c.apiKeyPrimary)
	req.Header.Set("X-NCP-CLOVASTUDIO-REQUEST-ID", uuid.NewString())
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("script generation failed: %v", err)
		return fallbackScript(article), true
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("script generation failed: status %d", resp.StatusCode)
		return fallbackScript(article), true
	}

	var response struct {
		Result struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		log.Printf("script generation decode failed: %v", err)
		return fallbackScript(article), true
	}

	script := strings.TrimSpace(response.Result.Message.Content)
	if script == "" {
		return fallbackScript(article), true
	}

	return script, false
}

// fallbackScript wraps the truncated article body in fixed intro/outro phrases.
func fallbackScript(article domain.NewsArticle) string {
	content := article.Content
	runes := []rune(content)
	if len(runes) > fallbackContentRunes {
		content = string(runes[:fallbackContentRunes]) + "..."
	}

	return fmt.Sprintf(
		"Hello, here is today's news.\n\n%s\n\n%s\n\nPlease see the original article for the full story. That concludes this report.",
		article.Title, content,
	)
}

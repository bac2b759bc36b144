package http

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/NAVER-CLOUD-3-ANDROID/swen-backend/internal/config"
	"github.com/NAVER-CLOUD-3-ANDROID/swen-backend/internal/domain"
	"github.com/NAVER-CLOUD-3-ANDROID/swen-backend/internal/services"
	"github.com/NAVER-CLOUD-3-ANDROID/swen-backend/internal/storage"
)

type API struct {
	cfg      config.Config
	store    *storage.Store
	news     services.ArticleSearcher
	scripts  services.ScriptGenerator
	speech   *services.SpeechService
	pipeline *services.NewsAudioService
}

func NewAPI(cfg config.Config, store *storage.Store, news services.ArticleSearcher, scripts services.ScriptGenerator, speech *services.SpeechService, pipeline *services.NewsAudioService) *API {
	return &API{cfg: cfg, store: store, news: news, scripts: scripts, speech: speech, pipeline: pipeline}
}

func registerRoutes(r *gin.Engine, api *API) {
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", api.handleHealth)

		newsGroup := apiGroup.Group("/news")
		{
			newsGroup.POST("/collect", api.handleCollectNews)
			newsGroup.GET("/random", api.handleRandomNews)
			newsGroup.POST("/script/generate", api.handleGenerateScript)
			newsGroup.POST("/script/generate-random", api.handleGenerateScriptRandom)

			newsGroup.GET("/with-script/random", api.handleRandomNewsWithScript)
			newsGroup.POST("/with-script/keyword", api.handleKeywordNewsWithScript)
			newsGroup.GET("/with-audio/random", api.handleRandomNewsWithAudio)
			newsGroup.POST("/with-audio/keyword", api.handleKeywordNewsWithAudio)
		}

		speechGroup := apiGroup.Group("/speech")
		{
			speechGroup.GET("/:id", api.handleGetSpeech)
			speechGroup.GET("/:id/audio", api.handleSpeechAudio)
			speechGroup.GET("/by-script/:scriptId", api.handleGetSpeechByScript)
			speechGroup.GET("/by-request/:requestId", api.handleGetSpeechByRequest)
		}
	}
}

func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (a *API) handleCollectNews(c *gin.Context) {
	var payload struct {
		Query string `json:"query"`
		Count int    `json:"count"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}
	}
	if payload.Query == "" {
		payload.Query = "latest news"
	}
	if payload.Count <= 0 {
		payload.Count = 10
	}

	articles := a.news.Search(c.Request.Context(), payload.Query, payload.Count, 1, "date")

	saved := make([]domain.NewsArticle, 0, len(articles))
	for _, article := range articles {
		stored, err := a.store.SaveArticle(article)
		if err != nil {
			log.Printf("article save failed: %s: %v", article.Title, err)
			continue
		}
		saved = append(saved, stored)
	}

	c.JSON(http.StatusOK, saved)
}

func (a *API) handleRandomNews(c *gin.Context) {
	article, err := a.store.RandomArticle()
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if article == nil {
		respondMessage(c, http.StatusNotFound, "no news found")
		return
	}

	script, err := a.store.ScriptByNewsID(article.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"news": article, "script": script})
}

func (a *API) handleGenerateScript(c *gin.Context) {
	var payload struct {
		NewsID string `json:"newsId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	article, err := a.store.ArticleByID(payload.NewsID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if article == nil {
		respondMessage(c, http.StatusNotFound, "news not found")
		return
	}

	script, usedFallback := a.scripts.GenerateScript(c.Request.Context(), *article)
	if usedFallback {
		log.Printf("script generation degraded to fallback for article %s", article.ID)
	}

	saved, err := a.store.SaveScript(domain.NewNewsScript(article.ID, script))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, saved)
}

func (a *API) handleGenerateScriptRandom(c *gin.Context) {
	article, err := a.store.RandomArticle()
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if article == nil {
		respondMessage(c, http.StatusNotFound, "no news found")
		return
	}

	existing, err := a.store.ScriptByNewsID(article.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusOK, gin.H{"title": article.Title, "script": existing})
		return
	}

	script, usedFallback := a.scripts.GenerateScript(c.Request.Context(), *article)
	if usedFallback {
		log.Printf("script generation degraded to fallback for article %s", article.ID)
	}

	saved, err := a.store.SaveScript(domain.NewNewsScript(article.ID, script))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"title": article.Title, "script": saved})
}

func (a *API) handleRandomNewsWithScript(c *gin.Context) {
	speaker := c.DefaultQuery("speaker", a.cfg.DefaultSpeaker)
	result := a.pipeline.GenerateRandom(c.Request.Context(), speaker, false)
	respondResult(c, result)
}

func (a *API) handleKeywordNewsWithScript(c *gin.Context) {
	var payload struct {
		Keyword string `json:"keyword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	result := a.pipeline.GenerateByKeyword(c.Request.Context(), strings.TrimSpace(payload.Keyword), a.cfg.DefaultSpeaker, false)
	respondResult(c, result)
}

// The audio endpoints run the pipeline on a background context: an abandoned
// client connection must not cancel a synthesis job that is already billed
// remotely, and its terminal state is persisted either way.
func (a *API) handleRandomNewsWithAudio(c *gin.Context) {
	speaker := c.DefaultQuery("speaker", a.cfg.DefaultSpeaker)
	result := a.pipeline.GenerateRandom(context.Background(), speaker, true)
	respondResult(c, result)
}

func (a *API) handleKeywordNewsWithAudio(c *gin.Context) {
	var payload struct {
		Keyword      string `json:"keyword" binding:"required"`
		Speaker      string `json:"speaker"`
		IncludeAudio *bool  `json:"includeAudio"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	speaker := payload.Speaker
	if speaker == "" {
		speaker = a.cfg.DefaultSpeaker
	}
	includeAudio := payload.IncludeAudio == nil || *payload.IncludeAudio

	result := a.pipeline.GenerateByKeyword(context.Background(), strings.TrimSpace(payload.Keyword), speaker, includeAudio)
	respondResult(c, result)
}

func (a *API) handleGetSpeech(c *gin.Context) {
	speech, err := a.speech.FindSpeechByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if speech == nil {
		respondMessage(c, http.StatusNotFound, "speech not found")
		return
	}
	c.JSON(http.StatusOK, speech)
}

func (a *API) handleGetSpeechByScript(c *gin.Context) {
	speech, err := a.speech.FindSpeechByScriptID(c.Request.Context(), c.Param("scriptId"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if speech == nil {
		respondMessage(c, http.StatusNotFound, "speech not found")
		return
	}
	c.JSON(http.StatusOK, speech)
}

func (a *API) handleGetSpeechByRequest(c *gin.Context) {
	speech, err := a.speech.FindSpeechByRequestID(c.Request.Context(), c.Param("requestId"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if speech == nil {
		respondMessage(c, http.StatusNotFound, "speech not found")
		return
	}
	c.JSON(http.StatusOK, speech)
}

func (a *API) handleSpeechAudio(c *gin.Context) {
	data, err := a.speech.GetAudioFile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if data == nil {
		respondMessage(c, http.StatusNotFound, "audio not found")
		return
	}

	c.Data(http.StatusOK, "audio/mpeg", data)
}

func respondResult(c *gin.Context, result domain.NewsWithAudioResult) {
	if result.Success {
		c.JSON(http.StatusOK, result)
		return
	}

	status := http.StatusBadGateway
	if strings.Contains(result.Error, "no ") && strings.Contains(result.Error, "found") {
		status = http.StatusNotFound
	}
	c.JSON(status, result)
}

func respondError(c *gin.Context, status int, err error) {
	respondMessage(c, status, err.Error())
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

type NewsArticle struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Summary     string `json:"summary,omitempty"`
	PublishedAt string `json:"publishedAt"`
	Category    string `json:"category,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

func NewNewsArticle(title, content, url, publishedAt string) NewsArticle {
	return NewsArticle{
		ID:          uuid.NewString(),
		Title:       title,
		Content:     content,
		URL:         url,
		PublishedAt: publishedAt,
	}
}

type NewsScript struct {
	ID        string `json:"id"`
	NewsID    string `json:"newsId"`
	Script    string `json:"script"`
	AudioURL  string `json:"audioUrl,omitempty"`
	Duration  int    `json:"duration,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

func NewNewsScript(newsID, script string) NewsScript {
	return NewsScript{
		ID:        "script_" + uuid.NewString(),
		NewsID:    newsID,
		Script:    script,
		CreatedAt: time.Now().Unix(),
	}
}

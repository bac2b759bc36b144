package services

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/NAVER-CLOUD-3-ANDROID/swen-backend/internal/config"
	"github.com/NAVER-CLOUD-3-ANDROID/swen-backend/internal/domain"
)

const newsRequestTimeout = 10 * time.Second

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

var htmlEntityReplacer = strings.NewReplacer(
	"&quot;", `"`,
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
)

// NewsClient searches the Naver news API. It degrades silently: any remote
// failure yields an empty result set, never an error.
type NewsClient struct {
	clientID     string
	clientSecret string
	searchURL    string
	httpClient   *http.Client
}

func NewNewsClient(cfg config.Config) *NewsClient {
	return &NewsClient{
		clientID:     cfg.NaverClientID,
		clientSecret: cfg.NaverClientSecret,
		searchURL:    cfg.NewsSearchURL,
		httpClient: &http.Client{
			Timeout: newsRequestTimeout,
		},
	}
}

func (c *NewsClient) Search(ctx context.Context, query string, display, start int, sort string) []domain.NewsArticle {
	params := url.Values{}
	if query != "" {
		params.Set("query", query)
	}
	params.Set("display", strconv.Itoa(display))
	params.Set("start", strconv.Itoa(start))
	params.Set("sort", sort)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		log.Printf("news search request failed: %v", err)
		return nil
	}
	req.Header.Set("X-Naver-Client-Id", c.clientID)
	req.Header.Set("X-Naver-Client-Secret", c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("news search failed: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("news search failed: status %d", resp.StatusCode)
		return nil
	}

	var payload struct {
		Items []struct {
			Title        string `json:"title"`
			OriginalLink string `json:"originallink"`
			Link         string `json:"link"`
			Description  string `json:"description"`
			PubDate      string `json:"pubDate"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Printf("news search decode failed: %v", err)
		return nil
	}

	articles := make([]domain.NewsArticle, 0, len(payload.Items))
	for _, item := range payload.Items {
		articles = append(articles, domain.NewNewsArticle(
			stripHTML(item.Title),
			stripHTML(item.Description),
			item.Link,
			item.PubDate,
		))
	}
	return articles
}

func stripHTML(s string) string {
	return htmlEntityReplacer.Replace(htmlTagPattern.ReplaceAllString(s, ""))
}

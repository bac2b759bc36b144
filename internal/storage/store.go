package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/NAVER-CLOUD-3-ANDROID/swen-backend/internal/domain"
)

type metaData struct {
	Articles map[string]domain.NewsArticle `json:"articles"`
	Scripts  map[string]domain.NewsScript  `json:"scripts"`
	Speeches map[string]domain.Speech      `json:"speeches"`
}

// Store keeps articles, scripts and speech job records in a single JSON meta
// file. It is the source of truth for job status across process restarts.
type Store struct {
	mu   sync.RWMutex
	path string
	data metaData
}

func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	store := &Store{path: filepath.Join(baseDir, "meta.json")}
	if err := store.Load(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = metaData{
		Articles: map[string]domain.NewsArticle{},
		Scripts:  map[string]domain.NewsScript{},
		Speeches: map[string]domain.Speech{},
	}

	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return s.saveLocked()
	}
	if err != nil {
		return fmt.Errorf("open meta file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&s.data); err != nil {
		if errors.Is(err, io.EOF) {
			return s.saveLocked()
		}
		return fmt.Errorf("decode meta file: %w", err)
	}

	s.ensureMaps()
	return nil
}

// Speech job records ------------------------------------------------------

func (s *Store) SaveSpeech(_ context.Context, speech domain.Speech) (domain.Speech, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureMaps()
	s.data.Speeches[speech.ID] = speech

	if err := s.saveLocked(); err != nil {
		return domain.Speech{}, err
	}
	return speech, nil
}

func (s *Store) SpeechByID(_ context.Context, id string) (*domain.Speech, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	speech, ok := s.data.Speeches[id]
	if !ok {
		return nil, nil
	}
	return &speech, nil
}

func (s *Store) SpeechByScriptID(_ context.Context, scriptID string) (*domain.Speech, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, speech := range s.data.Speeches {
		if speech.ScriptID == scriptID {
			found := speech
			return &found, nil
		}
	}
	return nil, nil
}

func (s *Store) SpeechByRequestID(_ context.Context, requestID string) (*domain.Speech, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, speech := range s.data.Speeches {
		if speech.RequestID != "" && speech.RequestID == requestID {
			found := speech
			return &found, nil
		}
	}
	return nil, nil
}

// UpdateSpeech overwrites the stored record matched by id. There is no
// optimistic concurrency: the last writer wins.
func (s *Store) UpdateSpeech(_ context.Context, speech domain.Speech) (domain.Speech, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Speeches[speech.ID]; !ok {
		return domain.Speech{}, fmt.Errorf("speech %s not found", speech.ID)
	}

	s.data.Speeches[speech.ID] = speech

	if err := s.saveLocked(); err != nil {
		return domain.Speech{}, err
	}
	return speech, nil
}

func (s *Store) DeleteSpeech(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Speeches[id]; !ok {
		return false, nil
	}
	delete(s.data.Speeches, id)

	if err := s.saveLocked(); err != nil {
		return false, err
	}
	return true, nil
}

// StaleProcessing returns records still in PROCESSING whose updatedAt is older
// than the given age, typically jobs orphaned by a crash.
func (s *Store) StaleProcessing(_ context.Context, olderThan time.Duration) ([]domain.Speech, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := time.Now().Add(-olderThan)
	stale := make([]domain.Speech, 0)
	for _, speech := range s.data.Speeches {
		if speech.Status == domain.SpeechStatusProcessing && speech.UpdatedAt.Before(cutoff) {
			stale = append(stale, speech)
		}
	}
	return stale, nil
}

// News articles -----------------------------------------------------------

func (s *Store) SaveArticle(article domain.NewsArticle) (domain.NewsArticle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureMaps()
	s.data.Articles[article.ID] = article

	if err := s.saveLocked(); err != nil {
		return domain.NewsArticle{}, err
	}
	return article, nil
}

func (s *Store) ArticleByID(id string) (*domain.NewsArticle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	article, ok := s.data.Articles[id]
	if !ok {
		return nil, nil
	}
	return &article, nil
}

func (s *Store) ListArticles() []domain.NewsArticle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	articles := make([]domain.NewsArticle, 0, len(s.data.Articles))
	for _, article := range s.data.Articles {
		articles = append(articles, article)
	}
	return articles
}

func (s *Store) RandomArticle() (*domain.NewsArticle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.data.Articles) == 0 {
		return nil, nil
	}

	pick := rand.Intn(len(s.data.Articles))
	for _, article := range s.data.Articles {
		if pick == 0 {
			found := article
			return &found, nil
		}
		pick--
	}
	return nil, nil
}

// News scripts ------------------------------------------------------------

func (s *Store) SaveScript(script domain.NewsScript) (domain.NewsScript, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureMaps()
	s.data.Scripts[script.ID] = script

	if err := s.saveLocked(); err != nil {
		return domain.NewsScript{}, err
	}
	return script, nil
}

func (s *Store) ScriptByID(id string) (*domain.NewsScript, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	script, ok := s.data.Scripts[id]
	if !ok {
		return nil, nil
	}
	return &script, nil
}

func (s *Store) ScriptByNewsID(newsID string) (*domain.NewsScript, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, script := range s.data.Scripts {
		if script.NewsID == newsID {
			found := script
			return &found, nil
		}
	}
	return nil, nil
}

// -------------------------------------------------------------------------

func (s *Store) saveLocked() error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "meta-*.json")
	if err != nil {
		return fmt.Errorf("create temp meta: %w", err)
	}

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s.data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encode meta: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp meta: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace meta file: %w", err)
	}

	return nil
}

func (s *Store) ensureMaps() {
	if s.data.Articles == nil {
		s.data.Articles = map[string]domain.NewsArticle{}
	}
	if s.data.Scripts == nil {
		s.data.Scripts = map[string]domain.NewsScript{}
	}
	if s.data.Speeches == nil {
		s.data.Speeches = map[string]domain.Speech{}
	}
}

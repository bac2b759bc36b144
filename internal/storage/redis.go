package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/NAVER-CLOUD-3-ANDROID/swen-backend/internal/domain"
)

const speechIDSet = "speech:ids"

// RedisSpeechStore keeps one hash per job record plus index keys for the
// scriptId and requestId lookups.
type RedisSpeechStore struct {
	client *redis.Client
}

func NewRedisSpeechStore(ctx context.Context, addr, password string, db int) (*RedisSpeechStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisSpeechStore{client: client}, nil
}

func (r *RedisSpeechStore) SaveSpeech(ctx context.Context, speech domain.Speech) (domain.Speech, error) {
	if err := r.write(ctx, speech); err != nil {
		return domain.Speech{}, err
	}
	return speech, nil
}

func (r *RedisSpeechStore) SpeechByID(ctx context.Context, id string) (*domain.Speech, error) {
	fields, err := r.client.HGetAll(ctx, speechKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("read speech %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	speech, err := speechFromFields(fields)
	if err != nil {
		return nil, err
	}
	return &speech, nil
}

func (r *RedisSpeechStore) SpeechByScriptID(ctx context.Context, scriptID string) (*domain.Speech, error) {
	return r.byIndex(ctx, scriptIndexKey(scriptID))
}

func (r *RedisSpeechStore) SpeechByRequestID(ctx context.Context, requestID string) (*domain.Speech, error) {
	return r.byIndex(ctx, requestIndexKey(requestID))
}

func (r *RedisSpeechStore) UpdateSpeech(ctx context.Context, speech domain.Speech) (domain.Speech, error) {
	exists, err := r.client.Exists(ctx, speechKey(speech.ID)).Result()
	if err != nil {
		return domain.Speech{}, fmt.Errorf("check speech %s: %w", speech.ID, err)
	}
	if exists == 0 {
		return domain.Speech{}, fmt.Errorf("speech %s not found", speech.ID)
	}

	if err := r.write(ctx, speech); err != nil {
		return domain.Speech{}, err
	}
	return speech, nil
}

func (r *RedisSpeechStore) DeleteSpeech(ctx context.Context, id string) (bool, error) {
	speech, err := r.SpeechByID(ctx, id)
	if err != nil {
		return false, err
	}
	if speech == nil {
		return false, nil
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, speechKey(id))
	pipe.SRem(ctx, speechIDSet, id)
	pipe.Del(ctx, scriptIndexKey(speech.ScriptID))
	if speech.RequestID != "" {
		pipe.Del(ctx, requestIndexKey(speech.RequestID))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("delete speech %s: %w", id, err)
	}
	return true, nil
}

func (r *RedisSpeechStore) StaleProcessing(ctx context.Context, olderThan time.Duration) ([]domain.Speech, error) {
	ids, err := r.client.SMembers(ctx, speechIDSet).Result()
	if err != nil {
		return nil, fmt.Errorf("list speech ids: %w", err)
	}

	cutoff := time.Now().Add(-olderThan)
	stale := make([]domain.Speech, 0)
	for _, id := range ids {
		speech, err := r.SpeechByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if speech == nil {
			continue
		}
		if speech.Status == domain.SpeechStatusProcessing && speech.UpdatedAt.Before(cutoff) {
			stale = append(stale, *speech)
		}
	}
	return stale, nil
}

func (r *RedisSpeechStore) byIndex(ctx context.Context, indexKey string) (*domain.Speech, error) {
	id, err := r.client.Get(ctx, indexKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read index %s: %w", indexKey, err)
	}
	return r.SpeechByID(ctx, id)
}

func (r *RedisSpeechStore) write(ctx context.Context, speech domain.Speech) error {
	fields := map[string]interface{}{
		"id":            speech.ID,
		"script_id":     speech.ScriptID,
		"request_id":    speech.RequestID,
		"speaker":       speech.Speaker,
		"status":        string(speech.Status),
		"audio_url":     speech.AudioURL,
		"download_url":  speech.DownloadURL,
		"error_message": speech.ErrorMessage,
		"created_at":    speech.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at":    speech.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, speechKey(speech.ID), fields)
	pipe.SAdd(ctx, speechIDSet, speech.ID)
	pipe.Set(ctx, scriptIndexKey(speech.ScriptID), speech.ID, 0)
	if speech.RequestID != "" {
		pipe.Set(ctx, requestIndexKey(speech.RequestID), speech.ID, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write speech %s: %w", speech.ID, err)
	}
	return nil
}

func speechFromFields(fields map[string]string) (domain.Speech, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return domain.Speech{}, fmt.Errorf("parse created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, fields["updated_at"])
	if err != nil {
		return domain.Speech{}, fmt.Errorf("parse updated_at: %w", err)
	}

	return domain.Speech{
		ID:           fields["id"],
		ScriptID:     fields["script_id"],
		RequestID:    fields["request_id"],
		Speaker:      fields["speaker"],
		Status:       domain.SpeechStatus(fields["status"]),
		AudioURL:     fields["audio_url"],
		DownloadURL:  fields["download_url"],
		ErrorMessage: fields["error_message"],
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

func speechKey(id string) string {
	return fmt.Sprintf("speech:%s", id)
}

func scriptIndexKey(scriptID string) string {
	return fmt.Sprintf("speech:script:%s", scriptID)
}

func requestIndexKey(requestID string) string {
	return fmt.Sprintf("speech:request:%s", requestID)
}

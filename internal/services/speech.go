package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/NAVER-CLOUD-3-ANDROID/swen-backend/internal/domain"
)

// SynthesisGateway is the client protocol to the remote batch TTS service.
type SynthesisGateway interface {
	Submit(ctx context.Context, request SpeechRequest) (SubmitResponse, error)
	PollStatus(ctx context.Context, requestID string) (StatusResponse, error)
	WaitForCompletion(ctx context.Context, requestID string) (StatusResponse, error)
	Download(ctx context.Context, downloadURL string) ([]byte, error)
}

// SpeechStore persists speech job records. Lookups return (nil, nil) when no
// record matches.
type SpeechStore interface {
	SaveSpeech(ctx context.Context, speech domain.Speech) (domain.Speech, error)
	SpeechByID(ctx context.Context, id string) (*domain.Speech, error)
	SpeechByScriptID(ctx context.Context, scriptID string) (*domain.Speech, error)
	SpeechByRequestID(ctx context.Context, requestID string) (*domain.Speech, error)
	UpdateSpeech(ctx context.Context, speech domain.Speech) (domain.Speech, error)
	DeleteSpeech(ctx context.Context, id string) (bool, error)
	StaleProcessing(ctx context.Context, olderThan time.Duration) ([]domain.Speech, error)
}

// ArtifactStore persists downloaded audio artifacts. ReadAudio returns
// (nil, nil) when the artifact is missing.
type ArtifactStore interface {
	SaveAudio(ctx context.Context, data []byte, name string) (string, error)
	ReadAudio(ctx context.Context, path string) ([]byte, error)
}

// SpeechService drives one synthesis job end to end: create the record,
// submit, wait for a terminal status, then persist the artifact or the
// failure. Errors are recorded best-effort and always re-raised.
type SpeechService struct {
	gateway   SynthesisGateway
	store     SpeechStore
	artifacts ArtifactStore
}

func NewSpeechService(gateway SynthesisGateway, store SpeechStore, artifacts ArtifactStore) *SpeechService {
	return &SpeechService{gateway: gateway, store: store, artifacts: artifacts}
}

func (s *SpeechService) GenerateSpeechFromScript(ctx context.Context, scriptID, scriptText, speaker string) (domain.Speech, error) {
	speech, err := s.generate(ctx, scriptID, scriptText, speaker)
	if err != nil {
		s.recordFailure(ctx, scriptID, err)
		return domain.Speech{}, err
	}
	return speech, nil
}

func (s *SpeechService) generate(ctx context.Context, scriptID, scriptText, speaker string) (domain.Speech, error) {
	speech, err := s.store.SaveSpeech(ctx, domain.NewSpeech(scriptID, speaker))
	if err != nil {
		return domain.Speech{}, fmt.Errorf("save speech record: %w", err)
	}

	submitted, err := s.gateway.Submit(ctx, NewSpeechRequest(scriptText, speaker))
	if err != nil {
		return domain.Speech{}, err
	}

	speech, err = s.store.UpdateSpeech(ctx, speech.WithRequestID(submitted.RequestID))
	if err != nil {
		return domain.Speech{}, fmt.Errorf("attach request id: %w", err)
	}

	status, err := s.gateway.WaitForCompletion(ctx, submitted.RequestID)
	if err != nil {
		return domain.Speech{}, err
	}

	if status.DownloadURL == "" {
		return domain.Speech{}, errors.New("synthesis completed without a download url")
	}

	return s.finalize(ctx, speech, status.DownloadURL)
}

// finalize downloads the artifact, stores it under the job id and records the
// terminal COMPLETED state.
func (s *SpeechService) finalize(ctx context.Context, speech domain.Speech, downloadURL string) (domain.Speech, error) {
	data, err := s.gateway.Download(ctx, downloadURL)
	if err != nil {
		return domain.Speech{}, err
	}

	audioURL, err := s.artifacts.SaveAudio(ctx, data, speech.ID)
	if err != nil {
		return domain.Speech{}, fmt.Errorf("store audio artifact: %w", err)
	}

	speech, err = s.store.UpdateSpeech(ctx, speech.WithCompleted(downloadURL, audioURL))
	if err != nil {
		return domain.Speech{}, fmt.Errorf("record completion: %w", err)
	}
	return speech, nil
}

// recordFailure marks the job FAILED with the failure's message, best effort.
// When no record exists for the script the error is simply re-raised by the
// caller without a persisted failure state.
func (s *SpeechService) recordFailure(ctx context.Context, scriptID string, cause error) {
	speech, err := s.store.SpeechByScriptID(ctx, scriptID)
	if err != nil {
		log.Printf("failure lookup for script %s failed: %v", scriptID, err)
		return
	}
	if speech == nil {
		return
	}

	if _, err := s.store.UpdateSpeech(ctx, speech.WithFailed(cause.Error())); err != nil {
		log.Printf("could not record failure for speech %s: %v", speech.ID, err)
	}
}

func (s *SpeechService) FindSpeechByScriptID(ctx context.Context, scriptID string) (*domain.Speech, error) {
	return s.store.SpeechByScriptID(ctx, scriptID)
}

func (s *SpeechService) FindSpeechByID(ctx context.Context, id string) (*domain.Speech, error) {
	return s.store.SpeechByID(ctx, id)
}

func (s *SpeechService) FindSpeechByRequestID(ctx context.Context, requestID string) (*domain.Speech, error) {
	return s.store.SpeechByRequestID(ctx, requestID)
}

// GetAudioFile loads the stored artifact for a completed job. Returns
// (nil, nil) when the job or its artifact is missing.
func (s *SpeechService) GetAudioFile(ctx context.Context, speechID string) ([]byte, error) {
	speech, err := s.store.SpeechByID(ctx, speechID)
	if err != nil {
		return nil, err
	}
	if speech == nil || speech.AudioURL == "" {
		return nil, nil
	}
	return s.artifacts.ReadAudio(ctx, speech.AudioURL)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/NAVER-CLOUD-3-ANDROID/swen-backend/internal/domain"
)

// ReconcileStaleSpeeches resolves PROCESSING records that have not advanced
// within olderThan, typically jobs orphaned by a crash mid-poll. Records with
// a request id are re-polled once; records without one never made it past
// submission and are marked failed.
func (s *SpeechService) ReconcileStaleSpeeches(ctx context.Context, olderThan time.Duration) error {
	stale, err := s.store.StaleProcessing(ctx, olderThan)
	if err != nil {
		return fmt.Errorf("scan stale speeches: %w", err)
	}

	for _, speech := range stale {
		if err := s.resolveStale(ctx, speech); err != nil {
			// Race and idempotence errors are expected here; the next
			// reconcile pass grabs anything we missed.
			log.Printf("found stale speech %s but could not resolve it: %v", speech.ID, err)
			continue
		}
		log.Printf("resolved stale speech %s", speech.ID)
	}
	return nil
}

// WatchStaleSpeeches runs the reconciler on a fixed interval until the context
// is cancelled.
func (s *SpeechService) WatchStaleSpeeches(ctx context.Context, interval, olderThan time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.ReconcileStaleSpeeches(ctx, olderThan); err != nil {
				log.Printf("error reconciling stale speeches: %v", err)
			}
		}
	}
}

func (s *SpeechService) resolveStale(ctx context.Context, speech domain.Speech) error {
	if speech.RequestID == "" {
		_, err := s.store.UpdateSpeech(ctx, speech.WithFailed("orphaned before submission"))
		return err
	}

	status, err := s.gateway.PollStatus(ctx, speech.RequestID)
	if err != nil {
		return err
	}

	switch status.Status {
	case DubbingStatusComplete:
		if status.DownloadURL == "" {
			return errors.New("synthesis completed without a download url")
		}
		_, err := s.finalize(ctx, speech, status.DownloadURL)
		return err
	case DubbingStatusFail:
		message := status.Message
		if message == "" {
			message = "unknown synthesis error"
		}
		_, err := s.store.UpdateSpeech(ctx, speech.WithFailed(message))
		return err
	default:
		// Still running remotely. Touch updatedAt so the record leaves the
		// stale window until the next pass.
		_, err := s.store.UpdateSpeech(ctx, speech.WithRequestID(speech.RequestID))
		return err
	}
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/NAVER-CLOUD-3-ANDROID/swen-backend/internal/config"
)

const dubbingRequestTimeout = 30 * time.Second

// Remote job statuses reported by the dubbing service.
const (
	DubbingStatusProgress = "progress"
	DubbingStatusComplete = "complete"
	DubbingStatusFail     = "fail"
)

// ErrSynthesisTimeout is returned when a job does not reach a terminal status
// within the wait deadline. The remote job may still complete later, unobserved.
var ErrSynthesisTimeout = errors.New("speech synthesis timed out")

// RemoteSynthesisError carries the failure reason reported by the dubbing
// service for an accepted job.
type RemoteSynthesisError struct {
	RequestID string
	Message   string
}

func (e *RemoteSynthesisError) Error() string {
	return e.Message
}

// SpeechRequest is the submission payload for one synthesis job.
type SpeechRequest struct {
	Text    string `json:"text"`
	Speaker string `json:"speaker"`
	Speed   int    `json:"speed"`
	Pitch   int    `json:"pitch"`
	Emotion int    `json:"emotion"`
	Format  string `json:"format"`
}

func NewSpeechRequest(scriptText, speaker string) SpeechRequest {
	return SpeechRequest{
		Text:    scriptText,
		Speaker: speaker,
		Format:  "mp3",
	}
}

type SubmitResponse struct {
	RequestID string `json:"requestId"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
}

type StatusResponse struct {
	RequestID   string `json:"requestId"`
	Status      string `json:"status"`
	Message     string `json:"message,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	EditScript  string `json:"editScript,omitempty"`
}

// DubbingClient speaks the batch TTS protocol of the Clova Dubbing service:
// submit a job, poll its status, download the finished artifact.
type DubbingClient struct {
	baseURL      string
	apiKeyID     string
	apiKey       string
	pollInterval time.Duration
	waitDeadline time.Duration
	httpClient   *http.Client
}

func NewDubbingClient(cfg config.Config) *DubbingClient {
	return &DubbingClient{
		baseURL:      strings.TrimRight(cfg.DubbingBaseURL, "/"),
		apiKeyID:     cfg.DubbingAPIKeyID,
		apiKey:       cfg.DubbingAPIKey,
		pollInterval: cfg.PollInterval,
		waitDeadline: cfg.WaitDeadline,
		httpClient: &http.Client{
			Timeout: dubbingRequestTimeout,
		},
	}
}

// Submit sends the synthesis job. The returned requestId is only usable when
// the call succeeds.
func (c *DubbingClient) Submit(ctx context.Context, request SpeechRequest) (SubmitResponse, error) {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(request); err != nil {
		return SubmitResponse{}, fmt.Errorf("encode speech request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, buf)
	if err != nil {
		return SubmitResponse{}, fmt.Errorf("create submit request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SubmitResponse{}, fmt.Errorf("dubbing submit failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return SubmitResponse{}, c.decodeAPIError(resp)
	}

	var payload SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return SubmitResponse{}, fmt.Errorf("decode submit response: %w", err)
	}

	if payload.RequestID == "" {
		return SubmitResponse{}, errors.New("dubbing submit returned no request id")
	}

	return payload, nil
}

// PollStatus fetches the current state of an accepted job.
func (c *DubbingClient) PollStatus(ctx context.Context, requestID string) (StatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+requestID, nil)
	if err != nil {
		return StatusResponse{}, fmt.Errorf("create status request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return StatusResponse{}, fmt.Errorf("dubbing status failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return StatusResponse{}, c.decodeAPIError(resp)
	}

	var payload StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return StatusResponse{}, fmt.Errorf("decode status response: %w", err)
	}

	return payload, nil
}

// Download fetches the finished artifact. This is a separate network call from
// polling and may fail independently, e.g. on an expired URL.
func (c *DubbingClient) Download(ctx context.Context, downloadURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("audio download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("audio download failed: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio data: %w", err)
	}
	return data, nil
}

// WaitForCompletion polls the job at a constant interval until it reaches a
// terminal status or the wall-clock deadline elapses. Unrecognized statuses are
// treated like progress.
func (c *DubbingClient) WaitForCompletion(ctx context.Context, requestID string) (StatusResponse, error) {
	start := time.Now()

	for {
		status, err := c.PollStatus(ctx, requestID)
		if err != nil {
			return StatusResponse{}, err
		}

		switch status.Status {
		case DubbingStatusComplete:
			return status, nil
		case DubbingStatusFail:
			message := status.Message
			if message == "" {
				message = "unknown synthesis error"
			}
			return StatusResponse{}, &RemoteSynthesisError{RequestID: requestID, Message: message}
		}

		if time.Since(start) >= c.waitDeadline {
			return StatusResponse{}, ErrSynthesisTimeout
		}

		select {
		case <-ctx.Done():
			return StatusResponse{}, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *DubbingClient) setHeaders(req *http.Request) {
	req.Header.Set("X-NCP-APIGW-API-KEY-ID", c.apiKeyID)
	req.Header.Set("X-NCP-APIGW-API-KEY", c.apiKey)
}

func (c *DubbingClient) decodeAPIError(resp *http.Response) error {
	var apiErr struct {
		Error struct {
			ErrorCode string `json:"errorCode"`
			Message   string `json:"message"`
		} `json:"error"`
	}

	body, _ := io.ReadAll(resp.Body)

	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("dubbing api error: status %d code %s message %s", resp.StatusCode, apiErr.Error.ErrorCode, apiErr.Error.Message)
	}

	return fmt.Errorf("dubbing api error: status %d body %s", resp.StatusCode, string(body))
}

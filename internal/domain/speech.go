package domain

import (
	"time"

	"github.com/google/uuid"
)

// SpeechStatus is the lifecycle state of one synthesis job. Processing is the
// only initial state; Completed and Failed are terminal.
type SpeechStatus string

const (
	SpeechStatusProcessing SpeechStatus = "PROCESSING"
	SpeechStatusCompleted  SpeechStatus = "COMPLETED"
	SpeechStatusFailed     SpeechStatus = "FAILED"
)

// Speech is the durable record of one speech-synthesis attempt.
type Speech struct {
	ID           string       `json:"id"`
	ScriptID     string       `json:"scriptId"`
	RequestID    string       `json:"requestId,omitempty"`
	Speaker      string       `json:"speaker"`
	Status       SpeechStatus `json:"status"`
	AudioURL     string       `json:"audioUrl,omitempty"`
	DownloadURL  string       `json:"downloadUrl,omitempty"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

func NewSpeech(scriptID, speaker string) Speech {
	now := time.Now()
	return Speech{
		ID:        uuid.NewString(),
		ScriptID:  scriptID,
		Speaker:   speaker,
		Status:    SpeechStatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WithRequestID attaches the remote request id after a successful submission.
func (s Speech) WithRequestID(requestID string) Speech {
	s.RequestID = requestID
	s.UpdatedAt = time.Now()
	return s
}

// WithCompleted transitions the record into its terminal success state. Both
// artifact URLs are set together, exactly once.
func (s Speech) WithCompleted(downloadURL, audioURL string) Speech {
	s.DownloadURL = downloadURL
	s.AudioURL = audioURL
	s.Status = SpeechStatusCompleted
	s.UpdatedAt = time.Now()
	return s
}

// WithFailed transitions the record into its terminal failure state.
func (s Speech) WithFailed(errorMessage string) Speech {
	s.Status = SpeechStatusFailed
	s.ErrorMessage = errorMessage
	s.UpdatedAt = time.Now()
	return s
}

func (s Speech) IsTerminal() bool {
	return s.Status == SpeechStatusCompleted || s.Status == SpeechStatusFailed
}

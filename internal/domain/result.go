package domain

// NewsWithAudioResult is the aggregate outcome of the news-to-audio pipeline.
// Every outcome, including failures, is represented as data; the pipeline never
// propagates an error to its caller.
type NewsWithAudioResult struct {
	Success bool         `json:"success"`
	News    *NewsArticle `json:"news,omitempty"`
	Script  *NewsScript  `json:"script,omitempty"`
	Speech  *Speech      `json:"speech,omitempty"`
	Message string       `json:"message"`
	Error   string       `json:"error,omitempty"`
}

func SuccessResult(news NewsArticle, script NewsScript, speech *Speech, message string) NewsWithAudioResult {
	return NewsWithAudioResult{
		Success: true,
		News:    &news,
		Script:  &script,
		Speech:  speech,
		Message: message,
	}
}

func FailureResult(errorMessage string) NewsWithAudioResult {
	return NewsWithAudioResult{
		Success: false,
		Message: "failed",
		Error:   errorMessage,
	}
}

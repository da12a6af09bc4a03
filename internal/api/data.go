package api

// TranscribeRequest submits a transcript acquisition job.
type TranscribeRequest struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// TranscribeResponse acknowledges an accepted job.
type TranscribeResponse struct {
	ID string `json:"id"`
}

// ProgressMsg is a coarse percent-complete update, also pushed over the
// progress WebSocket. Done marks the terminal message.
type ProgressMsg struct {
	ID      string `json:"id"`
	Percent int    `json:"percent"`
	Done    bool   `json:"done,omitempty"`
}

// ErrorMsg is the body of non-2xx JSON answers.
type ErrorMsg struct {
	Error string `json:"error"`
}

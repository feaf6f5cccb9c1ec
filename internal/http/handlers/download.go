package handlers

import (
	"encoding/json"
	"net/http"

	"mergeq/internal/queue"
)

type downloadRequest struct {
	URL      string `json:"url"`
	Itag     string `json:"itag"`
	Output   string `json:"output"`
	Filename string `json:"filename"`
}

// Download accepts a fetch-and-merge request and returns immediately with a
// job id; success or failure is only visible through later status queries.
func (a *App) Download(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.URL == "" || req.Itag == "" {
		a.fail(w, http.StatusBadRequest, "Missing url or itag")
		return
	}
	output := req.Output
	if output == "" {
		output = "mp4"
	}

	id, err := a.Queue.Submit(r.Context(), queue.SubmitRequest{
		SourceURL:    req.URL,
		StreamID:     req.Itag,
		Container:    output,
		FilenameHint: req.Filename,
		Requester:    r.RemoteAddr,
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: enqueue failed")
		a.fail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	a.json(w, http.StatusAccepted, map[string]any{
		"status":  true,
		"jobId":   id,
		"message": "Job queued",
	})
}

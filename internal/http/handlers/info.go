package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type infoRequest struct {
	URL string `json:"url"`
}

type formatSummary struct {
	Itag         string `json:"itag"`
	Ext          string `json:"ext"`
	QualityLabel string `json:"qualityLabel,omitempty"`
	HasVideo     bool   `json:"hasVideo"`
	HasAudio     bool   `json:"hasAudio"`
}

// Info returns the stream catalog of a source URL so clients can pick a
// format before submitting a download.
func (a *App) Info(w http.ResponseWriter, r *http.Request) {
	var req infoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		a.fail(w, http.StatusBadRequest, "Missing url")
		return
	}

	cat, err := a.Catalog.GetCatalog(r.Context(), req.URL)
	if err != nil {
		a.Logger.Error().Err(err).Str("url", req.URL).Msg("handlers: catalog lookup failed")
		a.fail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	formats := make([]formatSummary, 0, len(cat.Streams))
	for _, d := range cat.Streams {
		summary := formatSummary{
			Itag:     d.StreamID,
			Ext:      d.Container,
			HasVideo: d.HasVideo,
			HasAudio: d.HasAudio,
		}
		if d.HeightPx > 0 {
			summary.QualityLabel = fmt.Sprintf("%dp", d.HeightPx)
		}
		formats = append(formats, summary)
	}

	a.json(w, http.StatusOK, map[string]any{
		"status": true,
		"data": map[string]any{
			"title":     cat.Title,
			"duration":  cat.Duration,
			"thumbnail": cat.Thumbnail,
			"formats":   formats,
		},
	})
}

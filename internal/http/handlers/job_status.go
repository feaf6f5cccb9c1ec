package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mergeq/internal/domain"
)

// JobStatus reports the reconciled state of a job: live queue state when the
// record exists, the cached result when the queue has already pruned it.
func (a *App) JobStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		a.fail(w, http.StatusBadRequest, "Missing job id")
		return
	}

	st, err := a.Status.GetStatus(r.Context(), id)
	if err != nil {
		a.Logger.Error().Err(err).Str("job_id", id).Msg("handlers: status lookup failed")
		a.fail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if st.State == domain.JobStateNotFound {
		a.fail(w, http.StatusNotFound, "Job not found")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"status":   true,
		"jobId":    st.ID,
		"state":    st.State,
		"progress": st.Progress,
		"result":   st.Result,
	})
}

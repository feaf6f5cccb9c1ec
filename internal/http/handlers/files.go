package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ServeDownload streams a locally published artifact. Only meaningful when
// the local publisher is active; with object storage the result URL points
// at the bucket instead.
func (a *App) ServeDownload(w http.ResponseWriter, r *http.Request) {
	if a.Local == nil {
		a.fail(w, http.StatusNotFound, "Not found")
		return
	}

	filename := chi.URLParam(r, "filename")
	path, err := a.Local.Resolve(filename)
	if err != nil {
		a.fail(w, http.StatusNotFound, "Not found")
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	http.ServeFile(w, r, path)
}

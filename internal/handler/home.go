package handler

import (
	"net/http"
)

// HandleHome answers the root path with the service banner. Any other
// unmatched path is a JSON 404.
func HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, codeNotFound, "Resource not found.")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("irhis Backend"))
}

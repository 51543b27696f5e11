package main

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	groundwork "github.com/calebwray/groundwork"
)

const maxBodyBytes = 1 << 20

// newRouter wires the procedure table and the health endpoint. The
// identity check happens once here, before dispatch; handlers trust the
// caller they are given.
func newRouter(engine *groundwork.Engine, auth *authenticator) http.Handler {
	mux := http.NewServeMux()

	h := &handlers{engine: engine}
	procs := h.procedures()

	mux.HandleFunc("POST /rpc/{procedure}", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("procedure")
		proc, ok := procs[name]
		if !ok {
			writeError(w, groundwork.NotFound("Unknown procedure: %s", name))
			return
		}

		caller := auth.identify(r)
		if proc.protected && caller == nil {
			writeError(w, groundwork.Unauthorized("Authentication required"))
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				e := groundwork.BadRequest("Request body exceeds %d bytes", tooBig.Limit)
				writeJSON(w, http.StatusRequestEntityTooLarge, map[string]*groundwork.Error{"error": e})
				return
			}
			writeError(w, groundwork.BadRequest("Failed to read request body"))
			return
		}
		// no body means no arguments
		if len(bytes.TrimSpace(body)) == 0 {
			body = []byte("{}")
		}

		result, err := proc.call(r.Context(), caller, body)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	mux.HandleFunc("GET /healthz", h.handleHealth)

	return mux
}

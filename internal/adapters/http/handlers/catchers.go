package handlers

import (
	"net/http"

	"github.com/jsamuelsen11/user-lookup-service/internal/adapters/http/dto"
)

// NotFound answers requests that match no route, including a known path
// requested with an unsupported method.
func NotFound(w http.ResponseWriter, r *http.Request) {
	dto.WriteFallback(w, r, http.StatusNotFound)
}

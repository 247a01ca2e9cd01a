// Package handlers provides HTTP request handlers for the service's API endpoints.
package handlers

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/jsamuelsen11/user-lookup-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/user-lookup-service/internal/domain/user"
	"github.com/jsamuelsen11/user-lookup-service/internal/platform/logging"
	"github.com/jsamuelsen11/user-lookup-service/internal/ports"
)

// Route parameter names.
const (
	ParamID        = "id"
	ParamNameGrade = "nameGrade"
)

// UserHandler handles the user lookup endpoints.
type UserHandler struct {
	svc ports.UserService
}

// NewUserHandler creates a new UserHandler with the given service port.
func NewUserHandler(svc ports.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// GetUser handles GET /user/{id}.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	raw, err := pathParam(r, ParamID, "id", user.MsgParseUserID)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	id, err := user.ParseID(raw)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	u, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeRendered(w, r, dto.RenderUser(u))
}

// SearchUsers handles GET /users/{nameGrade}?age=&active=.
func (h *UserHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	segment, err := pathParam(r, ParamNameGrade, "name_grade", user.MsgParseUserParam)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	ng, err := user.ParseNameGrade(segment)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	filters, err := parseFilters(r)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	users, err := h.svc.SearchUsers(r.Context(), user.NewSearchFilter(ng, filters))
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeRendered(w, r, dto.RenderUsers(users))
}

// pathParam returns the decoded value of a route parameter. chi matches on
// RawPath whenever the request kept one, and then the captured value is still
// percent-encoded; otherwise it comes from the already decoded Path and must
// not be unescaped twice ("50%25_4" is the name "50%").
func pathParam(r *http.Request, key, param, msg string) (string, error) {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v, nil
	}
	decoded, err := url.PathUnescape(v)
	if err != nil {
		return "", &user.ParseError{Param: param, Value: v, Msg: msg}
	}
	return decoded, nil
}

func writeRendered(w http.ResponseWriter, r *http.Request, rd dto.Rendered) {
	if err := rd.Write(w, http.StatusOK); err != nil {
		logging.FromContext(r.Context()).ErrorContext(r.Context(), "failed to write response",
			slog.Any("error", err),
		)
	}
}

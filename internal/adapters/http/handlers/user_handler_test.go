package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen11/user-lookup-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/user-lookup-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/user-lookup-service/internal/domain"
	"github.com/jsamuelsen11/user-lookup-service/internal/domain/user"
	"github.com/jsamuelsen11/user-lookup-service/mocks"
)

// --- GetUser ---

func TestUserHandler_GetUser(t *testing.T) {
	t.Parallel()

	t.Run("returns 200 with headers", func(t *testing.T) {
		t.Parallel()
		svc := mocks.NewMockUserService(t)
		u := validUser()
		svc.EXPECT().GetUser(mock.Anything, testID).Return(&u, nil)

		h := handlers.NewUserHandler(svc)
		rec := httptest.NewRecorder()
		req := withChiParams(httptest.NewRequest(http.MethodGet, "/user/"+testID.String(), nil),
			map[string]string{handlers.ParamID: testID.String()})
		h.GetUser(rec, req)

		requireStatus(t, rec, http.StatusOK)
		if want := "Found user: " + u.Summary(); rec.Body.String() != want {
			t.Errorf("body = %q, want %q", rec.Body.String(), want)
		}
		if got := rec.Header().Get(dto.HeaderUserID); got != testID.String() {
			t.Errorf("%s = %q, want %q", dto.HeaderUserID, got, testID.String())
		}
		if got := rec.Header().Get(dto.HeaderCustomID); got != dto.CustomIDDefault {
			t.Errorf("%s = %q, want %q", dto.HeaderCustomID, got, dto.CustomIDDefault)
		}
	})

	t.Run("returns 400 for malformed id without calling service", func(t *testing.T) {
		t.Parallel()
		svc := mocks.NewMockUserService(t)

		h := handlers.NewUserHandler(svc)
		for _, raw := range []string{"abc", "{0b6e0c86-6a0c-4c4b-9c63-4c4fa0c4a8f1}", "0b6e0c866a0c4c4b9c634c4fa0c4a8f1"} {
			rec := httptest.NewRecorder()
			req := withChiParams(httptest.NewRequest(http.MethodGet, "/user/x", nil),
				map[string]string{handlers.ParamID: raw})
			h.GetUser(rec, req)

			requireStatus(t, rec, http.StatusBadRequest)
		}
	})

	t.Run("returns 404 fallback when missing", func(t *testing.T) {
		t.Parallel()
		svc := mocks.NewMockUserService(t)
		svc.EXPECT().GetUser(mock.Anything, testID).Return(nil, domain.ErrNotFound)

		h := handlers.NewUserHandler(svc)
		rec := httptest.NewRecorder()
		req := withChiParams(httptest.NewRequest(http.MethodGet, "/user/"+testID.String(), nil),
			map[string]string{handlers.ParamID: testID.String()})
		h.GetUser(rec, req)

		requireStatus(t, rec, http.StatusNotFound)
		if want := "We cannot find this page /user/" + testID.String() + "."; rec.Body.String() != want {
			t.Errorf("body = %q, want %q", rec.Body.String(), want)
		}
	})

	t.Run("returns 500 on backend failure", func(t *testing.T) {
		t.Parallel()
		svc := mocks.NewMockUserService(t)
		svc.EXPECT().GetUser(mock.Anything, testID).
			Return(nil, &domain.BackendError{Op: "FindByID", Cause: domain.CauseBackend, Err: errors.New("dial tcp: refused")})

		h := handlers.NewUserHandler(svc)
		rec := httptest.NewRecorder()
		req := withChiParams(httptest.NewRequest(http.MethodGet, "/user/"+testID.String(), nil),
			map[string]string{handlers.ParamID: testID.String()})
		h.GetUser(rec, req)

		requireStatus(t, rec, http.StatusInternalServerError)
		if strings.Contains(rec.Body.String(), "refused") {
			t.Errorf("body leaks driver error: %s", rec.Body.String())
		}
	})
}

// --- SearchUsers ---

func TestUserHandler_SearchUsers(t *testing.T) {
	t.Parallel()

	second := validUser()
	second.ID = uuid.MustParse("22222222-2222-4222-8222-222222222222")
	second.Name = "johnny"

	t.Run("returns collection without filters", func(t *testing.T) {
		t.Parallel()
		svc := mocks.NewMockUserService(t)
		want := user.NewSearchFilter(user.NameGrade{Name: "john", Grade: 3}, nil)
		svc.EXPECT().SearchUsers(mock.Anything, want).Return([]user.User{validUser(), second}, nil)

		h := handlers.NewUserHandler(svc)
		rec := httptest.NewRecorder()
		req := withChiParams(httptest.NewRequest(http.MethodGet, "/users/john_3", nil),
			map[string]string{handlers.ParamNameGrade: "john_3"})
		h.SearchUsers(rec, req)

		requireStatus(t, rec, http.StatusOK)
		first := validUser()
		if body := rec.Body.String(); body != first.Summary()+","+second.Summary() {
			t.Errorf("body = %q", body)
		}
		if got := rec.Header().Get(dto.HeaderCustomID); got != dto.CustomIDUsers {
			t.Errorf("%s = %q, want %q", dto.HeaderCustomID, got, dto.CustomIDUsers)
		}
	})

	t.Run("passes filters to service", func(t *testing.T) {
		t.Parallel()
		svc := mocks.NewMockUserService(t)
		want := user.NewSearchFilter(user.NameGrade{Name: "john", Grade: 3}, &user.Filters{Age: 21, Active: true})
		svc.EXPECT().SearchUsers(mock.Anything, want).Return([]user.User{validUser()}, nil)

		h := handlers.NewUserHandler(svc)
		rec := httptest.NewRecorder()
		req := withChiParams(httptest.NewRequest(http.MethodGet, "/users/john_3?age=21&active=true", nil),
			map[string]string{handlers.ParamNameGrade: "john_3"})
		h.SearchUsers(rec, req)

		requireStatus(t, rec, http.StatusOK)
	})

	t.Run("returns 404 fallback on empty result", func(t *testing.T) {
		t.Parallel()
		svc := mocks.NewMockUserService(t)
		svc.EXPECT().SearchUsers(mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)

		h := handlers.NewUserHandler(svc)
		rec := httptest.NewRecorder()
		req := withChiParams(httptest.NewRequest(http.MethodGet, "/users/zed_9", nil),
			map[string]string{handlers.ParamNameGrade: "zed_9"})
		h.SearchUsers(rec, req)

		requireStatus(t, rec, http.StatusNotFound)
		if want := "We cannot find this page /users/zed_9."; rec.Body.String() != want {
			t.Errorf("body = %q, want %q", rec.Body.String(), want)
		}
	})

	t.Run("returns 500 on backend failure", func(t *testing.T) {
		t.Parallel()
		svc := mocks.NewMockUserService(t)
		svc.EXPECT().SearchUsers(mock.Anything, mock.Anything).
			Return(nil, &domain.BackendError{Op: "Search", Cause: domain.CauseClientData, Err: errors.New("22P02")})

		h := handlers.NewUserHandler(svc)
		rec := httptest.NewRecorder()
		req := withChiParams(httptest.NewRequest(http.MethodGet, "/users/john_3", nil),
			map[string]string{handlers.ParamNameGrade: "john_3"})
		h.SearchUsers(rec, req)

		requireStatus(t, rec, http.StatusInternalServerError)
		resp := decodeJSON[dto.ErrorResponse](t, rec)
		if resp.Detail != "internal server error" {
			t.Errorf("detail = %q, want generic message", resp.Detail)
		}
	})
}

func TestUserHandler_SearchUsers_BadRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		segment   string
		query     string
		wantField string
	}{
		{name: "no separator", segment: "john"},
		{name: "grade not a number", segment: "john_abc"},
		{name: "too many parts", segment: "john_1_extra"},
		{name: "grade out of range", segment: "john_256"},
		{name: "age without active", segment: "john_3", query: "age=21", wantField: "query.active"},
		{name: "active without age", segment: "john_3", query: "active=true", wantField: "query.age"},
		{name: "age not a number", segment: "john_3", query: "age=old&active=true", wantField: "query.age"},
		{name: "age out of range", segment: "john_3", query: "age=300&active=true", wantField: "query.age"},
		{name: "negative age", segment: "john_3", query: "age=-1&active=true", wantField: "query.age"},
		{name: "active not a boolean", segment: "john_3", query: "age=21&active=maybe", wantField: "query.active"},
		{name: "empty age", segment: "john_3", query: "age=&active=true", wantField: "query.age"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			// The service must never be reached for malformed input.
			svc := mocks.NewMockUserService(t)
			h := handlers.NewUserHandler(svc)

			target := "/users/" + tt.segment
			if tt.query != "" {
				target += "?" + tt.query
			}
			rec := httptest.NewRecorder()
			req := withChiParams(httptest.NewRequest(http.MethodGet, target, nil),
				map[string]string{handlers.ParamNameGrade: tt.segment})
			h.SearchUsers(rec, req)

			requireStatus(t, rec, http.StatusBadRequest)
			if tt.wantField == "" {
				return
			}
			resp := decodeJSON[dto.ErrorResponse](t, rec)
			found := false
			for _, e := range resp.Errors {
				if e.Location == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("errors = %+v, want entry for %s", resp.Errors, tt.wantField)
			}
		})
	}
}

func TestUserHandler_SearchUsers_EscapedSegment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target string
		param  string
		want   user.NameGrade
	}{
		// The request kept a RawPath, so the captured value is still encoded.
		{name: "raw escapes", target: "/users/j%6Fhn%5F1", param: "j%6Fhn%5F1", want: user.NameGrade{Name: "john", Grade: 1}},
		// No RawPath: the captured value is already decoded and is used as is.
		{name: "already decoded", target: "/users/50%25_4", param: "50%_4", want: user.NameGrade{Name: "50%", Grade: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := mocks.NewMockUserService(t)
			svc.EXPECT().SearchUsers(mock.Anything, user.NewSearchFilter(tt.want, nil)).Return([]user.User{validUser()}, nil)

			rec := httptest.NewRecorder()
			req := withChiParams(httptest.NewRequest(http.MethodGet, tt.target, nil),
				map[string]string{handlers.ParamNameGrade: tt.param})
			handlers.NewUserHandler(svc).SearchUsers(rec, req)

			requireStatus(t, rec, http.StatusOK)
		})
	}
}

func TestUserHandler_GetUser_EscapedID(t *testing.T) {
	t.Parallel()

	escaped := strings.ReplaceAll(testID.String(), "-", "%2D")
	svc := mocks.NewMockUserService(t)
	u := validUser()
	svc.EXPECT().GetUser(mock.Anything, testID).Return(&u, nil)

	rec := httptest.NewRecorder()
	req := withChiParams(httptest.NewRequest(http.MethodGet, "/user/"+escaped, nil),
		map[string]string{handlers.ParamID: escaped})
	handlers.NewUserHandler(svc).GetUser(rec, req)

	requireStatus(t, rec, http.StatusOK)
}

func TestUserHandler_SearchUsers_BadEscape(t *testing.T) {
	t.Parallel()

	// RawPath is set by the escaped separator; the captured value carries an
	// escape that does not decode.
	svc := mocks.NewMockUserService(t)
	rec := httptest.NewRecorder()
	req := withChiParams(httptest.NewRequest(http.MethodGet, "/users/john%5F1", nil),
		map[string]string{handlers.ParamNameGrade: "john%zz_1"})
	handlers.NewUserHandler(svc).SearchUsers(rec, req)

	requireStatus(t, rec, http.StatusBadRequest)
	resp := decodeJSON[dto.ErrorResponse](t, rec)
	if len(resp.Errors) != 1 || resp.Errors[0].Location != "path.name_grade" {
		t.Errorf("errors = %+v, want one path.name_grade entry", resp.Errors)
	}
}

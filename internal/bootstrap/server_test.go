package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Domenick1991/flightline/config"
	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/Domenick1991/flightline/internal/service/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubAuth struct{}

func (stubAuth) Login(_ context.Context, pno, _ string) (*auth.Session, error) {
	return &auth.Session{Token: "tok", User: &domain.User{ID: 1, PNO: pno}}, nil
}

func (stubAuth) Authenticate(_ context.Context, token string) (*domain.User, error) {
	if token != "tok" {
		return nil, domain.ErrUnauthenticated
	}
	return &domain.User{ID: 1}, nil
}

func (stubAuth) Logout(context.Context, string) error { return nil }

type stubAircraft struct{}

func (stubAircraft) GetByID(_ context.Context, id int64) (*domain.Aircraft, error) {
	return &domain.Aircraft{ID: id, TailNumber: "KT-101"}, nil
}

func serve(r http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNewRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(config.HTTPConfig{Swagger: true}, Services{Auth: stubAuth{}, Aircraft: stubAircraft{}}, zap.NewNop())

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/healthz", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/aircraft/1", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/aircraft/1", "other", "").Code)

	w := serve(r, http.MethodGet, "/api/aircraft/1", "tok", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "KT-101")

	w = serve(r, http.MethodPost, "/api/auth/login", "", `{"pno":"P-1","password":"x"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token":"tok"`)

	w = serve(r, http.MethodGet, "/swagger/doc.json", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/before-flying-service/{id}/sign_fsi")
}

func TestNewRouter_SwaggerDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(config.HTTPConfig{}, Services{Auth: stubAuth{}}, zap.NewNop())
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/swagger/doc.json", "", "").Code)
}

package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/mediashare-backend/api/middleware"
	"github.com/angelmondragon/mediashare-backend/internal/auth"
	"github.com/angelmondragon/mediashare-backend/internal/comments"
	"github.com/angelmondragon/mediashare-backend/internal/media"
	"github.com/angelmondragon/mediashare-backend/internal/users"
	"github.com/angelmondragon/mediashare-backend/pkg/config"
	"github.com/angelmondragon/mediashare-backend/pkg/enums"
)

type stubAuthService struct {
	resp *auth.AuthResponse
	err  error
	got  auth.RegisterRequest
}

func (s *stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.AuthResponse, error) {
	s.got = req
	return s.resp, s.err
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.AuthResponse, error) {
	return s.resp, s.err
}

type stubMediaService struct {
	params  media.ListParams
	deleted uuid.UUID
	err     error
}

func (s *stubMediaService) Upload(ctx context.Context, input media.UploadInput) (*media.MediaDTO, error) {
	return nil, s.err
}

func (s *stubMediaService) List(ctx context.Context, params media.ListParams) ([]media.MediaDTO, error) {
	s.params = params
	return []media.MediaDTO{}, s.err
}

func (s *stubMediaService) Get(ctx context.Context, id uuid.UUID) (*media.MediaDTO, error) {
	return &media.MediaDTO{ID: id}, s.err
}

func (s *stubMediaService) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = id
	return s.err
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestAuthRegisterReturnsCreated(t *testing.T) {
	svc := &stubAuthService{resp: &auth.AuthResponse{Token: "tok", User: &users.UserDTO{Username: "ansel"}}}
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{"username":"ansel","password":"pw","role":"creator"}`))
	rec := httptest.NewRecorder()
	AuthRegister(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.got.Role != enums.UserRoleCreator {
		t.Fatalf("unexpected role %q", svc.got.Role)
	}
	var body struct {
		Data auth.AuthResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Token != "tok" {
		t.Fatalf("unexpected token %q", body.Data.Token)
	}
}

func TestAuthLoginRejectsMissingFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"ansel"}`))
	rec := httptest.NewRecorder()
	AuthLogin(&stubAuthService{}, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestNilServicesAreInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	MediaList(nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestMediaListParsesFilters(t *testing.T) {
	svc := &stubMediaService{}
	userID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/media?q=+beach+&type=video&user_id="+userID.String(), nil)
	rec := httptest.NewRecorder()
	MediaList(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.params.Search != "beach" {
		t.Fatalf("unexpected search %q", svc.params.Search)
	}
	if svc.params.MediaType == nil || *svc.params.MediaType != enums.MediaTypeVideo {
		t.Fatalf("unexpected type %v", svc.params.MediaType)
	}
	if svc.params.UserID == nil || *svc.params.UserID != userID {
		t.Fatalf("unexpected user id %v", svc.params.UserID)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"data":[]}` {
		t.Fatalf("expected empty array, got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	MediaList(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media?type=audio", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMediaUploadRequiresIdentity(t *testing.T) {
	rec := httptest.NewRecorder()
	MediaUpload(&stubMediaService{}, 1024, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/media", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMediaUploadRejectsNonMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/media", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithIdentity(req.Context(), middleware.Identity{ID: uuid.New(), Role: enums.UserRoleCreator}))
	rec := httptest.NewRecorder()
	MediaUpload(&stubMediaService{}, 1024, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMediaDeleteReturnsDeletedFlag(t *testing.T) {
	svc := &stubMediaService{}
	id := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/media/"+id.String(), nil)
	req = withURLParam(req, "id", id.String())
	req = req.WithContext(middleware.WithIdentity(req.Context(), middleware.Identity{ID: uuid.New(), Role: enums.UserRoleConsumer}))
	rec := httptest.NewRecorder()
	MediaDelete(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.deleted != id {
		t.Fatalf("expected delete of %s, got %s", id, svc.deleted)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"data":{"deleted":true}}` {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

type stubCommentService struct{ listed bool }

func (s *stubCommentService) Create(ctx context.Context, mediaID uuid.UUID, author users.Summary, text string) (*comments.CommentDTO, error) {
	return &comments.CommentDTO{MediaID: mediaID, Author: author, Text: text}, nil
}

func (s *stubCommentService) List(ctx context.Context, mediaID uuid.UUID) ([]comments.CommentDTO, error) {
	s.listed = true
	return []comments.CommentDTO{}, nil
}

func TestCommentListMalformedIDIsEmpty(t *testing.T) {
	svc := &stubCommentService{}
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/media/nope/comments", nil), "id", "nope")
	rec := httptest.NewRecorder()
	CommentList(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.listed {
		t.Fatal("service must not be queried for a malformed id")
	}
	if strings.TrimSpace(rec.Body.String()) != `{"data":[]}` {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestCommentCreateUsesCallerAsAuthor(t *testing.T) {
	id := uuid.New()
	caller := middleware.Identity{ID: uuid.New(), Username: "carla", Role: enums.UserRoleConsumer}
	req := httptest.NewRequest(http.MethodPost, "/media/"+id.String()+"/comments", strings.NewReader(`{"text":"nice"}`))
	req = withURLParam(req, "id", id.String())
	req = req.WithContext(middleware.WithIdentity(req.Context(), caller))
	rec := httptest.NewRecorder()
	CommentCreate(&stubCommentService{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var body struct {
		Data comments.CommentDTO `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Author.Username != "carla" || body.Data.MediaID != id {
		t.Fatalf("unexpected comment %+v", body.Data)
	}
}

func TestHealth(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}

	rec := httptest.NewRecorder()
	Health(cfg, stubPinger{}, stubPinger{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(envHeader) != "dev" {
		t.Fatalf("missing env header")
	}

	rec = httptest.NewRecorder()
	Health(cfg, stubPinger{err: errors.New("down")}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var body struct {
		Data healthResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Status != healthStatusDegraded || body.Data.Database != "disconnected" {
		t.Fatalf("unexpected body %+v", body.Data)
	}
}

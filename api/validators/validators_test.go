package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/mediashare-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mediashare-backend/pkg/errors"
)

type loginBody struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required"`
}

func decode(body string) error {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var dest loginBody
	return DecodeJSONBody(httptest.NewRecorder(), req, &dest)
}

func TestDecodeJSONBody(t *testing.T) {
	cases := []struct {
		name string
		body string
		code pkgerrors.Code
	}{
		{"empty", "", pkgerrors.CodeValidation},
		{"malformed", "{", pkgerrors.CodeValidation},
		{"unknown field", `{"username":"ansel","password":"x","admin":true}`, pkgerrors.CodeValidation},
		{"trailing object", `{"username":"ansel","password":"x"}{}`, pkgerrors.CodeValidation},
		{"too short", `{"username":"an","password":"x"}`, pkgerrors.CodeValidation},
		{"too large", `{"username":"` + strings.Repeat("a", MaxJSONBodyBytes) + `","password":"x"}`, pkgerrors.CodeTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := decode(tc.body)
			if !pkgerrors.IsCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}

	if err := decode(`{"username":"ansel","password":"x"}`); err != nil {
		t.Fatalf("expected valid body, got %v", err)
	}
}

func TestValidationDetailsUseJSONNames(t *testing.T) {
	err := decode(`{"username":"","password":""}`)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details %T", typed.Details())
	}
	if details["username"] != "is required" || details["password"] != "is required" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestParseUUIDParam(t *testing.T) {
	id := uuid.New()
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id.String())
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(context.WithValue(context.Background(), chi.RouteCtxKey, rctx))

	got, err := ParseUUIDParam(req, "id")
	if err != nil || got != id {
		t.Fatalf("expected %s, got %s err=%v", id, got, err)
	}

	rctx.URLParams = chi.RouteParams{}
	rctx.URLParams.Add("id", "not-a-uuid")
	if _, err := ParseUUIDParam(req, "id"); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestParseQueryFilters(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/media?type=video&user_id=bad", nil)

	mt, err := ParseQueryMediaType(req, "type")
	if err != nil || mt == nil || *mt != enums.MediaTypeVideo {
		t.Fatalf("unexpected media type %v err=%v", mt, err)
	}
	if _, err := ParseQueryUUID(req, "user_id"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if id, err := ParseQueryUUID(req, "missing"); err != nil || id != nil {
		t.Fatalf("expected nil for absent param, got %v err=%v", id, err)
	}

	bad := httptest.NewRequest(http.MethodGet, "/media?type=audio", nil)
	if _, err := ParseQueryMediaType(bad, "type"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  héllo wörld ", 5); got != "héllo" {
		t.Fatalf("unexpected %q", got)
	}
	if got := SanitizeString(" a ", 0); got != "a" {
		t.Fatalf("unexpected %q", got)
	}
}

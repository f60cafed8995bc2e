package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"reup-backend/internal/bootstrap"
	sharedauth "reup-backend/internal/shared/auth"
	"reup-backend/internal/shared/config"
	"reup-backend/internal/users"
)

const adminEmail = "admin@example.com"

func buildTestApp(t *testing.T) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENV", "dev")

	cfg := config.Config{
		Port:            "0",
		CORSAllowOrigin: []string{"http://localhost:3000"},
		LocalStoreDir:   t.TempDir(),
		ObjectStoreType: "local",
		KVStoreType:     "memory",
		Env:             "dev",
		AdminEmails:     []string{adminEmail},
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}

func signToken(t *testing.T, userID, email string) string {
	t.Helper()
	token, err := sharedauth.SignJWT(sharedauth.Claims{
		Email:            email,
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
	})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", resp.Body.String(), err)
	}
	return out
}

func TestHealthIsPublic(t *testing.T) {
	app := buildTestApp(t)

	resp := doJSON(t, app.Router, http.MethodGet, "/api/health", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestAccessDecisions(t *testing.T) {
	app := buildTestApp(t)

	// Signed out.
	resp := doJSON(t, app.Router, http.MethodGet, "/api/access", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := decodeBody(t, resp)["access"]; got != "needs_sign_in" {
		t.Fatalf("expected needs_sign_in, got %v", got)
	}

	// Signed in without an invite.
	userToken := signToken(t, "google:user-1", "user@example.com")
	resp = doJSON(t, app.Router, http.MethodGet, "/api/access", userToken, nil)
	if got := decodeBody(t, resp)["access"]; got != "needs_invite" {
		t.Fatalf("expected needs_invite, got %v", got)
	}

	// Admin bypasses the invite requirement.
	adminToken := signToken(t, "google:admin", adminEmail)
	resp = doJSON(t, app.Router, http.MethodGet, "/api/access", adminToken, nil)
	if got := decodeBody(t, resp)["access"]; got != "granted" {
		t.Fatalf("expected granted, got %v", got)
	}
}

func TestInviteRoutesRequireAuth(t *testing.T) {
	app := buildTestApp(t)

	resp := doJSON(t, app.Router, http.MethodPost, "/api/invite/check", "", map[string]any{"userId": "google:user-1"})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestGenerateInviteIsAdminOnly(t *testing.T) {
	app := buildTestApp(t)

	userToken := signToken(t, "google:user-1", "user@example.com")
	resp := doJSON(t, app.Router, http.MethodPost, "/api/admin/generate-invite", userToken, map[string]any{"count": 2})
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}

	adminToken := signToken(t, "google:admin", adminEmail)
	resp = doJSON(t, app.Router, http.MethodPost, "/api/admin/generate-invite", adminToken, map[string]any{"count": 2})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	body := decodeBody(t, resp)
	if body["message"] != "Generated 2 invite codes" {
		t.Fatalf("unexpected message: %v", body["message"])
	}
	codes, ok := body["codes"].([]any)
	if !ok || len(codes) != 2 {
		t.Fatalf("expected 2 codes, got %v", body["codes"])
	}

	// No body means five codes.
	resp = doJSON(t, app.Router, http.MethodPost, "/api/admin/generate-invite", adminToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	body = decodeBody(t, resp)
	if body["message"] != "Generated 5 invite codes" {
		t.Fatalf("unexpected message: %v", body["message"])
	}
}

func TestCheckRequiresUserID(t *testing.T) {
	app := buildTestApp(t)

	token := signToken(t, "google:user-1", "user@example.com")
	resp := doJSON(t, app.Router, http.MethodPost, "/api/invite/check", token, map[string]any{})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if got := decodeBody(t, resp)["error"]; got != "Missing user ID" {
		t.Fatalf("unexpected error: %v", got)
	}
}

func TestInviteAssignAndCheckFlow(t *testing.T) {
	app := buildTestApp(t)

	codes, err := app.InvitesService.Generate(context.Background(), 2)
	if err != nil {
		t.Fatalf("generate codes: %v", err)
	}
	code := codes[0]

	userToken := signToken(t, "google:user-1", "user@example.com")

	// Bad code first.
	resp := doJSON(t, app.Router, http.MethodPost, "/api/invite/assign", userToken,
		map[string]any{"userId": "google:user-1", "code": "000000"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if got := decodeBody(t, resp)["error"]; got != "Invalid or already used invite code" {
		t.Fatalf("unexpected error: %v", got)
	}

	// Valid assignment, with the body shape the current client sends.
	resp = doJSON(t, app.Router, http.MethodPost, "/api/invite/assign", userToken,
		map[string]any{"userId": "google:user-1", "code": code})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if got := decodeBody(t, resp)["message"]; got != "Invite code assigned successfully" {
		t.Fatalf("unexpected message: %v", got)
	}

	// A second redemption with a fresh code is rejected; the older
	// inviteCode body key still binds.
	resp = doJSON(t, app.Router, http.MethodPost, "/api/invite/assign", userToken,
		map[string]any{"userId": "google:user-1", "inviteCode": codes[1]})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if got := decodeBody(t, resp)["error"]; got != "User already has an invite code assigned" {
		t.Fatalf("unexpected error: %v", got)
	}

	// Check reports the valid invite.
	resp = doJSON(t, app.Router, http.MethodPost, "/api/invite/check", userToken,
		map[string]any{"userId": "google:user-1"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := decodeBody(t, resp)
	if body["hasValidInvite"] != true {
		t.Fatalf("expected hasValidInvite true, got %v", body)
	}
	if body["message"] != "User has valid invite code" {
		t.Fatalf("unexpected message: %v", body["message"])
	}
	if body["inviteCode"] != code {
		t.Fatalf("expected code %q, got %v", code, body["inviteCode"])
	}
}

func TestResumeRoutesAreGated(t *testing.T) {
	app := buildTestApp(t)

	userToken := signToken(t, "google:user-1", "user@example.com")
	resp := doJSON(t, app.Router, http.MethodGet, "/api/resumes", userToken, nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without invite, got %d", resp.Code)
	}

	codes, err := app.InvitesService.Generate(context.Background(), 1)
	if err != nil {
		t.Fatalf("generate codes: %v", err)
	}
	if _, err := app.InvitesService.Assign(context.Background(), "google:user-1", codes[0]); err != nil {
		t.Fatalf("assign code: %v", err)
	}

	resp = doJSON(t, app.Router, http.MethodGet, "/api/resumes", userToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with invite, got %d: %s", resp.Code, resp.Body.String())
	}
	var list []any
	if err := json.Unmarshal(resp.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %v", list)
	}
}

func TestSaveAnalyzedContract(t *testing.T) {
	app := buildTestApp(t)

	token := signToken(t, "google:user-1", "user@example.com")

	// Unknown user.
	resp := doJSON(t, app.Router, http.MethodPost, "/api/analyzed-resume", token, map[string]any{
		"data": map[string]any{"id": "r-1", "resumePath": "p", "imagePath": "i"},
	})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", resp.Code, resp.Body.String())
	}
	if got := decodeBody(t, resp)["error"]; got != "User not found" {
		t.Fatalf("unexpected error: %v", got)
	}

	// Missing data.
	resp = doJSON(t, app.Router, http.MethodPost, "/api/analyzed-resume", token, map[string]any{})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if got := decodeBody(t, resp)["error"]; got != "Data is required" {
		t.Fatalf("unexpected error: %v", got)
	}

	// Mirror the user, then save succeeds.
	err := app.UsersService.UpsertFromAuth(context.Background(), users.User{
		UserID: "google:user-1",
		Email:  "user@example.com",
		Name:   "User One",
	})
	if err != nil {
		t.Fatalf("upsert user: %v", err)
	}

	resp = doJSON(t, app.Router, http.MethodPost, "/api/analyzed-resume", token, map[string]any{
		"data": map[string]any{"id": "r-1", "resumePath": "p", "imagePath": "i"},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if got := decodeBody(t, resp)["message"]; got != "Resume saved successfully" {
		t.Fatalf("unexpected message: %v", got)
	}
}

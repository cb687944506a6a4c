package portal

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/campus-id/portal-auth/internal/auth"
	"github.com/campus-id/portal-auth/internal/config"
	"github.com/campus-id/portal-auth/internal/security"
)

func newTestRouter(t *testing.T, exposeOTP bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := auth.NewService(security.NewHasherWithCost(bcrypt.MinCost), nil)
	cfg := config.Config{
		JWT:  config.JWTConfig{Secret: "test-secret", Expiry: 30 * time.Minute},
		Demo: config.DemoConfig{ExposeOTP: exposeOTP},
	}
	engine := gin.New()
	RegisterPortalRoutes(engine, svc, cfg)
	return engine
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, errMarshal := json.Marshal(body)
		if errMarshal != nil {
			t.Fatalf("marshal body: %v", errMarshal)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := map[string]any{}
	if len(w.Body.Bytes()) > 0 {
		if errUnmarshal := json.Unmarshal(w.Body.Bytes(), &resp); errUnmarshal != nil {
			t.Fatalf("unmarshal response %q: %v", w.Body.String(), errUnmarshal)
		}
	}
	return w, resp
}

func TestFullLoginFlow(t *testing.T) {
	router := newTestRouter(t, true)

	w, resp := doJSON(t, router, http.MethodPost, "/v0/portal/register", gin.H{
		"username": "alice",
		"email":    "alice@campus.edu",
		"phone":    "+15550001",
		"password": "s3cret-pass",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	userID, _ := resp["userId"].(string)
	if userID == "" {
		t.Fatalf("register: expected userId in response")
	}

	w, resp = doJSON(t, router, http.MethodPost, "/v0/portal/login", gin.H{
		"username": "alice",
		"password": "s3cret-pass",
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	if resp["userId"] != userID {
		t.Fatalf("login: expected userId %q, got %v", userID, resp["userId"])
	}

	w, resp = doJSON(t, router, http.MethodPost, "/v0/portal/otp/issue", gin.H{"userId": userID}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("issue: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	otp, _ := resp["otp"].(string)
	if len(otp) != 6 {
		t.Fatalf("issue: expected six-digit otp in demo mode, got %v", resp["otp"])
	}

	w, resp = doJSON(t, router, http.MethodGet, "/v0/portal/otp/remaining/"+userID, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("remaining: expected 200, got %d", w.Code)
	}
	if remaining, _ := resp["remainingSeconds"].(float64); remaining <= 0 || remaining > 60 {
		t.Fatalf("remaining: expected 0 < s <= 60, got %v", resp["remainingSeconds"])
	}

	w, resp = doJSON(t, router, http.MethodPost, "/v0/portal/otp/verify", gin.H{"userId": userID, "code": otp}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("verify: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	token, _ := resp["token"].(string)
	if token == "" {
		t.Fatalf("verify: expected session token")
	}

	w, resp = doJSON(t, router, http.MethodGet, "/v0/portal/me", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	if resp["username"] != "alice" {
		t.Fatalf("me: expected username alice, got %v", resp["username"])
	}
	if _, leaked := resp["PasswordHash"]; leaked {
		t.Fatalf("me: password hash must not be serialized")
	}

	w, resp = doJSON(t, router, http.MethodGet, "/v0/portal/login-history", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("history: expected 200, got %d", w.Code)
	}
	attempts, _ := resp["attempts"].([]any)
	if len(attempts) != 1 {
		t.Fatalf("history: expected one attempt, got %d", len(attempts))
	}

	w, _ = doJSON(t, router, http.MethodPut, "/v0/portal/security-settings", gin.H{"session_timeout": 45}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("settings update: expected 200, got %d", w.Code)
	}
	w, resp = doJSON(t, router, http.MethodGet, "/v0/portal/security-settings", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("settings get: expected 200, got %d", w.Code)
	}
	if timeout, _ := resp["session_timeout"].(float64); timeout != 45 {
		t.Fatalf("settings: expected session_timeout 45, got %v", resp["session_timeout"])
	}
	if enabled, _ := resp["two_factor_enabled"].(bool); !enabled {
		t.Fatalf("settings: expected untouched two_factor_enabled to stay true")
	}
}

func TestLoginRejections(t *testing.T) {
	router := newTestRouter(t, true)

	_, resp := doJSON(t, router, http.MethodPost, "/v0/portal/register", gin.H{
		"username": "alice",
		"email":    "alice@campus.edu",
		"phone":    "+15550001",
		"password": "s3cret-pass",
	}, "")
	if resp["userId"] == nil {
		t.Fatalf("register failed: %v", resp)
	}

	w, resp := doJSON(t, router, http.MethodPost, "/v0/portal/login", gin.H{
		"username": "alice",
		"password": "wrong",
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if resp["message"] != "Invalid username or password" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
	if _, present := resp["isLocked"]; present {
		t.Fatalf("isLocked must be absent before a lock exists")
	}

	for i := 0; i < 4; i++ {
		w, resp = doJSON(t, router, http.MethodPost, "/v0/portal/login", gin.H{
			"username": "alice",
			"password": "wrong",
		}, "")
	}
	if w.Code != http.StatusLocked {
		t.Fatalf("expected 423 on fifth failure, got %d", w.Code)
	}
	if locked, _ := resp["isLocked"].(bool); !locked {
		t.Fatalf("expected isLocked=true, got %v", resp)
	}
}

func TestRegisterConflictAndValidation(t *testing.T) {
	router := newTestRouter(t, true)

	body := gin.H{
		"username": "alice",
		"email":    "alice@campus.edu",
		"phone":    "+15550001",
		"password": "s3cret-pass",
	}
	if w, _ := doJSON(t, router, http.MethodPost, "/v0/portal/register", body, ""); w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if w, _ := doJSON(t, router, http.MethodPost, "/v0/portal/register", body, ""); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate, got %d", w.Code)
	}

	w, _ := doJSON(t, router, http.MethodPost, "/v0/portal/register", gin.H{
		"username": "bob",
		"email":    "not-an-email",
		"phone":    "+15550002",
		"password": "s3cret-pass",
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on invalid email, got %d", w.Code)
	}
}

func TestOTPNotExposedOutsideDemoMode(t *testing.T) {
	router := newTestRouter(t, false)

	_, resp := doJSON(t, router, http.MethodPost, "/v0/portal/register", gin.H{
		"username": "alice",
		"email":    "alice@campus.edu",
		"phone":    "+15550001",
		"password": "s3cret-pass",
	}, "")
	userID, _ := resp["userId"].(string)

	w, resp := doJSON(t, router, http.MethodPost, "/v0/portal/otp/issue", gin.H{"userId": userID}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if _, exposed := resp["otp"]; exposed {
		t.Fatalf("otp must not be returned outside demo mode")
	}
	if dispatched, _ := resp["dispatched"].(bool); !dispatched {
		t.Fatalf("expected dispatched=true, got %v", resp)
	}
}

func TestOTPVerifyErrorStatuses(t *testing.T) {
	router := newTestRouter(t, true)

	w, resp := doJSON(t, router, http.MethodPost, "/v0/portal/otp/verify", gin.H{"userId": "ghost", "code": "123456"}, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without session, got %d", w.Code)
	}
	if resp["message"] != "No OTP session found. Please request a new OTP." {
		t.Fatalf("unexpected message: %v", resp["message"])
	}

	_, resp = doJSON(t, router, http.MethodPost, "/v0/portal/register", gin.H{
		"username": "alice",
		"email":    "alice@campus.edu",
		"phone":    "+15550001",
		"password": "s3cret-pass",
	}, "")
	userID, _ := resp["userId"].(string)

	_, resp = doJSON(t, router, http.MethodPost, "/v0/portal/otp/issue", gin.H{"userId": userID}, "")
	otp, _ := resp["otp"].(string)
	wrong := "000000"
	if wrong == otp {
		wrong = "000001"
	}

	for i := 0; i < 3; i++ {
		w, _ = doJSON(t, router, http.MethodPost, "/v0/portal/otp/verify", gin.H{"userId": userID, "code": wrong}, "")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("wrong code %d: expected 401, got %d", i+1, w.Code)
		}
	}
	w, _ = doJSON(t, router, http.MethodPost, "/v0/portal/otp/verify", gin.H{"userId": userID, "code": wrong}, "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on fourth attempt, got %d", w.Code)
	}
}

func TestAuthedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t, true)

	if w, _ := doJSON(t, router, http.MethodGet, "/v0/portal/me", nil, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
	if w, _ := doJSON(t, router, http.MethodGet, "/v0/portal/me", nil, "bogus-token"); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bogus token, got %d", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, true)
	w, resp := doJSON(t, router, http.MethodGet, "/healthz", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", resp["status"])
	}
}

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mbd888/pressgate/internal/config"
	"github.com/mbd888/pressgate/internal/payments"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testConfig returns a minimal config for testing
func testConfig() *config.Config {
	return &config.Config{
		Port:             "0",
		Env:              "development",
		LogLevel:         "error",
		TokenTTL:         24 * time.Hour,
		DefaultPPVPrice:  1.99,
		MinGrantDuration: 60,
		MaxGrantDuration: 86400,
		RateLimitRPS:     1000,
	}
}

// newTestServer creates a server with in-memory storage
func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(testConfig(), WithPaymentVerifier(payments.OfflineVerifier{}))
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	return s
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	s.router.ServeHTTP(w, req)
	return w
}

// ---------------------------------------------------------------------------
// Health endpoint tests
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", resp["status"])
	}
	checks, ok := resp["checks"].(map[string]interface{})
	if !ok || checks["database"] != "in-memory" {
		t.Errorf("Expected in-memory database check, got %v", resp["checks"])
	}
}

func TestLivenessEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, "GET", "/health/live", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}

func TestReadinessEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, "GET", "/health/ready", "")

	// Server hasn't called Run() so ready is false
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 (not ready), got %d", w.Code)
	}
}

// ---------------------------------------------------------------------------
// Route registration tests
// ---------------------------------------------------------------------------

func TestCoreRoutesRegistered(t *testing.T) {
	s := newTestServer(t)

	routes := s.router.Routes()
	expected := []string{
		"GET:/health",
		"GET:/health/live",
		"GET:/health/ready",
		"GET:/metrics",
		"GET:/ws",
		"POST:/v1/access/verify",
		"GET:/v1/stats",
		"GET:/v1/users/:userId/stats",
		"POST:/v1/subscriptions",
		"GET:/v1/subscriptions/:userId",
		"DELETE:/v1/subscriptions/:userId",
		"GET:/v1/plans",
		"GET:/v1/tokens/:token",
		"POST:/v1/grants",
		"GET:/v1/grants/:grantId",
		"POST:/v1/assessments",
		"GET:/v1/assessments/:contentId",
		"GET:/v1/realtime/stats",
	}

	routeSet := make(map[string]bool)
	for _, route := range routes {
		routeSet[route.Method+":"+route.Path] = true
	}

	for _, e := range expected {
		if !routeSet[e] {
			t.Errorf("Route %s not registered", e)
		}
	}
}

// ---------------------------------------------------------------------------
// End-to-end access flow
// ---------------------------------------------------------------------------

func TestSubscribeThenVerifyFlow(t *testing.T) {
	s := newTestServer(t)

	// Free users can read public content right away
	w := doJSON(t, s, "POST", "/v1/access/verify",
		`{"userId":"user_e2e_1","contentId":"article_001","level":"public"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var decision map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &decision); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if decision["granted"] != true {
		t.Fatalf("Expected public access granted, got %v", decision)
	}

	// Premium content is denied until the user subscribes
	w = doJSON(t, s, "POST", "/v1/access/verify",
		`{"userId":"user_e2e_1","contentId":"article_002","level":"premium"}`)
	if err := json.Unmarshal(w.Body.Bytes(), &decision); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if decision["granted"] != false {
		t.Fatalf("Expected premium access denied for free user, got %v", decision)
	}
	if decision["upgradeRequired"] != true {
		t.Errorf("Expected upgradeRequired in denial, got %v", decision)
	}

	// Subscribe to the premium plan
	w = doJSON(t, s, "POST", "/v1/subscriptions",
		`{"userId":"user_e2e_1","planId":"plan_premium","paymentMethod":"pm_card"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// Premium content now accessible, and a token comes back
	w = doJSON(t, s, "POST", "/v1/access/verify",
		`{"userId":"user_e2e_1","contentId":"article_002","level":"premium"}`)
	if err := json.Unmarshal(w.Body.Bytes(), &decision); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if decision["granted"] != true {
		t.Fatalf("Expected premium access granted after subscribing, got %v", decision)
	}
	tok, _ := decision["accessToken"].(string)
	if !strings.HasPrefix(tok, "tok_") {
		t.Fatalf("Expected access token in grant, got %q", tok)
	}

	// The issued token validates
	w = doJSON(t, s, "GET", "/v1/tokens/"+tok, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var tokResp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &tokResp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if tokResp["valid"] != true {
		t.Errorf("Expected token to be valid, got %v", tokResp)
	}
}

func TestGrantPurchaseFlow(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, "POST", "/v1/grants",
		`{"userId":"user_ppv_1","contentId":"article_ppv","durationSeconds":3600,"paymentToken":"pay_abc123","amountPaid":2.99}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	tok, _ := resp["accessToken"].(string)
	if tok == "" {
		t.Fatal("Expected companion access token in grant response")
	}

	// Redeem the grant's token through verification
	w = doJSON(t, s, "POST", "/v1/access/verify",
		`{"userId":"user_ppv_1","contentId":"article_ppv","level":"premium","accessToken":"`+tok+`"}`)
	var decision map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &decision); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if decision["granted"] != true {
		t.Fatalf("Expected token-based access granted, got %v", decision)
	}
}

// ---------------------------------------------------------------------------
// Validation middleware
// ---------------------------------------------------------------------------

func TestInvalidUserIDParamRejected(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, "GET", "/v1/subscriptions/bad%20id%3B--", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed user ID, got %d", w.Code)
	}
}

// ---------------------------------------------------------------------------
// Admin routes
// ---------------------------------------------------------------------------

func TestAdminRoutes_DisabledWithoutSecret(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, "GET", "/v1/admin/subscriptions", "")
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 with no admin secret configured, got %d", w.Code)
	}
}

func TestAdminRoutes_RequireSecret(t *testing.T) {
	cfg := testConfig()
	cfg.AdminSecret = "supersecret123"
	s, err := New(cfg, WithPaymentVerifier(payments.OfflineVerifier{}))
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	// No header
	w := doJSON(t, s, "GET", "/v1/admin/tokens", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without header, got %d", w.Code)
	}

	// Wrong header
	req := httptest.NewRequest("GET", "/v1/admin/tokens", nil)
	req.Header.Set("X-Admin-Secret", "wrong")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 with wrong secret, got %d", w.Code)
	}

	// Correct header
	req = httptest.NewRequest("GET", "/v1/admin/tokens", nil)
	req.Header.Set("X-Admin-Secret", "supersecret123")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 with correct secret, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["count"] != float64(0) {
		t.Errorf("Expected empty token list, got %v", resp)
	}
}

// ---------------------------------------------------------------------------
// 404 test
// ---------------------------------------------------------------------------

func TestNotFoundRoute(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, "GET", "/v1/nonexistent", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

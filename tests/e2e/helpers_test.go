package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

type TestClient struct {
	BaseURL string
	HTTP    *http.Client
}

// BASE_URL未設定ならこのパッケージのテストはスキップする
// （起動済みのAPIサーバーに対して叩く前提）
func requireE2E(t *testing.T) {
	t.Helper()
	if os.Getenv("BASE_URL") == "" {
		t.Skip("BASE_URL not set; skipping e2e")
	}
}

func NewTestClient(t *testing.T) *TestClient {
	t.Helper()

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return &TestClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type UserDTO struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

type AuthLoginResponse struct {
	User        UserDTO `json:"user"`
	AccessToken string  `json:"access_token"`
	ExpiresIn   int64   `json:"expires_in"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CartItemView struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
	LineTotal int64  `json:"line_total"`
}

type CartResponse struct {
	OrderID  int64          `json:"order_id"`
	Items    []CartItemView `json:"items"`
	Subtotal int64          `json:"subtotal"`
}

type CheckoutResponse struct {
	OrderID  int64  `json:"order_id"`
	Number   int64  `json:"number"`
	Subtotal int64  `json:"subtotal"`
	Discount int64  `json:"discount"`
	Total    int64  `json:"total"`
	Status   string `json:"status"`
}

func (c *TestClient) doJSON(
	ctx context.Context,
	t *testing.T,
	method string,
	path string,
	bearer string,
	bodyBytes []byte,
) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader
	if bodyBytes != nil {
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("http.NewRequest failed: %v", err)
	}

	if bodyBytes != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		t.Fatalf("HTTP.Do failed: %v", err)
	}

	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	return resp, data
}

func requireStatus(t *testing.T, resp *http.Response, want int, body []byte) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status=%d want=%d body=%s", resp.StatusCode, want, string(body))
	}
}

func mustDecode(t *testing.T, body []byte, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("json.Unmarshal failed: %v body=%s", err, string(body))
	}
}

// 新規ユーザーを作ってログインし、access_tokenを返す
func registerAndLogin(t *testing.T, c *TestClient, ctx context.Context) (string, string) {
	t.Helper()

	email := "e2e-" + time.Now().Format("20060102-150405.000000000") + "@example.com"
	b, _ := json.Marshal(LoginRequest{Email: email, Password: "password123"})

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/auth/register", "", b)
	requireStatus(t, resp, http.StatusCreated, body)

	resp, body = c.doJSON(ctx, t, http.MethodPost, "/auth/login", "", b)
	requireStatus(t, resp, http.StatusOK, body)

	var login AuthLoginResponse
	mustDecode(t, body, &login)
	if strings.TrimSpace(login.AccessToken) == "" {
		t.Fatalf("access token is empty: body=%s", string(body))
	}
	return login.AccessToken, email
}

// 管理者でログインしてaccess_tokenを取得
func adminLogin(t *testing.T, c *TestClient, ctx context.Context) string {
	t.Helper()

	email := os.Getenv("E2E_ADMIN_EMAIL")
	if email == "" {
		email = "admin@example.com"
	}
	password := os.Getenv("E2E_ADMIN_PASSWORD")
	if password == "" {
		password = "password123"
	}

	b, _ := json.Marshal(LoginRequest{Email: email, Password: password})
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/auth/login", "", b)
	requireStatus(t, resp, http.StatusOK, body)

	var login AuthLoginResponse
	mustDecode(t, body, &login)
	if strings.TrimSpace(login.AccessToken) == "" {
		t.Fatalf("access token is empty: body=%s", string(body))
	}
	return login.AccessToken
}

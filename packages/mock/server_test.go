package mock

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(WithBcryptCost(bcrypt.MinCost))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func validRegistration() RegisterRequest {
	return RegisterRequest{
		FullName:        "Test User 143022",
		Department:      "IT",
		EmpID:           "EMP143022",
		Password:        "TestPass123!",
		ConfirmPassword: "TestPass123!",
		MobileNo:        "9876543022",
		CompanyEmail:    "test143022@company.com",
	}
}

func call(t *testing.T, ts *httptest.Server, method, path string, body any, token string) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func register(t *testing.T, ts *httptest.Server, reg RegisterRequest) (int, map[string]any) {
	t.Helper()
	return call(t, ts, "POST", "/api/auth/register", reg, "")
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)

	status, body := call(t, ts, "GET", "/api/auth/health", nil, "")
	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Auth service is running", body["message"])
}

func TestRegister(t *testing.T) {
	s, ts := newTestServer(t)

	status, body := register(t, ts, validRegistration())
	require.Equal(t, 200, status)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["token"])
	assert.Equal(t, "Bearer", data["type"])
	assert.Equal(t, "EMP143022", data["empId"])
	assert.Equal(t, "test143022@company.com", data["companyEmail"])
	assert.Equal(t, float64(1), data["userId"])
	assert.Equal(t, 1, s.Users())
}

func TestRegister_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RegisterRequest)
		message string
	}{
		{
			name:    "duplicate email",
			mutate:  func(r *RegisterRequest) { r.EmpID = "EMP999999" },
			message: "Email already registered!",
		},
		{
			name:    "duplicate email different case",
			mutate:  func(r *RegisterRequest) { r.EmpID = "EMP999999"; r.CompanyEmail = "TEST143022@company.com" },
			message: "Email already registered!",
		},
		{
			name:    "duplicate employee id",
			mutate:  func(r *RegisterRequest) { r.CompanyEmail = "other@company.com" },
			message: "Employee ID already registered!",
		},
		{
			name: "password mismatch",
			mutate: func(r *RegisterRequest) {
				r.CompanyEmail = "other@company.com"
				r.EmpID = "EMP000001"
				r.ConfirmPassword = "Different123!"
			},
			message: "Passwords do not match!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ts := newTestServer(t)
			status, _ := register(t, ts, validRegistration())
			require.Equal(t, 200, status)

			reg := validRegistration()
			tt.mutate(&reg)
			status, body := register(t, ts, reg)
			assert.Equal(t, 400, status)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestRegister_InvalidData(t *testing.T) {
	s, ts := newTestServer(t)

	reg := RegisterRequest{
		FullName:        "",
		Department:      "IT",
		EmpID:           "123",
		Password:        "123",
		ConfirmPassword: "123",
		MobileNo:        "123",
		CompanyEmail:    "invalid-email",
	}
	status, body := register(t, ts, reg)
	assert.Equal(t, 400, status)
	assert.Contains(t, body["message"], "Invalid registration data")
	assert.Contains(t, body["message"], "CompanyEmail (email)")
	assert.Equal(t, 0, s.Users())
}

func TestLogin(t *testing.T) {
	_, ts := newTestServer(t)
	status, _ := register(t, ts, validRegistration())
	require.Equal(t, 200, status)

	tests := []struct {
		name       string
		identifier string
		password   string
		status     int
		message    string
	}{
		{"by email", "test143022@company.com", "TestPass123!", 200, "Login successful"},
		{"by employee id", "EMP143022", "TestPass123!", 200, "Login successful"},
		{"unknown user", "nonexistent@company.com", "WrongPassword123!", 401, "Invalid email/employee ID!"},
		{"wrong password", "EMP143022", "WrongPassword123!", 401, "Invalid password!"},
		{"missing fields", "", "", 400, "Identifier and password are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, ts, "POST", "/api/auth/login", LoginRequest{Identifier: tt.identifier, Password: tt.password}, "")
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, body["message"])
			if tt.status == 200 {
				data := body["data"].(map[string]any)
				assert.NotEmpty(t, data["token"])
			}
		})
	}
}

func TestProtectedRoutes(t *testing.T) {
	_, ts := newTestServer(t)
	_, body := register(t, ts, validRegistration())
	token := body["data"].(map[string]any)["token"].(string)

	status, body := call(t, ts, "POST", "/api/auth/validate-token", nil, token)
	assert.Equal(t, 200, status)
	assert.Equal(t, "Token is valid", body["message"])

	status, body = call(t, ts, "GET", "/api/auth/profile", nil, token)
	assert.Equal(t, 200, status)
	profile := body["data"].(map[string]any)
	assert.Equal(t, "Test User 143022", profile["fullName"])
	assert.NotContains(t, profile, "PasswordHash")

	for _, bad := range []string{"", "invalid.token.here", "garbage"} {
		status, body = call(t, ts, "POST", "/api/auth/validate-token", nil, bad)
		assert.Equal(t, 401, status, "token %q", bad)
		assert.Equal(t, false, body["success"])
	}
}

func TestTokens_SecretAndExpiry(t *testing.T) {
	issuer := newSigner([]byte("one"), time.Minute)
	other := newSigner([]byte("two"), time.Minute)
	u := &User{ID: 7, CompanyEmail: "a@company.com"}

	token, err := issuer.issue(u)
	require.NoError(t, err)

	claims, err := issuer.verify(token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.Equal(t, "a@company.com", claims.Email)
	assert.NotEmpty(t, claims.ID)

	_, err = other.verify(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = issuer.verify(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = issuer.verify("only.two")
	assert.ErrorIs(t, err, jwt.ErrTokenMalformed)
}

func TestTokens_OnlyHS256(t *testing.T) {
	issuer := newSigner([]byte("one"), time.Minute)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = issuer.verify(unsigned)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestExpiredTokenRejected(t *testing.T) {
	s, ts := newTestServer(t)
	status, body := register(t, ts, validRegistration())
	require.Equal(t, 200, status)
	token := body["data"].(map[string]any)["token"].(string)

	s.tokens.now = func() time.Time { return time.Now().Add(48 * time.Hour) }

	status, body = call(t, ts, "POST", "/api/auth/validate-token", nil, token)
	assert.Equal(t, 401, status)
	assert.Equal(t, "Invalid or expired token", body["message"])
}

func TestCheckEmail(t *testing.T) {
	_, ts := newTestServer(t)
	register(t, ts, validRegistration())

	status, body := call(t, ts, "GET", "/api/auth/check-email?email=test143022%40company.com", nil, "")
	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["data"])

	status, body = call(t, ts, "GET", "/api/auth/check-email?email=nonexistent%40company.com", nil, "")
	assert.Equal(t, 200, status)
	assert.Equal(t, false, body["data"])

	status, _ = call(t, ts, "GET", "/api/auth/check-email", nil, "")
	assert.Equal(t, 400, status)
}

func TestForgotPassword(t *testing.T) {
	_, ts := newTestServer(t)

	for _, id := range []string{"test143022%40company.com", "nobody"} {
		status, body := call(t, ts, "POST", "/api/auth/forgot-password?identifier="+id, nil, "")
		assert.Equal(t, 200, status)
		assert.Equal(t, true, body["success"])
	}
}

func TestNotFound(t *testing.T) {
	_, ts := newTestServer(t)

	status, body := call(t, ts, "GET", "/api/auth/nope", nil, "")
	assert.Equal(t, 404, status)
	assert.Equal(t, false, body["success"])
}

func TestStartWithContext_PortInUse(t *testing.T) {
	taken, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer taken.Close()

	s := NewServer(WithPort(taken.Addr().(*net.TCPAddr).Port))
	err = s.StartWithContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}

func TestServe_StopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := NewServer(WithBcryptCost(bcrypt.MinCost))
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/api/auth/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

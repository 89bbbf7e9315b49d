package integration_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func prepareRequest(method, path string, body io.Reader, headers map[string]string, cookies []http.Cookie) (*http.Request, error) {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	for _, c := range cookies {
		req.AddCookie(&c)
	}

	return req, nil
}

func compareResponse(t *testing.T, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indeterministic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		switch k {
		case "timestamp", "requestId", "createdAt", "enrolledAt", "expiresAt":
			return true
		}
		return false
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func executeSQLFile(t testing.TB, db *pgxpool.Pool, path string) {
	t.Helper()

	script, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = db.Exec(context.Background(), string(script))
	require.NoError(t, err)
}

// authenticatedUserCookies resets the users table, registers the canonical
// test user over the real HTTP surface and logs in, returning the session
// cookies of the login response. The registered user always gets id 1.
func (app *TestApp) authenticatedUserCookies(t testing.TB) []http.Cookie {
	t.Helper()

	_, err := app.DB.Exec(context.Background(), "TRUNCATE users RESTART IDENTITY CASCADE")
	require.NoError(t, err)

	registerBody := fmt.Sprintf(
		`{"firstName": %q, "lastName": %q, "email": %q, "password": %q}`,
		TestUserFirstName, TestUserLastName, TestUserEmail, TestUserPassword,
	)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(registerBody))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	app.App.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, "test user registration failed: %s", rec.Body.String())

	loginBody := fmt.Sprintf(`{"email": %q, "password": %q}`, TestUserEmail, TestUserPassword)

	req = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(loginBody))
	req.Header.Set("Content-Type", "application/json")

	rec = httptest.NewRecorder()
	app.App.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, "test user login failed: %s", rec.Body.String())

	resCookies := rec.Result().Cookies()
	require.NotEmpty(t, resCookies, "login did not set a session cookie")

	cookies := make([]http.Cookie, 0, len(resCookies))
	for _, c := range resCookies {
		cookies = append(cookies, *c)
	}

	return cookies
}

// signWebhookPayload produces a Stripe-Signature header value over the given
// payload using the processor's signed_payload scheme.
func signWebhookPayload(payload []byte, secret string) string {
	ts := time.Now().Unix()

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)

	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

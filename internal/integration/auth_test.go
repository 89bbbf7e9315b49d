package integration_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type AuthTestSuite struct {
	BaseSuite
}

func TestAuthSuite(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}

	suite.Run(t, new(AuthTestSuite))
}

func (s *AuthTestSuite) TestRegisterUser() {
	registerBody := func(email string) string {
		return fmt.Sprintf(
			`{"firstName": %q, "lastName": %q, "email": %q, "password": %q}`,
			TestUserFirstName, TestUserLastName, email, TestUserPassword,
		)
	}

	scenarios := []Scenario{
		{
			Name:           "rejects a weak password",
			Method:         "POST",
			URL:            "/auth/register",
			Body:           strings.NewReader(`{"firstName": "Avery", "lastName": "Stone", "email": "weak@example.com", "password": "password"}`),
			ExpectedStatus: http.StatusBadRequest,
			ExpectedResponse: `{
				"message": "Input validation failed",
				"validationErrors": [
					{
						"field": "Password",
						"issue": "must be at least 8 characters long and include at least one uppercase letter, one lowercase letter, one number, and one special character (!@#$%^&*)."
					}
				]
			}`,
		},
		{
			Name:           "successfully registers a new user",
			Method:         "POST",
			URL:            "/auth/register",
			Body:           strings.NewReader(registerBody(TestUserEmail)),
			ExpectedStatus: http.StatusCreated,
			ExpectedResponse: fmt.Sprintf(`{
				"id": 1,
				"firstName": "%s",
				"lastName": "%s",
				"email": "%s",
				"activated": false,
				"version": 1
			}`, TestUserFirstName, TestUserLastName, TestUserEmail),
			BeforeTestFunc: func(t testing.TB, app *TestApp) {
				truncateUsers(t, app)
			},
		},
		{
			Name:           "does not disclose that an email is already registered",
			Method:         "POST",
			URL:            "/auth/register",
			Body:           strings.NewReader(registerBody(TestUserEmail)),
			ExpectedStatus: http.StatusBadRequest,
			ExpectedResponse: `{
				"message": "invalid input data"
			}`,
		},
	}

	for _, scenario := range scenarios {
		scenario.Run(s.T(), s.app)
	}
}

func (s *AuthTestSuite) TestLogin() {
	cookies := s.app.authenticatedUserCookies(s.T())

	scenarios := []Scenario{
		{
			Name:           "rejects an unknown email with the generic message",
			Method:         "POST",
			URL:            "/auth/login",
			Body:           strings.NewReader(`{"email": "ghost@example.com", "password": "Test123!@#"}`),
			ExpectedStatus: http.StatusUnauthorized,
			ExpectedResponse: `{
				"message": "Invalid email or password"
			}`,
		},
		{
			Name:           "rejects a wrong password with the generic message",
			Method:         "POST",
			URL:            "/auth/login",
			Body:           strings.NewReader(fmt.Sprintf(`{"email": %q, "password": "Wrong123!@#"}`, TestUserEmail)),
			ExpectedStatus: http.StatusUnauthorized,
			ExpectedResponse: `{
				"message": "Invalid email or password"
			}`,
		},
		{
			Name:           "successfully logs in with valid credentials",
			Method:         "POST",
			URL:            "/auth/login",
			Body:           strings.NewReader(fmt.Sprintf(`{"email": %q, "password": %q}`, TestUserEmail, TestUserPassword)),
			ExpectedStatus: http.StatusOK,
			AfterTestFunc: func(t testing.TB, app *TestApp, res *http.Response) {
				require.NotEmpty(t, res.Cookies(), "login should set a session cookie")
			},
		},
		{
			Name:           "authenticated session reaches a protected endpoint",
			Method:         "GET",
			URL:            "/users/me",
			Cookies:        cookies,
			ExpectedStatus: http.StatusOK,
			ExpectedResponse: fmt.Sprintf(`{
				"id": 1,
				"firstName": "%s",
				"lastName": "%s",
				"email": "%s",
				"activated": false,
				"version": 1
			}`, TestUserFirstName, TestUserLastName, TestUserEmail),
		},
		{
			Name:           "unauthenticated request to a protected endpoint is refused",
			Method:         "GET",
			URL:            "/users/me",
			ExpectedStatus: http.StatusUnauthorized,
			ExpectedResponse: `{
				"message": "You must be authenticated to access this resource"
			}`,
		},
	}

	for _, scenario := range scenarios {
		scenario.Run(s.T(), s.app)
	}
}

func truncateUsers(t testing.TB, app *TestApp) {
	t.Helper()

	_, err := app.DB.Exec(context.Background(), "TRUNCATE users RESTART IDENTITY CASCADE")
	require.NoError(t, err)
}

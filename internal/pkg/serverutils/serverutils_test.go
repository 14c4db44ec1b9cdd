package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"student-risk-be/internal/entity"
	"student-risk-be/internal/pkg/logger"
	"student-risk-be/internal/repository/memory"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/profile", "/profile"},
		{"/profile?tab=history", "/profile?tab=history"},
		{"//evil.example.com", "/"},
		{"/\\evil.example.com", "/"},
		{"https://evil.example.com/", "/"},
		{"profile", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeNext(tt.next))
		})
	}
}

func TestIssueAndParseToken(t *testing.T) {
	token, exp, err := IssueToken("secret", 42, "a@example.com", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	id, email, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, "a@example.com", email)

	_, _, err = ParseToken("other-secret", token)
	assert.Error(t, err)

	expired, _, err := IssueToken("secret", 42, "a@example.com", -time.Minute)
	require.NoError(t, err)
	_, _, err = ParseToken("secret", expired)
	assert.Error(t, err)
}

func TestJwtMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/api/me", NewJwtMiddleware("secret"), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": c.Locals(LocalUserID)})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/me", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, _, err := IssueToken("secret", 7, "a@example.com", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest("GET", "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"user_id":7}`, string(body))
}

type signupForm struct {
	Email string `validate:"required,email,max=150"`
	Name  string `validate:"required"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(signupForm{Email: "a@example.com", Name: "A"}))

	err := ValidateRequest(signupForm{Email: "not-an-email"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Has("Email"))
	assert.True(t, ve.Has("Name"))
	assert.Equal(t, "validation failed: Email failed on 'email', Name failed on 'required'", ve.Error())
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(logger.NewNopLogger()))
	app.Get("/api/boom", func(c *fiber.Ctx) error { return errors.New("db password leaked") })
	app.Get("/api/bad", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusBadRequest, "bad input") })
	app.Get("/page", func(c *fiber.Ctx) error { return errors.New("boom") })

	resp, err := app.Test(httptest.NewRequest("GET", "/api/boom", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var res BaseResponse[any]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.False(t, res.Success)
	assert.Equal(t, "Internal Server Error", res.Message)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/bad", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/missing", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/page", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "Internal Server Error", string(body))
}

func newSessionApp(t *testing.T) (*fiber.App, *SessionManager) {
	t.Helper()
	sm := NewSessionManager(memory.NewSessionRepository(time.Hour), time.Hour, false, logger.NewNopLogger())

	app := fiber.New()
	app.Use(sm.Middleware())
	app.Get("/login-as", func(c *fiber.Ctx) error {
		sm.Login(c, &entity.User{Id: 5, Email: "s@example.com"})
		sm.Flash(c, entity.FlashSuccess, "Logged in successfully")
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/logout", func(c *fiber.Ctx) error {
		sm.Logout(c)
		sm.Flash(c, entity.FlashInfo, "Logged out")
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/whoami", sm.RequireLogin(), func(c *fiber.Ctx) error {
		return c.SendString(sm.Current(c).Email)
	})
	app.Get("/flashes", func(c *fiber.Ctx) error {
		return c.JSON(sm.PopFlashes(c))
	})
	return app, sm
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	return nil
}

func get(t *testing.T, app *fiber.App, path string, cookie *http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestSessionManager_Flow(t *testing.T) {
	app, _ := newSessionApp(t)

	resp := get(t, app, "/whoami", nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?next=%2Fwhoami", resp.Header.Get("Location"))
	anon := sessionCookie(resp)
	require.NotNil(t, anon)
	assert.True(t, anon.HttpOnly)

	resp = get(t, app, "/login-as", anon)
	authed := sessionCookie(resp)
	require.NotNil(t, authed)
	assert.NotEqual(t, anon.Value, authed.Value, "login must rotate the session id")

	resp = get(t, app, "/whoami", authed)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "s@example.com", string(body))

	// the old anonymous id is gone
	resp = get(t, app, "/whoami", anon)
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	resp = get(t, app, "/flashes", authed)
	body, _ = io.ReadAll(resp.Body)
	assert.JSONEq(t, `[{"category":"success","message":"Logged in successfully"}]`, string(body))

	resp = get(t, app, "/flashes", authed)
	body, _ = io.ReadAll(resp.Body)
	assert.Equal(t, "null", string(body), "flashes are one-shot")

	resp = get(t, app, "/logout", authed)
	fresh := sessionCookie(resp)
	require.NotNil(t, fresh)
	assert.NotEqual(t, authed.Value, fresh.Value)

	resp = get(t, app, "/whoami", authed)
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	resp = get(t, app, "/flashes", fresh)
	body, _ = io.ReadAll(resp.Body)
	assert.JSONEq(t, `[{"category":"info","message":"Logged out"}]`, string(body))

	// logging out twice is harmless
	resp = get(t, app, "/logout", fresh)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

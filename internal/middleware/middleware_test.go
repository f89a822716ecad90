package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTaken = errors.New("taken")

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: NewErrorHandler(func(err error) int {
			if errors.Is(err, errTaken) {
				return fiber.StatusConflict
			}
			return 0
		}),
	})
	app.Use(RequestLogger())
	return app
}

func call(t *testing.T, app *fiber.App, req *http.Request) (int, string) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestAdminOnly(t *testing.T) {
	app := newApp()
	app.Get("/admin", AdminOnly("k3y"), func(c *fiber.Ctx) error { return c.SendString("ok") })

	code, _ := call(t, app, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, code)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(APIKeyHeader, "nope")
	code, _ = call(t, app, req)
	assert.Equal(t, http.StatusForbidden, code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(APIKeyHeader, "Bearer k3y")
	code, body := call(t, app, req)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)
}

func TestAdminOnlyWithoutKeyIsClosed(t *testing.T) {
	app := newApp()
	app.Get("/admin", AdminOnly(""), func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(APIKeyHeader, "anything")
	code, _ := call(t, app, req)
	assert.Equal(t, http.StatusForbidden, code)
}

type createRequest struct {
	Name string `json:"name" validate:"required,max=5"`
}

func TestBindValidates(t *testing.T) {
	app := newApp()
	app.Post("/things", func(c *fiber.Ctx) error {
		var req createRequest
		if err := Bind(c, &req); err != nil {
			return err
		}
		return c.SendString(req.Name)
	})

	post := func(body string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/things", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	code, body := call(t, app, post(`{"name":"abc"}`))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "abc", body)

	code, body = call(t, app, post(`{"name":"too long"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, body, `"Name":"max"`)

	code, _ = call(t, app, post(`{"name":`))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestErrorHandlerClassifies(t *testing.T) {
	app := newApp()
	app.Get("/conflict", func(c *fiber.Ctx) error { return errTaken })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("disk on fire") })
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })

	code, body := call(t, app, httptest.NewRequest(http.MethodGet, "/conflict", nil))
	assert.Equal(t, http.StatusConflict, code)
	assert.JSONEq(t, `{"error":"taken"}`, body)

	code, body = call(t, app, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, body, "disk on fire")

	code, body = call(t, app, httptest.NewRequest(http.MethodGet, "/teapot", nil))
	assert.Equal(t, http.StatusTeapot, code)
	assert.Contains(t, body, "short and stout")
}

package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"campusconnect/apperrors"
	"campusconnect/db"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticResolver struct {
	user *db.User
}

func (r staticResolver) CurrentUser(context.Context) (*db.User, error) {
	return r.user, nil
}

func newTestApp(user *db.User) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: apperrors.Handler(apperrors.HandlerConfig{}),
	})
	app.Use(New(Config{Resolver: staticResolver{user: user}}))
	app.Get("/me", func(c *fiber.Ctx) error {
		u, _ := UserFromContext(c)
		return c.SendString(u.Name)
	})
	app.Get("/admin", RequireRole(db.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestNew_NoSessionIsUnauthorized(t *testing.T) {
	app := newTestApp(nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestNew_StoresUser(t *testing.T) {
	app := newTestApp(&db.User{ID: 2, Name: "Student Bob", Role: db.RoleStudent})

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRole(t *testing.T) {
	student := newTestApp(&db.User{ID: 2, Role: db.RoleStudent})
	resp, err := student.Test(httptest.NewRequest("GET", "/admin", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	admin := newTestApp(&db.User{ID: 1, Role: db.RoleAdmin})
	resp, err = admin.Test(httptest.NewRequest("GET", "/admin", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

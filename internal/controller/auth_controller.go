// FILE: internal/controller/auth_controller.go
package controller

import (
	"errors"
	"fmt"

	"student-risk-be/internal/dto"
	"student-risk-be/internal/entity"
	"student-risk-be/internal/pkg/serverutils"
	"student-risk-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	msgRegistered      = "Registration successful. Please log in."
	msgEmailTaken      = "Email already registered"
	msgLoggedIn        = "Logged in successfully"
	msgBadCredentials  = "Invalid email or password"
	msgLoggedOut       = "Logged out"
	msgInvalidEmail    = "Invalid email address"
	msgPasswordsDiffer = "Passwords must match"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	RegisterAPIRoutes(api fiber.Router)
	RegisterPage(ctx *fiber.Ctx) error
	Register(ctx *fiber.Ctx) error
	LoginPage(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
	Token(ctx *fiber.Ctx) error
}

type authController struct {
	service  service.IAuthService
	sessions *serverutils.SessionManager
}

func NewAuthController(service service.IAuthService, sessions *serverutils.SessionManager) IAuthController {
	return &authController{service: service, sessions: sessions}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	guest := c.sessions.RedirectAuthenticated("/")
	r.Get("/register", guest, c.RegisterPage)
	r.Post("/register", guest, c.Register)
	r.Get("/login", guest, c.LoginPage)
	r.Post("/login", guest, c.Login)
	r.Get("/logout", c.Logout)
}

func (c *authController) RegisterAPIRoutes(api fiber.Router) {
	api.Post("/auth/token", c.Token)
}

func (c *authController) registerView(ctx *fiber.Ctx, email, errMsg string) error {
	return render(ctx, c.sessions, "register", "Register", fiber.Map{
		"FormEmail":         email,
		"Error":             errMsg,
		"MinPasswordLength": c.service.MinPasswordLength(),
	})
}

func (c *authController) loginView(ctx *fiber.Ctx, email string) error {
	return render(ctx, c.sessions, "login", "Login", fiber.Map{
		"FormEmail": email,
		"Next":      ctx.Query("next"),
	})
}

func (c *authController) RegisterPage(ctx *fiber.Ctx) error {
	return c.registerView(ctx, "", "")
}

func (c *authController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form")
	}

	_, err := c.service.Register(ctx.UserContext(), &req)
	switch {
	case err == nil:
		c.sessions.Flash(ctx, entity.FlashSuccess, msgRegistered)
		return ctx.Redirect("/login", fiber.StatusFound)
	case errors.Is(err, service.ErrDuplicateEmail):
		c.sessions.Flash(ctx, entity.FlashWarning, msgEmailTaken)
		return c.registerView(ctx, req.Email, "")
	case errors.Is(err, service.ErrInvalidEmail):
		return c.registerView(ctx, req.Email, msgInvalidEmail)
	case errors.Is(err, service.ErrPasswordMismatch):
		return c.registerView(ctx, req.Email, msgPasswordsDiffer)
	case errors.Is(err, service.ErrWeakPassword):
		return c.registerView(ctx, req.Email, fmt.Sprintf("Password must be at least %d characters", c.service.MinPasswordLength()))
	default:
		return err
	}
}

func (c *authController) LoginPage(ctx *fiber.Ctx) error {
	return c.loginView(ctx, "")
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form")
	}

	user, err := c.service.Login(ctx.UserContext(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.sessions.Flash(ctx, entity.FlashDanger, msgBadCredentials)
			return c.loginView(ctx, req.Email)
		}
		return err
	}

	c.sessions.Login(ctx, user)
	c.sessions.Flash(ctx, entity.FlashSuccess, msgLoggedIn)
	return ctx.Redirect(serverutils.SafeNext(ctx.Query("next")), fiber.StatusFound)
}

func (c *authController) Logout(ctx *fiber.Ctx) error {
	c.service.Logout(ctx.UserContext(), c.sessions.Current(ctx))
	c.sessions.Logout(ctx)
	c.sessions.Flash(ctx, entity.FlashInfo, msgLoggedOut)
	return ctx.Redirect("/", fiber.StatusFound)
}

func (c *authController) Token(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	res, err := c.service.Token(ctx.UserContext(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, msgBadCredentials))
		}
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Token issued", res))
}

// Package accountapi exposes the authentication endpoints over HTTP.
package accountapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/playforge/login/pkg/account"
	"github.com/playforge/login/pkg/account/accountsrv"
	"github.com/playforge/login/pkg/auth"
	"github.com/playforge/login/pkg/errx"
	"github.com/playforge/login/pkg/logx"
)

// Handlers wires the account service into fiber routes
type Handlers struct {
	service *accountsrv.AccountService
}

func NewHandlers(service *accountsrv.AccountService) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes mounts the authentication endpoints:
//
//	POST /auth          authorize with a credential
//	POST /auth/attach   attach a credential to another account
//	POST /auth/resolve  resolve a pending merge conflict
//	GET  /auth/validate check an access token
func (h *Handlers) RegisterRoutes(app *fiber.App) {
	app.Post("/auth", h.authorize)
	app.Post("/auth/attach", h.attachAccount)
	app.Post("/auth/resolve", h.resolveConflict)
	app.Get("/auth/validate", h.validateToken)
}

func (h *Handlers) authorize(c *fiber.Ctx) error {
	result, err := h.service.Authorize(c.Context(), requestArgs(c), requestEnv(c))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(result)
}

func (h *Handlers) attachAccount(c *fiber.Ctx) error {
	result, err := h.service.AttachAccount(c.Context(), requestArgs(c), requestEnv(c))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(result)
}

func (h *Handlers) resolveConflict(c *fiber.Ctx) error {
	result, err := h.service.ResolveConflict(c.Context(), requestArgs(c), requestEnv(c))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(result)
}

func (h *Handlers) validateToken(c *fiber.Ctx) error {
	value := c.Query("access_token")
	if value == "" {
		return renderError(c, account.Errors.New(account.CodeMissingArgument).
			WithMessage("Missing argument: 'access_token'."))
	}

	claims, err := h.service.Validate(c.Context(), value)
	if err != nil {
		return renderError(c, account.Errors.New(account.CodeAccessTokenInvalid))
	}

	return c.JSON(fiber.Map{
		"account":    claims.Account,
		"credential": claims.Subject,
		"gamespace":  claims.Gamespace,
		"scopes":     claims.Scopes,
	})
}

// requestArgs flattens query and body arguments into one map; a body value
// wins over a query one of the same name.
func requestArgs(c *fiber.Ctx) auth.Args {
	args := auth.Args{}
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		args[string(key)] = string(value)
	})
	c.Context().PostArgs().VisitAll(func(key, value []byte) {
		args[string(key)] = string(value)
	})
	return args
}

func requestEnv(c *fiber.Ctx) auth.Env {
	return auth.Env{
		"ip_address": c.IP(),
	}
}

// renderError writes the flat error envelope the protocol expects:
// result_id, info, and any extra fields at the top level.
func renderError(c *fiber.Ctx, err error) error {
	var e *errx.Error
	if !errx.As(err, &e) {
		e = errx.Internal("An unexpected error occurred.")
	}

	if e.HTTPStatus >= 500 {
		logx.WithFields(logx.Fields{
			"path":   c.Path(),
			"method": c.Method(),
		}).WithError(err).Error("request failed")
	}

	return c.Status(e.HTTPStatus).JSON(e.Envelope())
}

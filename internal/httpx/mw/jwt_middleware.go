// Package mw contains HTTP middleware for bearer-token auth and rate limiting.
package mw

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AuthContext holds authentication details extracted from a bearer token.
type AuthContext struct {
	Subject string
	Kind    string // user | service
	Roles   []string
}

// TokenParser parses a token string and returns subject, kind and roles.
type TokenParser func(token string) (string, string, []string, error)

// JWTMiddlewareDynamic attaches the auth context parsed by parse. Requests
// without a valid bearer token pass through unauthenticated.
func JWTMiddlewareDynamic(parse TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if len(authz) < len("Bearer ") || !strings.EqualFold(authz[:len("Bearer ")], "bearer ") {
			return c.Next()
		}
		token := strings.TrimSpace(authz[len("Bearer "):])
		sub, kind, roles, err := parse(token)
		if err == nil && sub != "" {
			c.Locals("auth", &AuthContext{Subject: sub, Kind: kind, Roles: roles})
		}
		return c.Next()
	}
}

// Auth returns the request's auth context, or nil.
func Auth(c *fiber.Ctx) *AuthContext {
	ac, _ := c.Locals("auth").(*AuthContext)
	return ac
}

// RequireUser enforces an authenticated user (kind=user).
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ac := Auth(c)
		if ac == nil || ac.Kind != "user" || ac.Subject == "" {
			return fiber.ErrUnauthorized
		}
		return c.Next()
	}
}

// Subject returns the authenticated subject, or "" for anonymous requests.
func Subject(c *fiber.Ctx) string {
	if ac := Auth(c); ac != nil {
		return ac.Subject
	}
	return ""
}

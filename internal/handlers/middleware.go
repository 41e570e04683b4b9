package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"thermowatch/internal/apperr"
	"thermowatch/internal/models"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

var (
	errMissingHeader = fmt.Errorf("%w: missing Authorization header", apperr.ErrUnauthorized)
	errHeaderFormat  = fmt.Errorf("%w: invalid Authorization header format", apperr.ErrUnauthorized)
	errBadToken      = fmt.Errorf("%w: invalid or expired token", apperr.ErrUnauthorized)
)

// authenticate resolves the bearer token of r into a principal.
// It never touches the request body.
func (h *Handler) authenticate(r *http.Request) (models.Principal, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return models.Principal{}, errMissingHeader
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return models.Principal{}, errHeaderFormat
	}

	p, err := h.services.ParseToken(parts[1])
	if err != nil {
		return models.Principal{}, fmt.Errorf("%w: %w", errBadToken, err)
	}
	return p, nil
}

// authorize guards a route: 401 unless a valid bearer token is present.
func (h *Handler) authorize(c *gin.Context) {
	p, err := h.authenticate(c.Request)
	if err != nil {
		if h.log != nil {
			h.log.Infow("auth_rejected", "path", c.FullPath(), "err", err)
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": unauthorizedMessage(err),
		})
		return
	}

	// store in Gin context
	c.Set(principalKey, p)
	c.Next()
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, errMissingHeader):
		return "missing Authorization header"
	case errors.Is(err, errHeaderFormat):
		return "invalid Authorization header format"
	default:
		return "invalid or expired token"
	}
}

// principalFrom returns the identity stored by authorize, or the zero
// principal on routes that run without the guard.
func principalFrom(c *gin.Context) models.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return models.Principal{}
	}
	p, _ := v.(models.Principal)
	return p
}

package api

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
)

// bindJSON decodes the request body into dst. Field rules are checked by the
// services, so only malformed bodies fail here.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		msg := "malformed JSON body"
		if errors.Is(err, io.EOF) {
			msg = "request body is empty"
		}
		_ = c.Error(&apperr.Error{Kind: apperr.KindValidation, Code: apperr.CodeInvalidInput, Message: msg, Err: err})
		return false
	}
	return true
}

// pathID parses a positive numeric path parameter. Anything else is a 404.
func pathID(c *gin.Context, name, what string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		_ = c.Error(apperr.NotFound(what))
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, name string) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return n
}

// queryFilterID parses an optional numeric id filter. An absent value yields
// zero; anything that is not a positive integer is a validation error.
func queryFilterID(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		_ = c.Error(apperr.Validation(apperr.CodeInvalidInput, name, "must be a numeric id"))
		return 0, false
	}
	return uint(id), true
}

// queryFlag parses an optional boolean filter. Nil means the parameter was
// not supplied.
func queryFlag(c *gin.Context, name string) (*bool, bool) {
	raw := strings.ToLower(strings.TrimSpace(c.Query(name)))
	var v bool
	switch raw {
	case "":
		return nil, true
	case "1", "true", "yes":
		v = true
	case "0", "false", "no":
		v = false
	default:
		_ = c.Error(apperr.Validation(apperr.CodeInvalidInput, name, "must be a boolean"))
		return nil, false
	}
	return &v, true
}

// currentUser loads the authenticated caller. It reports 401 when the token's
// user no longer exists.
func currentUser(c *gin.Context, users service.IUserService) (*models.User, bool) {
	id := middleware.CurrentUserID(c)
	if id == 0 {
		_ = c.Error(errNotAuthenticated)
		return nil, false
	}
	user, err := users.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			err = apperr.Unauthorized("user not found")
		}
		_ = c.Error(err)
		return nil, false
	}
	return user, true
}

// requestBaseURL derives scheme and host from the request. Only http and
// https are taken from X-Forwarded-Proto.
func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	switch proto := strings.ToLower(strings.TrimSpace(c.GetHeader("X-Forwarded-Proto"))); proto {
	case "http", "https":
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}

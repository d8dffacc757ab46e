package api

import (
	"errors"   // Error inspection
	"fmt"      // Message formatting
	"net/http" // HTTP status codes
	"reflect"  // Validator tag names
	"strconv"  // Path and query parsing
	"strings"  // String manipulation
	"sync"     // One-time validator setup

	"music_library/internal/domain"     // Domain errors
	"music_library/internal/media"      // Upload errors
	"music_library/internal/middleware" // Request ids
	"music_library/internal/service"    // Page size defaults
	"music_library/internal/utils"      // Response envelope

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/gin-gonic/gin/binding"       // Request binding
	"github.com/go-playground/validator/v10" // Field validation
	"github.com/sirupsen/logrus"             // Logging
)

var tagNames sync.Once

// useRequestFieldNames makes validation errors name fields the way clients send them
func useRequestFieldNames() {
	tagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"form", "json"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return fld.Name
		})
	})
}

// validationMessages turns binding errors into one message per field
func validationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"invalid request body"}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+": is required")
		case "email":
			msgs = append(msgs, fe.Field()+": must be a valid email")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s: must be at least %s characters", fe.Field(), fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s: must be at most %s characters", fe.Field(), fe.Param()))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s: must be greater than %s", fe.Field(), fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s: must be one of %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return msgs
}

// validationFailed writes a 400 with the field messages under data.errors
func validationFailed(c *gin.Context, msgs []string) {
	c.JSON(http.StatusBadRequest, utils.Envelope{
		Status:  utils.StatusFail,
		Message: "Validation failed",
		Data:    gin.H{"errors": msgs},
	})
}

// bind decodes the request into req and answers 400 when it does not validate
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBind(req); err != nil {
		validationFailed(c, validationMessages(err))
		return false
	}
	return true
}

// respondErr maps a service error to its status. Anything unexpected is logged
// with op and fields and answered with a generic 500.
func respondErr(c *gin.Context, op string, err error, fields logrus.Fields) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		validationFailed(c, verr.Messages)
	case errors.Is(err, media.ErrUnsupportedType), errors.Is(err, media.ErrTooLarge):
		validationFailed(c, []string{err.Error()})
	case errors.Is(err, domain.ErrAudioRequired),
		errors.Is(err, domain.ErrUserRequired),
		errors.Is(err, domain.ErrNoSongs):
		utils.Fail(c, http.StatusBadRequest, errorReason(err))
	case errors.Is(err, domain.ErrNotFound):
		utils.Fail(c, http.StatusNotFound, "Resource not found")
	case errors.Is(err, domain.ErrConflict):
		utils.Fail(c, http.StatusConflict, "Resource already exists")
	case errors.Is(err, domain.ErrInvalidCredentials):
		utils.Fail(c, http.StatusUnauthorized, domain.ErrInvalidCredentials.Error())
	case errors.Is(err, domain.ErrBlocked):
		utils.Fail(c, http.StatusForbidden, "Your account has been blocked")
	case errors.Is(err, domain.ErrForbidden):
		utils.Fail(c, http.StatusForbidden, "Forbidden")
	default:
		if fields == nil {
			fields = logrus.Fields{}
		}
		fields["error"] = err.Error()
		if id, ok := c.Get(middleware.ContextRequestID); ok {
			fields["request_id"] = id
		}
		logrus.WithFields(fields).Error(op + " failed")
		c.JSON(http.StatusInternalServerError, utils.Envelope{Status: utils.StatusError, Message: utils.GenericErrorMessage})
	}
}

// errorReason returns the sentinel's own message for the client errors above
func errorReason(err error) string {
	for _, target := range []error{domain.ErrAudioRequired, domain.ErrUserRequired, domain.ErrNoSongs} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}

// notFound answers 404 with a message naming the entity
func notFound(c *gin.Context, entity string) {
	utils.Fail(c, http.StatusNotFound, entity+" not found")
}

// pathID parses a numeric path parameter, answering 400 when it is malformed
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		validationFailed(c, []string{name + ": must be a positive integer"})
		return 0, false
	}
	return uint(id), true
}

// pageParams reads page and limit from the query string, falling back to defaults
func pageParams(c *gin.Context) (int, int) {
	page, limit := 1, service.DefaultPageSize
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v // Set page if valid
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v // Clamped by the service
	}
	return page, limit
}

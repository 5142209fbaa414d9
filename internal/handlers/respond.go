package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/SscSPs/inventory_management_app/internal/apperrors"
	"github.com/SscSPs/inventory_management_app/internal/dto"
	"github.com/SscSPs/inventory_management_app/internal/middleware"
)

// statusForError picks the HTTP status from the error kind. Clients still match on the message text.
func statusForError(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindTransactionNotFound:
		return http.StatusNotFound
	case apperrors.KindValidationFailed,
		apperrors.KindProductNotFound,
		apperrors.KindInsufficientStock,
		apperrors.KindStockUpdateFailed:
		return http.StatusBadRequest
	case apperrors.KindRemoteUnreachable, apperrors.KindUnexpected:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the failure envelope for err, logging server-side failures.
func respondError(c *gin.Context, status int, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	message := apperrors.MessageOf(err, fallback)

	errs := apperrors.DetailsOf(err)
	if len(errs) == 0 {
		if cause := errors.Unwrap(err); cause != nil {
			errs = []string{cause.Error()}
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error(fallback, slog.String("error", err.Error()), slog.Int("status", status))
	} else {
		logger.Warn(fallback, slog.String("error", err.Error()), slog.Int("status", status))
	}
	c.JSON(status, dto.Fail(message, errs...))
}

// pathID returns the named path parameter when it is a UUID. Any other value cannot name a
// stored record, so it is answered with notFound at status before reaching storage.
func pathID(c *gin.Context, name string, notFound *apperrors.Error, status int) (string, bool) {
	id := c.Param(name)
	if uuid.Validate(id) != nil {
		respondError(c, status, notFound, notFound.Message)
		return "", false
	}
	return id, true
}

// respondBindError answers 400 with one message per failed binding rule.
func respondBindError(c *gin.Context, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Request binding failed", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, dto.Fail(apperrors.MsgValidationFailed, bindingMessages(err)...))
}

func bindingMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		if opts := strings.Fields(fe.Param()); len(opts) == 2 {
			return fmt.Sprintf("%s must be either '%s' or '%s'", fe.Field(), opts[0], opts[1])
		}
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s cannot exceed %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a valid identifier", fe.Field())
	case tagDecimalGreaterThanZero:
		return fmt.Sprintf("%s must be greater than 0", fe.Field())
	case tagDecimalNotNegative:
		return fmt.Sprintf("%s cannot be negative", fe.Field())
	default:
		return fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag())
	}
}

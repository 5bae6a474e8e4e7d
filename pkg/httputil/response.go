package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Code    int         `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Status: "success", Data: data})
}

func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Status: "success", Data: data})
}

// RespondWithError sends an error response with the status derived from
// the error's code. Unknown errors are reported as internal without their
// message.
func RespondWithError(c *gin.Context, err error) {
	RespondWithErrorData(c, err, nil)
}

// RespondWithErrorData is RespondWithError with a payload alongside the message.
func RespondWithErrorData(c *gin.Context, err error, data interface{}) {
	_ = c.Error(err)

	if errors.Is(err, context.DeadlineExceeded) {
		err = &apperrors.AppError{Code: apperrors.ErrTimeout, Message: "Request timeout", Err: err}
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, Response{
			Status:  "error",
			Message: "Internal server error",
			Code:    int(apperrors.ErrInternal),
			Data:    data,
		})
		return
	}

	message := appErr.Message
	if appErr.Code == apperrors.ErrInternal {
		message = "Internal server error"
	}
	c.JSON(appErr.Code.HTTPStatus(), Response{
		Status:  "error",
		Message: message,
		Code:    int(appErr.Code),
		Data:    data,
	})
}

// FieldError names one request field that failed validation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var fieldMessages = map[string]string{
	"required": "Field is required",
	"email":    "Invalid email format",
	"min":      "Value is too short",
	"max":      "Value is too long",
	"gt":       "Value is too small",
	"oneof":    "Value is not allowed",
	"hhmm":     "Expected a time as HH:MM",
	"weekday":  "Expected a weekday name",
}

// RespondBindError reports a request that failed binding or validation,
// listing the offending fields when the validator names them.
func RespondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		RespondWithError(c, apperrors.NewBadRequest("Invalid request body", err))
		return
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		msg := fieldMessages[e.Tag()]
		if msg == "" {
			msg = e.Error()
		}
		fields = append(fields, FieldError{Field: e.Field(), Message: msg})
	}
	RespondWithErrorData(c, apperrors.NewBadRequest("Validation failed", err), fields)
}

package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/api"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/booking"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/guard"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/listings"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/middleware"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/rent"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/session"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/support"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/validation"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/visits"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error    string            `json:"error"`
	Message  string            `json:"message"`
	Code     string            `json:"code,omitempty"`
	Fields   validation.Errors `json:"fields,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
}

// maxUploadMemory bounds the multipart form kept in memory
const maxUploadMemory = 32 << 20

// conflictErrors are domain refusals reported as 409
var conflictErrors = []error{
	booking.ErrAlreadyStarted,
	booking.ErrBookingSettled,
	support.ErrActiveTicketExists,
	support.ErrTicketClosed,
	visits.ErrNotPending,
	rent.ErrAlreadyDecided,
}

// badRequestErrors are domain refusals of the input itself
var badRequestErrors = []error{
	booking.ErrConfirmationRequired,
	booking.ErrNoBooking,
	booking.ErrInvalidAmount,
	booking.ErrNoPaymentLink,
	rent.ErrNoPayment,
	rent.ErrInvalidAmount,
	rent.ErrNotAnImage,
	listings.ErrNotAnImage,
	listings.ErrTooManyImages,
	listings.ErrBadBillType,
	listings.ErrNoFiles,
	support.ErrNoTicketSelected,
}

// goneErrors mean the flow the browser refers to has been closed
var goneErrors = []error{
	booking.ErrFlowClosed,
	rent.ErrFlowClosed,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// respondError maps a domain error onto the JSON error shape. Auth failures
// force the browser session out before answering.
func respondError(c *gin.Context, logger logrus.FieldLogger, err error) {
	if verrs, ok := validation.AsErrors(err); ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: session.MsgFixFields,
			Code:    "VALIDATION_ERROR",
			Fields:  verrs,
		})
		return
	}

	if api.IsAuthFailure(err) {
		if ws, ok := middleware.GetWebSession(c); ok {
			ws.Store.HandleAuthFailure(c.Request.Context(), err)
		}
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:    "session_expired",
			Message:  session.MsgSessionExpired,
			Code:     "SESSION_EXPIRED",
			Redirect: guard.LoginPath,
		})
		return
	}

	if api.IsNetworkError(err) {
		logger.WithError(err).Warn("API unreachable")
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "network_error",
			Message: api.NetworkErrorMessage,
			Code:    "NETWORK_ERROR",
		})
		return
	}

	switch {
	case isAny(err, conflictErrors):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "conflict", Message: err.Error(), Code: "CONFLICT"})
		return
	case isAny(err, badRequestErrors):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: err.Error(), Code: "BAD_REQUEST"})
		return
	case isAny(err, goneErrors):
		c.JSON(http.StatusGone, ErrorResponse{Error: "flow_closed", Message: err.Error(), Code: "FLOW_CLOSED"})
		return
	}

	if apiErr, ok := api.AsAPIError(err); ok {
		status := apiErr.Status
		if status < 400 || status >= 500 {
			status = http.StatusBadGateway
		}
		code := apiErr.Code
		if code == "" {
			code = "API_ERROR"
		}
		c.JSON(status, ErrorResponse{
			Error:   "api_error",
			Message: api.MessageOf(err, "Something went wrong. Please try again."),
			Code:    code,
		})
		return
	}

	logger.WithError(err).Error("Unhandled handler error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "Something went wrong. Please try again.",
		Code:    "INTERNAL_ERROR",
	})
}

func invalidBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "validation_error",
		Message: "Invalid request body",
		Code:    "INVALID_BODY",
	})
}

func notFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   "not_found",
		Message: message,
		Code:    "NOT_FOUND",
	})
}

// formFiles reads every file of a multipart field into memory
func formFiles(c *gin.Context, field string) ([]api.UploadFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, listings.ErrNoFiles
	}

	headers := form.File[field]
	if len(headers) == 0 {
		return nil, listings.ErrNoFiles
	}

	files := make([]api.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := readFormFile(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// formFile reads the single file of a multipart field
func formFile(c *gin.Context, field string) (api.UploadFile, error) {
	files, err := formFiles(c, field)
	if err != nil {
		return api.UploadFile{}, err
	}
	return files[0], nil
}

func readFormFile(fh *multipart.FileHeader) (api.UploadFile, error) {
	f, err := fh.Open()
	if err != nil {
		return api.UploadFile{}, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return api.UploadFile{}, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
	}
	return api.UploadFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     bytes.NewReader(data),
	}, nil
}

// authFailureHook logs the browser session out when a background request
// is rejected for auth reasons
func authFailureHook(store *session.Store) func(error) {
	return func(err error) {
		store.HandleAuthFailure(context.Background(), err)
	}
}

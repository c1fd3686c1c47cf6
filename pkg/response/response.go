// Package response writes the JSON envelope shared by every endpoint.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fitspace-backend/pkg/errors"
)

// SuccessResponse is the envelope for successful requests.
type SuccessResponse struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// ErrorResponse is the envelope for failed requests.
type ErrorResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
	Details    string `json:"details,omitempty"`
}

// Pagination describes a page of a listing.
type Pagination struct {
	Page        int64 `json:"page"`
	Limit       int64 `json:"limit"`
	Offset      int64 `json:"offset"`
	TotalCount  int64 `json:"total_count"`
	TotalPages  int64 `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// Success writes a 200 envelope.
func Success(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// Paginated writes a 200 envelope with pagination metadata.
func Paginated(c *gin.Context, data any, p *Pagination, message string) {
	c.JSON(http.StatusOK, SuccessResponse{
		Success:    true,
		Data:       data,
		Message:    message,
		Pagination: p,
	})
}

// Error writes an error envelope with the given status.
func Error(c *gin.Context, status int, message string, details ...string) {
	resp := ErrorResponse{
		Success:    false,
		Error:      message,
		StatusCode: status,
	}
	if len(details) > 0 {
		resp.Details = details[0]
	}
	c.JSON(status, resp)
}

// AbortWithError writes an error envelope and stops the handler chain.
func AbortWithError(c *gin.Context, status int, message string, details ...string) {
	Error(c, status, message, details...)
	c.Abort()
}

// FromError maps err onto an envelope. Client errors use their own message;
// server errors use fallback and carry the underlying error in details.
func FromError(c *gin.Context, err error, fallback string) {
	status := apperrors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		Error(c, status, fallback, err.Error())
		return
	}
	Error(c, status, err.Error())
}

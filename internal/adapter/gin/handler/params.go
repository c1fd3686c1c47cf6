package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "fitspace-backend/pkg/errors"
	"fitspace-backend/pkg/response"
)

// pathID parses a positive integer path parameter. On failure it writes a 400
// with message and reports false.
func pathID(c *gin.Context, name, message string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, message)
		return 0, false
	}
	return id, true
}

// window holds the raw pagination parameters of a listing. Zero values mean
// "not given"; defaults and clamping happen in the use case.
type window struct {
	page   int64
	offset *int64
	limit  int64
}

// parseWindow reads limit, offset and page from the query string.
func parseWindow(c *gin.Context) (window, bool) {
	var w window

	limit, err := queryInt(c, "limit")
	if err != nil || (limit != nil && *limit < 1) {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", "limit must be a positive integer")
		return w, false
	}
	if limit != nil {
		w.limit = *limit
	}

	offset, err := queryInt(c, "offset")
	if err != nil || (offset != nil && *offset < 0) {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", "offset must be a non-negative integer")
		return w, false
	}
	w.offset = offset

	page, err := queryInt(c, "page")
	if err != nil || (page != nil && *page < 1) {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", "page must be a positive integer")
		return w, false
	}
	if page != nil {
		w.page = *page
	}

	return w, true
}

// queryInt returns nil when the parameter is absent or empty.
func queryInt(c *gin.Context, key string) (*int64, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// logFailure logs a failed use case call at Warn for client errors and at
// Error for everything else.
func logFailure(log *zap.Logger, msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if apperrors.IsClientError(err) {
		log.Warn(msg, fields...)
		return
	}
	log.Error(msg, fields...)
}

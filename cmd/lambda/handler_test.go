package main

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitspace-backend/pkg/logger"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/v1/users/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id":       c.Param("id"),
			"limit":    c.Query("limit"),
			"trace_id": logger.GetTraceID(c.Request.Context()),
		})
	})
	return r
}

func TestHandle(t *testing.T) {
	h := NewHandler(setupRouter())
	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "req-123"})

	resp, err := h.Handle(ctx, events.APIGatewayProxyRequest{
		HTTPMethod:            http.MethodGet,
		Path:                  "/api/v1/users/42",
		QueryStringParameters: map[string]string{"limit": "5"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.Equal(t, "42", body["id"])
	assert.Equal(t, "5", body["limit"])
	assert.Equal(t, "req-123", body["trace_id"])
}

func TestHandle_UnknownRoute(t *testing.T) {
	h := NewHandler(setupRouter())

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodGet,
		Path:       "/nope",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

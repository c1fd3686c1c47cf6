package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"fitspace-backend/pkg/logger"
)

// Handler adapts API Gateway proxy events onto the Gin router
type Handler struct {
	adapter *ginadapter.GinLambda
}

// NewHandler creates a Handler serving router
func NewHandler(router *gin.Engine) *Handler {
	return &Handler{adapter: ginadapter.New(router)}
}

// Handle serves one invocation. The Lambda request ID is attached to the
// context so that every log line of the invocation carries it as trace_id.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		ctx = logger.ContextWithTraceID(ctx, lc.AwsRequestID)
	}
	return h.adapter.ProxyWithContext(ctx, req)
}

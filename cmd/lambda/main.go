package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"fitspace-backend/cmd/api/app"
)

func main() {
	// Built once per cold start and reused by every invocation
	a, err := app.New(context.Background())
	if err != nil {
		log.Fatalf("failed to start application: %v", err)
	}

	a.Logger.Info("lambda handler ready",
		zap.String("service", a.Config.Logger.ServiceName),
		zap.String("environment", a.Config.App.Environment),
	)

	lambda.StartWithOptions(NewHandler(a.Container.Router).Handle,
		lambda.WithEnableSIGTERM(func() {
			_ = a.Close()
		}),
	)
}

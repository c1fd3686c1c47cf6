// Package secrets reads database credentials from AWS Secrets Manager.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"go.uber.org/zap"
)

const defaultTimeout = 3 * time.Second

// ErrEmptySecret is returned when the secret has neither a string nor a binary value.
var ErrEmptySecret = errors.New("secret has no value")

// API is the subset of the Secrets Manager client used here.
type API interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Client fetches secret values with a per-call timeout.
type Client struct {
	api     API
	timeout time.Duration
	log     *zap.Logger
}

// New wraps an existing Secrets Manager API.
func New(api API, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{api: api, timeout: timeout, log: log}
}

// NewFromEnvironment builds a Secrets Manager client from the default AWS
// credential chain. Calls are attempted once; a failure is reported to the caller.
func NewFromEnvironment(ctx context.Context, region string, timeout time.Duration, log *zap.Logger) (*Client, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithHTTPClient(awshttp.NewBuildableClient().WithTimeout(timeout)),
		awsconfig.WithRetryMaxAttempts(1),
	}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return New(secretsmanager.NewFromConfig(cfg), timeout, log), nil
}

// GetSecretString returns the secret's string value, falling back to its
// binary value.
func (c *Client) GetSecretString(ctx context.Context, id string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	out, err := c.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		c.log.Error("failed to get secret value", zap.String("secret_id", id), zap.Error(err))
		return "", fmt.Errorf("failed to get secret value: %w", err)
	}

	c.log.Debug("secret retrieved", zap.String("secret_id", id), zap.Duration("duration", time.Since(start)))

	switch {
	case out.SecretString != nil:
		return aws.ToString(out.SecretString), nil
	case len(out.SecretBinary) > 0:
		return string(out.SecretBinary), nil
	default:
		return "", ErrEmptySecret
	}
}

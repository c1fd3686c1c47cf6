// Package connection resolves the PostgreSQL connection parameters from
// explicit settings or from a secret store, and opens connections with them.
package connection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"fitspace-backend/internal/config"
	"fitspace-backend/pkg/optional"
)

const (
	defaultPort   = "5432"
	defaultDBName = "fitspace"

	SourceExplicit = "explicit"
	SourceSecret   = "secret"
)

// ErrUnresolved is returned when neither explicit credentials nor a usable
// secret are configured.
var ErrUnresolved = errors.New("database connection parameters could not be resolved")

// SecretFetcher returns the raw string value of a secret.
type SecretFetcher interface {
	GetSecretString(ctx context.Context, id string) (string, error)
}

// Params are the resolved connection parameters.
type Params struct {
	Host           string
	Port           string
	Name           string
	Username       string
	Password       string
	SSLMode        string
	ConnectTimeout time.Duration
	Source         string
}

// DSN renders the parameters as a libpq key/value connection string.
func (p Params) DSN() string {
	parts := []string{
		"host=" + quote(p.Host),
		"port=" + quote(p.Port),
		"user=" + quote(p.Username),
		"password=" + quote(p.Password),
		"dbname=" + quote(p.Name),
	}
	if p.SSLMode != "" {
		parts = append(parts, "sslmode="+quote(p.SSLMode))
	}
	if p.ConnectTimeout > 0 {
		parts = append(parts, "connect_timeout="+strconv.Itoa(int(p.ConnectTimeout.Seconds())))
	}
	return strings.Join(parts, " ")
}

// Describe is DSN without the password, for logs.
func (p Params) Describe() string {
	return fmt.Sprintf("host=%s port=%s dbname=%s user=%s source=%s", p.Host, p.Port, p.Name, p.Username, p.Source)
}

func quote(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// secretPayload is the JSON document stored for RDS-managed credentials.
type secretPayload struct {
	Username string              `json:"username"`
	Password string              `json:"password"`
	Host     string              `json:"host"`
	Port     optional.Value[int] `json:"port"`
	DBName   string              `json:"dbname"`
}

// Resolver picks connection parameters in this order:
//  1. DB_HOST, DB_NAME, DB_USERNAME and DB_PASSWORD, when all are set
//  2. the DB_SECRET_ARN secret, with host taken from DB_CLUSTER_ENDPOINT,
//     then the secret's host, then DB_PROXY_ENDPOINT
type Resolver struct {
	cfg     config.DatabaseConfig
	secrets SecretFetcher
	log     *zap.Logger
}

// NewResolver creates a Resolver. secrets may be nil when explicit
// credentials are always configured.
func NewResolver(cfg config.DatabaseConfig, secrets SecretFetcher, log *zap.Logger) *Resolver {
	return &Resolver{cfg: cfg, secrets: secrets, log: log}
}

// Resolve returns the connection parameters.
func (r *Resolver) Resolve(ctx context.Context) (Params, error) {
	params := Params{
		SSLMode:        r.cfg.SSLMode,
		ConnectTimeout: time.Duration(r.cfg.ConnectTimeoutSeconds) * time.Second,
	}

	if r.cfg.HasExplicitCredentials() {
		params.Host = r.cfg.Host
		params.Port = withDefault(r.cfg.Port, defaultPort)
		params.Name = r.cfg.Name
		params.Username = r.cfg.Username
		params.Password = r.cfg.Password
		params.Source = SourceExplicit

		r.log.Info("using explicit database credentials", zap.String("target", params.Describe()))
		return params, nil
	}

	if r.cfg.SecretARN == "" {
		return Params{}, fmt.Errorf("%w: set DB_HOST, DB_NAME, DB_USERNAME and DB_PASSWORD, or DB_SECRET_ARN", ErrUnresolved)
	}
	if r.secrets == nil {
		return Params{}, fmt.Errorf("%w: no secret store client configured", ErrUnresolved)
	}

	raw, err := r.secrets.GetSecretString(ctx, r.cfg.SecretARN)
	if err != nil {
		return Params{}, fmt.Errorf("failed to fetch database secret: %w", err)
	}

	var secret secretPayload
	if err := json.Unmarshal([]byte(raw), &secret); err != nil {
		return Params{}, fmt.Errorf("failed to parse database secret: %w", err)
	}
	if secret.Username == "" || secret.Password == "" {
		return Params{}, fmt.Errorf("%w: secret is missing username or password", ErrUnresolved)
	}

	switch {
	case r.cfg.ClusterEndpoint != "":
		params.Host = r.cfg.ClusterEndpoint
	case secret.Host != "":
		params.Host = secret.Host
	case r.cfg.ProxyEndpoint != "":
		params.Host = r.cfg.ProxyEndpoint
	default:
		return Params{}, fmt.Errorf("%w: no host in secret and neither DB_CLUSTER_ENDPOINT nor DB_PROXY_ENDPOINT is set", ErrUnresolved)
	}

	params.Port = withDefault(r.cfg.Port, defaultPort)
	if p := secret.Port.Ptr(); p != nil && *p > 0 {
		params.Port = strconv.Itoa(*p)
	}
	params.Name = withDefault(secret.DBName, withDefault(r.cfg.Name, defaultDBName))
	params.Username = secret.Username
	params.Password = secret.Password
	params.Source = SourceSecret

	r.log.Info("resolved database credentials from secret", zap.String("target", params.Describe()))
	return params, nil
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

package livy

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/cenkalti/backoff/v5"
	"github.com/cockroachdb/errors"
	"github.com/emrtools/livy/awssign"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// signingService is the service name requests are signed for.
const signingService = "emr-serverless"

const (
	// DefaultTimeout bounds every polling operation on the client.
	DefaultTimeout = 300 * time.Second

	// DefaultMaxRetries is the retry ceiling of the request engine.
	DefaultMaxRetries = 3

	// DefaultSessionPollInterval is the suggested interval for
	// [Client.WaitForSessionReady].
	DefaultSessionPollInterval = 5 * time.Second

	// DefaultStatementPollInterval is the suggested interval for
	// [Client.GetStatementResult].
	DefaultStatementPollInterval = 2 * time.Second
)

// connectTimeout is fixed and independent of the operation timeout; only the
// read timeout tracks the configured budget.
const connectTimeout = 30 * time.Second

const cleanupTimeout = 30 * time.Second

// Config holds the construction parameters of a [Client].
type Config struct {
	// ApplicationID identifies the EMR Serverless application to target.
	ApplicationID string `validate:"required"`
	// Region is the AWS region the application runs in, also used as the
	// signing region.
	Region string `validate:"required"`
	// RoleArn is the execution role the service assumes for the session.
	RoleArn string `validate:"required"`
	// Timeout bounds each polling operation, wall-clock. Defaults to
	// [DefaultTimeout].
	Timeout time.Duration
	// Endpoint overrides the base URL derived from ApplicationID and
	// Region. Mainly useful for tests and VPC endpoints.
	Endpoint string `validate:"omitempty,url"`
}

func (c Config) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}

	return fmt.Sprintf("https://%s.livy.emr-serverless-services.%s.amazonaws.com",
		c.ApplicationID, c.Region)
}

// Client submits and monitors interactive code execution on one EMR
// Serverless application. It owns at most one session at a time and is not
// safe for concurrent use, see the package documentation.
type Client struct {
	endpoint   string
	roleArn    string
	timeout    time.Duration
	maxRetries int
	httpClient *http.Client
	logs       *zap.Logger
	newBackOff func() backoff.BackOff

	// sessionPath is the resource path of the active session, empty when
	// there is none. Set by session creation, cleared by deletion.
	sessionPath string

	closeOnce sync.Once
}

type clientOptions struct {
	logs       *zap.Logger
	creds      aws.CredentialsProvider
	signer     awssign.Signer
	base       http.RoundTripper
	maxRetries int
}

// Option configures the client beyond the required [Config].
type Option func(*clientOptions)

// WithLogger replaces the default no-op logger.
func WithLogger(logs *zap.Logger) Option {
	return func(o *clientOptions) { o.logs = logs }
}

// WithCredentials uses the given provider instead of the default AWS
// credential chain. Credentials are still resolved fresh per request.
func WithCredentials(creds aws.CredentialsProvider) Option {
	return func(o *clientOptions) { o.creds = creds }
}

// WithSigner replaces the SigV4 signer entirely. When set, no AWS
// configuration is loaded at construction.
func WithSigner(signer awssign.Signer) Option {
	return func(o *clientOptions) { o.signer = signer }
}

// WithBaseTransport sets the transport the signing layer delegates to, for
// example one instrumented with otelhttp.
func WithBaseTransport(base http.RoundTripper) Option {
	return func(o *clientOptions) { o.base = base }
}

// WithMaxRetries overrides the retry ceiling of [DefaultMaxRetries].
func WithMaxRetries(maxRetries int) Option {
	return func(o *clientOptions) { o.maxRetries = maxRetries }
}

// New validates the configuration and builds a client. Unless a signer or
// credentials are supplied, the default AWS credential chain is resolved,
// which may hit the instance metadata service; bound ctx accordingly.
//
// Callers own the returned client and must release it with [Client.Close].
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "livy: invalid config")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	options := &clientOptions{logs: zap.NewNop(), maxRetries: DefaultMaxRetries}
	for _, opt := range opts {
		opt(options)
	}

	signer := options.signer
	if signer == nil {
		creds := options.creds
		if creds == nil {
			awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
			if err != nil {
				return nil, errors.Wrap(err, "livy: load aws config")
			}
			creds = awsCfg.Credentials
		}
		signer = awssign.New(creds, signingService, cfg.Region)
	}

	base := options.base
	if base == nil {
		base = newBaseTransport()
	}

	c := &Client{
		endpoint:   cfg.endpoint(),
		roleArn:    cfg.RoleArn,
		timeout:    cfg.Timeout,
		maxRetries: options.maxRetries,
		logs:       options.logs,
		newBackOff: newExponentialBackOff,
		httpClient: &http.Client{
			Transport: &awssign.Transport{Base: base, Signer: signer},
			Timeout:   cfg.Timeout,
		},
	}

	c.logs.Info("initialized client", zap.String("endpoint", c.endpoint))
	return c, nil
}

// SessionPath returns the resource path of the active session, or an empty
// string when there is none.
func (c *Client) SessionPath() string {
	return c.sessionPath
}

// Close attempts a best-effort deletion of any session that is still active,
// then releases the underlying transport. The transport is released exactly
// once regardless of the cleanup outcome; Close never fails.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		if c.sessionPath != "" {
			ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
			defer cancel()
			if _, err := c.DeleteSession(ctx); err != nil {
				c.logs.Warn("session cleanup failed during close", zap.Error(err))
			}
		}
		c.httpClient.CloseIdleConnections()
	})

	return nil
}

func newBaseTransport() *http.Transport {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: connectTimeout}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

// newExponentialBackOff yields the 2s, 4s, 8s, ... retry ladder: integer
// powers of two, no jitter, no interval cap beyond the retry ceiling.
func newExponentialBackOff() backoff.BackOff {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = 2 * time.Second
	expo.RandomizationFactor = 0
	expo.Multiplier = 2
	expo.MaxInterval = 24 * time.Hour
	return expo
}

// sleep blocks for d, or until ctx is cancelled in which case the context's
// error is returned.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

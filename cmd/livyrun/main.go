// Command livyrun drives one interactive pyspark execution on an EMR
// Serverless application: create a session, wait until it is ready, submit a
// statement, poll for its result and delete the session again. It is
// configured entirely through environment variables, see [Env].
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/emrtools/livy"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	clientInitTimeout = 10 * time.Second
	stopTimeout       = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "livyrun:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var r *runner
	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			parseEnv,
			newLogger,
			newTracerProvider,
			newTransport,
			newClient,
			newRunner,
		),
		fx.Populate(&r),
	)

	if err := app.Start(ctx); err != nil {
		return err
	}

	runErr := r.run(ctx)

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return errors.CombineErrors(runErr, app.Stop(stopCtx))
}

// newLogger creates a zap logger configured from the environment, with JSON
// encoding suitable for log aggregation.
func newLogger(e Env) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(e.LogLevel)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// newClient builds the livy client and ties its release to the fx lifecycle,
// which also takes care of the implicit session cleanup on shutdown.
func newClient(lc fx.Lifecycle, e Env, logs *zap.Logger, transport http.RoundTripper) (*livy.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), clientInitTimeout)
	defer cancel()

	client, err := livy.New(ctx, livy.Config{
		ApplicationID: e.ApplicationID,
		Region:        e.Region,
		RoleArn:       e.RoleArn,
		Timeout:       e.Timeout,
	},
		livy.WithLogger(logs.Named("livy")),
		livy.WithBaseTransport(transport),
	)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{OnStop: func(context.Context) error {
		return client.Close()
	}})

	return client, nil
}

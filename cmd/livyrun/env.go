package main

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

// Env configures the livyrun driver from environment variables.
type Env struct {
	ApplicationID string        `env:"LIVY_APPLICATION_ID,required"`
	Region        string        `env:"AWS_REGION,required"`
	RoleArn       string        `env:"LIVY_EXECUTION_ROLE_ARN,required"`
	Timeout       time.Duration `env:"LIVY_TIMEOUT" envDefault:"300s"`
	LogLevel      zapcore.Level `env:"LIVY_LOG_LEVEL" envDefault:"info"`
	Code          string        `env:"LIVY_CODE" envDefault:"1 + 1"`
}

// parseEnv parses the environment into an Env.
func parseEnv() (e Env, err error) {
	if err := env.Parse(&e); err != nil {
		return e, errors.Wrap(err, "failed to parse environment")
	}
	return e, nil
}

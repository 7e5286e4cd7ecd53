package main

import (
	"os"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("LIVY_APPLICATION_ID", "00fqi5n5j9ctg90l")
	t.Setenv("AWS_REGION", "us-west-2")
	t.Setenv("LIVY_EXECUTION_ROLE_ARN", "arn:aws:iam::123456789012:role/livy-test")
	t.Setenv("LIVY_TIMEOUT", "2m")
	t.Setenv("LIVY_LOG_LEVEL", "debug")

	e, err := parseEnv()
	if err != nil {
		t.Fatalf("parseEnv: %v", err)
	}

	if e.ApplicationID != "00fqi5n5j9ctg90l" {
		t.Errorf("unexpected application id: %q", e.ApplicationID)
	}
	if e.Timeout != 2*time.Minute {
		t.Errorf("unexpected timeout: %s", e.Timeout)
	}
	if e.LogLevel != zapcore.DebugLevel {
		t.Errorf("unexpected log level: %s", e.LogLevel)
	}
	if e.Code != "1 + 1" {
		t.Errorf("unexpected default code: %q", e.Code)
	}
}

func TestParseEnvRequiresApplicationID(t *testing.T) {
	t.Setenv("LIVY_APPLICATION_ID", "unused")
	os.Unsetenv("LIVY_APPLICATION_ID")
	t.Setenv("AWS_REGION", "us-west-2")
	t.Setenv("LIVY_EXECUTION_ROLE_ARN", "arn:aws:iam::123456789012:role/livy-test")

	if _, err := parseEnv(); err == nil {
		t.Fatal("expected an error for a missing application id")
	}
}

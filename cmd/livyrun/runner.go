package main

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/emrtools/livy"
	"go.uber.org/zap"
)

// runner executes the demo flow against an initialized client.
type runner struct {
	env    Env
	logs   *zap.Logger
	client *livy.Client
}

func newRunner(e Env, logs *zap.Logger, client *livy.Client) *runner {
	return &runner{env: e, logs: logs, client: client}
}

func (r *runner) run(ctx context.Context) error {
	sessionInfo, err := r.client.CreateSession(ctx)
	if err != nil {
		return err
	}
	r.logs.Info("created session", zap.String("session", sessionInfo.Raw()))

	ready, err := r.client.WaitForSessionReady(ctx, livy.DefaultSessionPollInterval)
	if err != nil {
		return err
	}
	if !ready {
		return errors.New("session failed to become ready")
	}

	sessions, err := r.client.ListSessions(ctx)
	if err != nil {
		return err
	}
	r.logs.Info("session list", zap.String("sessions", sessions.Raw()))

	statementPath, statementInfo, err := r.client.SubmitStatement(ctx, r.env.Code)
	if err != nil {
		return err
	}
	r.logs.Info("submitted statement", zap.String("statement", statementInfo.Raw()))

	result, err := r.client.GetStatementResult(ctx, statementPath, livy.DefaultStatementPollInterval)
	if err != nil {
		return err
	}
	r.logs.Info("statement result",
		zap.String("state", result.State()),
		zap.String("output", result.Get("output").Raw))

	if _, err := r.client.DeleteSession(ctx); err != nil {
		return err
	}

	return nil
}

package livy

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// confExecutionRoleArn is the session configuration key carrying the
// execution role the service assumes.
const confExecutionRoleArn = "emr-serverless.session.executionRoleArn"

type createSessionRequest struct {
	Kind                     string            `json:"kind"`
	HeartbeatTimeoutInSecond int               `json:"heartbeatTimeoutInSecond"`
	Conf                     map[string]string `json:"conf"`
}

// CreateSession asks the service for a new pyspark session and records its
// resource path from the response's location metadata. The returned document
// is the creation response as-is; the session is usually not ready yet, see
// [Client.WaitForSessionReady].
func (c *Client) CreateSession(ctx context.Context) (Document, error) {
	body, err := json.Marshal(createSessionRequest{
		Kind:                     "pyspark",
		HeartbeatTimeoutInSecond: 60,
		Conf:                     map[string]string{confExecutionRoleArn: c.roleArn},
	})
	if err != nil {
		return Document{}, errors.Wrap(err, "encode create session request")
	}

	c.logs.Info("creating session")
	doc, err := c.send(ctx, httpRequest{method: http.MethodPost, path: sessionsPath, body: body})
	if err != nil {
		return Document{}, errors.Wrap(err, "create session")
	}

	if c.sessionPath == "" {
		return Document{}, ErrNoSessionLocation
	}

	c.logs.Info("session created", zap.String("session", c.sessionPath))
	return doc, nil
}

// WaitForSessionReady polls the active session until it reaches a terminal
// state or the overall timeout elapses. It returns true when the session
// became idle and false without error when the service reported a failed
// state (error, dead or killed). Running out of the timeout budget returns
// [ErrWaitTimeout] instead, cancellation the context's error.
func (c *Client) WaitForSessionReady(ctx context.Context, pollInterval time.Duration) (bool, error) {
	if c.sessionPath == "" {
		return false, ErrNoActiveSession
	}

	c.logs.Info("waiting for session to become ready")
	start := time.Now()

	for time.Since(start) < c.timeout {
		doc, err := c.send(ctx, httpRequest{method: http.MethodGet, path: c.sessionPath})
		if err != nil {
			return false, err
		}

		state := doc.State()
		c.logs.Info("session state", zap.String("state", state))

		switch {
		case state == StateIdle:
			c.logs.Info("session is ready")
			return true, nil
		case lo.Contains(sessionFailedStates, state):
			c.logs.Error("session entered a failed state", zap.String("state", state))
			return false, nil
		}

		if err := sleep(ctx, pollInterval); err != nil {
			return false, err
		}
	}

	return false, errors.Wrapf(ErrWaitTimeout, "session not ready after %s", c.timeout)
}

// ListSessions returns the session collection of the application.
func (c *Client) ListSessions(ctx context.Context) (Document, error) {
	doc, err := c.send(ctx, httpRequest{method: http.MethodGet, path: sessionsPath})
	if err != nil {
		return Document{}, errors.Wrap(err, "list sessions")
	}

	return doc, nil
}

// DeleteSession deletes the active session and clears the client's session
// path on success. Without an active session it returns false and no error:
// there was nothing to delete and no request is issued. On failure the
// session path stays intact so the caller may retry.
func (c *Client) DeleteSession(ctx context.Context) (bool, error) {
	if c.sessionPath == "" {
		c.logs.Warn("no active session to delete")
		return false, nil
	}

	c.logs.Info("deleting session", zap.String("session", c.sessionPath))
	if _, err := c.send(ctx, httpRequest{method: http.MethodDelete, path: c.sessionPath}); err != nil {
		return false, errors.Wrap(err, "delete session")
	}

	c.logs.Info("session deleted")
	c.sessionPath = ""
	return true, nil
}

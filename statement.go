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

type submitStatementRequest struct {
	Code string `json:"code"`
}

// SubmitStatement submits code to the active session and returns the
// statement's resource path together with the submission response. The path
// is derived from the session path and the id field of the response; it is
// only meaningful while that session exists. Without an active session no
// request is issued and [ErrNoActiveSession] is returned.
func (c *Client) SubmitStatement(ctx context.Context, code string) (string, Document, error) {
	if c.sessionPath == "" {
		return "", Document{}, ErrNoActiveSession
	}

	body, err := json.Marshal(submitStatementRequest{Code: code})
	if err != nil {
		return "", Document{}, errors.Wrap(err, "encode submit statement request")
	}

	c.logs.Info("submitting statement", zap.String("code", code))
	doc, err := c.send(ctx, httpRequest{
		method: http.MethodPost,
		path:   c.sessionPath + statementsSuffix,
		body:   body,
	})
	if err != nil {
		return "", Document{}, errors.Wrap(err, "submit statement")
	}

	id := doc.Get("id")
	if !id.Exists() {
		return "", Document{}, errors.New("livy: statement response carried no id")
	}

	statementPath := c.sessionPath + statementsSuffix + "/" + id.String()
	c.logs.Info("statement submitted", zap.String("statement", statementPath))
	return statementPath, doc, nil
}

// GetStatementResult polls the statement until it reaches a terminal state
// or the overall timeout elapses. Terminal documents are returned as-is,
// also for the error and cancelled states: the request itself succeeded and
// the caller inspects the document to tell how the execution went. Running
// out of the timeout budget returns [ErrWaitTimeout], cancellation the
// context's error, so callers can tell "execution failed" from "we stopped
// waiting".
func (c *Client) GetStatementResult(ctx context.Context, statementPath string, pollInterval time.Duration) (Document, error) {
	c.logs.Info("waiting for statement to complete", zap.String("statement", statementPath))
	start := time.Now()

	for time.Since(start) < c.timeout {
		doc, err := c.send(ctx, httpRequest{method: http.MethodGet, path: statementPath})
		if err != nil {
			return Document{}, err
		}

		state := doc.State()
		c.logs.Info("statement state", zap.String("state", state))

		if lo.Contains(statementTerminalStates, state) {
			if state != StateAvailable {
				c.logs.Error("statement did not complete", zap.String("state", state))
			}
			return doc, nil
		}

		if err := sleep(ctx, pollInterval); err != nil {
			return Document{}, err
		}
	}

	return Document{}, errors.Wrapf(ErrWaitTimeout, "statement not finished after %s", c.timeout)
}

package livy

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/cenkalti/backoff/v5"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

const (
	sessionsPath     = "/sessions"
	statementsSuffix = "/statements"
	contentTypeJSON  = "application/json"
)

// httpRequest describes one outbound call: method, resource path relative to
// the endpoint, and an optional opaque JSON body. The concrete *http.Request
// is rebuilt fresh for every attempt since signatures embed a timestamp.
type httpRequest struct {
	method string
	path   string
	body   []byte
}

// outcome is the raw result of a completed HTTP exchange, regardless of
// whether the status indicates success.
type outcome struct {
	status int
	header http.Header
	body   string
}

func (o *outcome) successful() bool {
	return o.status >= 200 && o.status < 300
}

func (c *Client) buildRequest(ctx context.Context, hr httpRequest) (*http.Request, error) {
	builder := requests.
		URL(c.endpoint + hr.path).
		Method(hr.method).
		ContentType(contentTypeJSON)
	if hr.body != nil {
		builder = builder.BodyBytes(hr.body)
	}

	req, err := builder.Request(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}

	return req, nil
}

// execute performs a single signed exchange. Any received response is a
// valid outcome no matter its status; an error means the request never
// completed and is a different failure class for the retry policy.
func (c *Client) execute(req *http.Request) (*outcome, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "execute request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}

	return &outcome{status: resp.StatusCode, header: resp.Header, body: string(body)}, nil
}

// send is the request engine: it rebuilds, re-signs and executes the request
// until it succeeds, a permanent failure occurs, or the retry ceiling is
// exhausted. A Location header on a session-creation POST is captured as the
// new session path.
func (c *Client) send(ctx context.Context, hr httpRequest) (Document, error) {
	operation := func() (*outcome, error) {
		req, err := c.buildRequest(ctx, hr)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		c.logs.Info("sending request",
			zap.String("method", hr.method), zap.String("url", req.URL.String()))

		out, err := c.execute(req)
		if err != nil {
			c.logs.Warn("request did not complete", zap.Error(err))
			return nil, err
		}

		if out.successful() {
			c.logs.Info("request succeeded", zap.Int("status", out.status))
			return out, nil
		}

		remoteErr := &RemoteError{StatusCode: out.status, Body: out.body}
		c.logs.Error("request failed",
			zap.Int("status", out.status), zap.String("body", out.body))
		if !remoteErr.Temporary() {
			return nil, backoff.Permanent(remoteErr)
		}

		return nil, remoteErr
	}

	out, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(uint(c.maxRetries)+1),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.logs.Info("waiting before retry",
				zap.Duration("wait", wait), zap.Error(err))
		}),
	)
	if err != nil {
		return Document{}, errors.Wrapf(err, "%s %s", hr.method, hr.path)
	}

	if location := out.header.Get("Location"); location != "" &&
		hr.method == http.MethodPost && strings.HasSuffix(hr.path, sessionsPath) {
		c.logs.Info("captured session location", zap.String("location", location))
		c.sessionPath = location
	}

	return newDocument(out.body), nil
}

// Package livy is a client for interactive code execution on EMR Serverless
// applications through their Livy REST endpoint.
//
// # Overview
//
// Every outbound request is signed with AWS Signature Version 4 (see the
// [github.com/emrtools/livy/awssign] package), sent through a retrying
// transport with exponential backoff, and interpreted only as far as the
// lifecycle state machines require: response payloads stay opaque JSON
// documents that callers inspect themselves.
//
// A minimal flow:
//
//	client, err := livy.New(ctx, livy.Config{
//	    ApplicationID: "00fqi5n5j9ctg90l",
//	    Region:        "us-west-2",
//	    RoleArn:       "arn:aws:iam::123456789012:role/sparkExecutionRole",
//	})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	if _, err := client.CreateSession(ctx); err != nil {
//	    return err
//	}
//	ready, err := client.WaitForSessionReady(ctx, livy.DefaultSessionPollInterval)
//	if err != nil || !ready {
//	    return err
//	}
//	stmt, _, err := client.SubmitStatement(ctx, "1 + 1")
//	if err != nil {
//	    return err
//	}
//	result, err := client.GetStatementResult(ctx, stmt, livy.DefaultStatementPollInterval)
//
// # Sessions and statements
//
// A [Client] owns at most one session at a time. [Client.CreateSession]
// records the session's resource path from the creation response and
// [Client.DeleteSession] clears it again; operations that need a session
// return [ErrNoActiveSession] when none is active. Statement paths are
// derived from the session path and the id returned by the submission
// response, and are only meaningful while that session exists.
//
// # Retries and failure classification
//
// The engine retries a request when the attempt never completed (connection
// reset, timeout, DNS failure) or when the service answered 429 or a 5xx
// status, sleeping 2^k seconds before retry k. Any other non-2xx status is
// surfaced immediately as a [*RemoteError]. A session or statement that the
// service itself reports as failed is not an error: [Client.WaitForSessionReady]
// returns false and [Client.GetStatementResult] returns the final document
// for the caller to inspect. [ErrWaitTimeout] marks the distinct case where
// the overall timeout budget ran out before a terminal state was observed.
//
// # Concurrency
//
// A Client is a single-owner handle. The session path is mutable state with
// no internal locking, so concurrent calls on one Client must be serialized
// externally; independent flows should each own their own Client.
package livy

package livy_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/emrtools/livy"
	"github.com/stretchr/testify/require"
)

func TestSubmitStatementWithoutSession(t *testing.T) {
	ls := newLivyServer(t, []string{"idle"}, []string{"available"})
	client := newClient(t, ls, time.Second)

	_, _, err := client.SubmitStatement(context.Background(), "1 + 1")
	require.ErrorIs(t, err, livy.ErrNoActiveSession)
	require.EqualValues(t, 0, ls.requests.Load(), "precondition failures issue no requests")
}

func TestSubmitStatementDerivesPath(t *testing.T) {
	ls := newLivyServer(t, []string{"idle"}, []string{"available"})
	client := newClient(t, ls, time.Second)

	_, err := client.CreateSession(context.Background())
	require.NoError(t, err)

	statementPath, doc, err := client.SubmitStatement(context.Background(), "1 + 1")
	require.NoError(t, err)
	require.Equal(t, "/sessions/2/statements/0", statementPath)
	require.Equal(t, "waiting", doc.State())
}

func TestSubmitStatementWithoutIDFails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/sessions" {
			w.Header().Set("Location", "/sessions/2")
			w.WriteHeader(http.StatusCreated)
			return
		}
		fmt.Fprint(w, `{"state":"waiting"}`)
	}))
	defer ts.Close()

	client, err := livy.New(context.Background(), livy.Config{
		ApplicationID: "00fqi5n5j9ctg90l",
		Region:        "us-west-2",
		RoleArn:       "arn:aws:iam::123456789012:role/livy-test",
		Endpoint:      ts.URL,
	}, livy.WithSigner(&headerSigner{}))
	require.NoError(t, err)

	_, err = client.CreateSession(context.Background())
	require.NoError(t, err)

	_, _, err = client.SubmitStatement(context.Background(), "1 + 1")
	require.ErrorContains(t, err, "no id")
}

func TestGetStatementResultPollsUntilAvailable(t *testing.T) {
	ls := newLivyServer(t, []string{"idle"}, []string{"running", "running", "available"})
	client := newClient(t, ls, time.Second)

	_, err := client.CreateSession(context.Background())
	require.NoError(t, err)

	statementPath, _, err := client.SubmitStatement(context.Background(), "1 + 1")
	require.NoError(t, err)

	doc, err := client.GetStatementResult(context.Background(), statementPath, 5*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, livy.StateAvailable, doc.State())
	require.Equal(t, "2", doc.Get("output.data.text/plain").String())
	require.EqualValues(t, 3, ls.statementPolls.Load(), "exactly one GET per scripted state")
}

func TestGetStatementResultReturnsFailedDocument(t *testing.T) {
	// a remote execution failure is data to inspect, not a client error.
	for _, state := range []string{"error", "cancelled"} {
		ls := newLivyServer(t, []string{"idle"}, []string{state})
		client := newClient(t, ls, time.Second)

		_, err := client.CreateSession(context.Background())
		require.NoError(t, err)

		statementPath, _, err := client.SubmitStatement(context.Background(), "1 + 1")
		require.NoError(t, err)

		doc, err := client.GetStatementResult(context.Background(), statementPath, 5*time.Millisecond)
		require.NoError(t, err, state)
		require.Equal(t, state, doc.State())
		require.EqualValues(t, 1, ls.statementPolls.Load())
	}
}

func TestGetStatementResultTimesOut(t *testing.T) {
	ls := newLivyServer(t, []string{"idle"}, []string{"running"})
	client := newClient(t, ls, 50*time.Millisecond)

	_, err := client.CreateSession(context.Background())
	require.NoError(t, err)

	statementPath, _, err := client.SubmitStatement(context.Background(), "1 + 1")
	require.NoError(t, err)

	_, err = client.GetStatementResult(context.Background(), statementPath, 5*time.Millisecond)
	require.ErrorIs(t, err, livy.ErrWaitTimeout)
}

func TestGetStatementResultCancellation(t *testing.T) {
	ls := newLivyServer(t, []string{"idle"}, []string{"running"})
	client := newClient(t, ls, time.Minute)

	_, err := client.CreateSession(context.Background())
	require.NoError(t, err)

	statementPath, _, err := client.SubmitStatement(context.Background(), "1 + 1")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err = client.GetStatementResult(ctx, statementPath, 10*time.Second)
	require.ErrorIs(t, err, context.Canceled)
	require.Less(t, time.Since(start), time.Second, "cancellation must unwind the poll sleep")
}

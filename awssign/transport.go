package awssign

import (
	"bytes"
	"io"
	"net/http"
)

// Transport is an http.RoundTripper that signs every request before handing
// it to a base transport. Compose instrumentation (e.g. otelhttp) into Base;
// retry layers belong above the owning *http.Client so each attempt passes
// through here again and gets a fresh signature.
type Transport struct {
	// Base is the transport requests are delegated to after signing.
	// http.DefaultTransport when nil.
	Base http.RoundTripper

	// Signer signs each outbound request. Required.
	Signer Signer
}

// RoundTrip clones the request, restores its payload from GetBody, signs the
// clone and delegates to the base transport. The original request is never
// mutated, per the RoundTripper contract.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	signed := req.Clone(req.Context())

	var payload []byte
	if req.GetBody != nil {
		bodyReader, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		payload, err = io.ReadAll(bodyReader)
		bodyReader.Close()
		if err != nil {
			return nil, err
		}
		signed.Body = io.NopCloser(bytes.NewReader(payload))
		signed.ContentLength = int64(len(payload))
	}

	if err := t.Signer.Sign(signed.Context(), signed, payload); err != nil {
		return nil, err
	}

	return t.base().RoundTrip(signed)
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

var _ http.RoundTripper = (*Transport)(nil)

package awssign

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/cockroachdb/errors"
)

// Signer produces authentication headers for a pending request. Payload is
// the full request body, nil for bodiless requests. Implementations must be
// free of side effects beyond clock and credential reads so that a request
// can be re-signed on every retry attempt.
type Signer interface {
	Sign(ctx context.Context, req *http.Request, payload []byte) error
}

// emptyPayloadHash is the SHA-256 of the empty string, used for requests
// without a body.
const emptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// SigV4 signs requests with AWS Signature Version 4 for a fixed service and
// region. Credentials are resolved from the provider on every call, not
// cached across the signer's lifetime, so rotated or refreshed credentials
// are picked up without rebuilding the client.
type SigV4 struct {
	signer  *v4.Signer
	creds   aws.CredentialsProvider
	service string
	region  string
	now     func() time.Time
}

// New creates a SigV4 signer that signs for the given service name and
// region with credentials from creds.
func New(creds aws.CredentialsProvider, service, region string) *SigV4 {
	return &SigV4{
		signer:  v4.NewSigner(),
		creds:   creds,
		service: service,
		region:  region,
		now:     time.Now,
	}
}

// Sign resolves credentials, hashes the payload and signs req in place. The
// signed headers, notably Authorization and X-Amz-Date, override any
// same-named header already present.
func (s *SigV4) Sign(ctx context.Context, req *http.Request, payload []byte) error {
	creds, err := s.creds.Retrieve(ctx)
	if err != nil {
		return errors.Wrap(err, "awssign: resolve credentials")
	}

	payloadHash := emptyPayloadHash
	if len(payload) > 0 {
		sum := sha256.Sum256(payload)
		payloadHash = hex.EncodeToString(sum[:])
	}

	if err := s.signer.SignHTTP(ctx, creds, req, payloadHash, s.service, s.region, s.now().UTC()); err != nil {
		return errors.Wrap(err, "awssign: sign request")
	}

	return nil
}

var _ Signer = (*SigV4)(nil)

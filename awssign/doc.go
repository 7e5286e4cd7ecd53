// Package awssign signs outbound HTTP requests with AWS Signature Version 4.
//
// The package has two halves: [SigV4] implements the [Signer] contract on
// top of the AWS SDK v2 signer with per-call credential resolution, and
// [Transport] lifts any Signer into an http.RoundTripper so that every
// attempt issued through an *http.Client carries a fresh signature. Retry
// layers compose above the transport and never reuse a signed request, since
// signatures embed the signing timestamp.
package awssign

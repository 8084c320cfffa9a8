// Package client talks to the auth service over gRPC.
//
// GRPCClient holds the current token pair in memory. Calls that need an
// access token get it attached by an interceptor as "authorization: Bearer".
// When such a call is rejected as unauthenticated and a refresh token is
// held, the interceptor redeems the refresh token once and retries the call
// with the new access token.
//
// gRPC status codes are mapped to the sentinel errors in errors.go so that
// callers can use errors.Is.
package client

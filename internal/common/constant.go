package common

// AuthorizationHeaderName is the gRPC metadata / HTTP header carrying
// "Bearer <access token>".
const AuthorizationHeaderName = "authorization"

// AccessTokenHeaderName is the legacy metadata key holding a raw access token.
const AccessTokenHeaderName = "access_token"

// BearerPrefix precedes the token in the authorization header.
const BearerPrefix = "Bearer "

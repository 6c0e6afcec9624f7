package common

// AuthorizationHeaderName carries the bearer access token on HTTP requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the expected scheme prefix of the Authorization header.
const BearerScheme = "Bearer"

package common

// RefreshTokenCookieName is the HTTP cookie that carries the opaque
// refresh token between the browser and the refresh endpoint.
const RefreshTokenCookieName = "refreshToken"

// DefaultRole is the single static role claim stamped on every access
// token. Per-account roles are out of scope for this service.
const DefaultRole = "Admin"

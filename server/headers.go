package server

// HTTP header names not provided by Echo. Use echo.HeaderXRequestID and
// friends directly for the rest.
const (
	// HeaderXResponseTime reports request processing duration.
	// Set by the timing middleware on all responses.
	HeaderXResponseTime = "X-Response-Time"

	// HeaderXRealIP contains the client's real IP address when behind a proxy.
	// Used to key the rate limiter.
	HeaderXRealIP = "X-Real-IP"

	// HeaderXXSSProtection enables XSS filtering in browsers.
	HeaderXXSSProtection = "X-XSS-Protection"

	// HeaderXContentTypeOptions prevents MIME type sniffing.
	HeaderXContentTypeOptions = "X-Content-Type-Options"

	// HeaderXFrameOptions controls page framing for clickjacking protection.
	HeaderXFrameOptions = "X-Frame-Options"
)

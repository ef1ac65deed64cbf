package middleware

import "github.com/gin-gonic/gin"

// HeaderClientID optionally identifies the caller. Idempotency keys and rate
// limit buckets are per client.
const HeaderClientID = "X-Client-ID"

// ContextKeyClientID is where an upstream authenticator may store a verified
// caller identity. It wins over the header.
const ContextKeyClientID = "clientID"

// ClientID returns the caller identity: the ContextKeyClientID value, then a
// well-formed X-Client-ID header, then "ip:" plus the client IP.
func ClientID(c *gin.Context) string {
	if s := c.GetString(ContextKeyClientID); s != "" {
		return s
	}
	if h := c.GetHeader(HeaderClientID); validRequestID(h) {
		return h
	}
	return "ip:" + c.ClientIP()
}

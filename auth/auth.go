package auth

import (
	"encoding/base64"
	"net/http"
)

// Header returns the value of the Authorization header phoenixd expects:
// basic auth with an empty username and the secret as password.
func Header(secret string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(":"+secret))
}

// Apply sets the Authorization header on h.
func Apply(h http.Header, secret string) {
	h.Set("Authorization", Header(secret))
}

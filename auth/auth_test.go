package auth

import (
	"encoding/base64"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeader(t *testing.T) {
	h := Header("s3cret")

	require.True(t, strings.HasPrefix(h, "Basic "))

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(h, "Basic "))
	require.NoError(t, err)
	assert.Equal(t, ":s3cret", string(decoded))
}

func TestHeaderMatchesBasicAuth(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://127.0.0.1:9740/getinfo", nil)
	require.NoError(t, err)

	Apply(req.Header, "71ec453e")

	user, pass, ok := req.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "", user)
	assert.Equal(t, "71ec453e", pass)
}

package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTooManyRequests(t *testing.T) {
	rec := httptest.NewRecorder()
	TooManyRequests(rec, 0)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "too many requests", body.Error)
}

func TestBuildPasswordResetHTML_EscapesLink(t *testing.T) {
	out := BuildPasswordResetHTML(`https://example.com/reset?token=a"b&c=1`, 30*time.Minute)

	assert.Contains(t, out, "token=a&#34;b&amp;c=1")
	assert.Contains(t, out, "30 мин.")
	assert.False(t, strings.Contains(out, `a"b`))
}

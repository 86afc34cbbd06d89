package logging

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogf_Unbound(t *testing.T) {
	Bind(nil, false)
	assert.False(t, Enabled())
	Logf("walk", "dropped %d", 1) // must not panic
}

func TestLogf_PlainPrefix(t *testing.T) {
	var buf bytes.Buffer
	Bind(log.New(&buf, "", 0), false)
	defer Bind(nil, false)

	Logf("walk", "visited %s", "root")
	assert.True(t, Enabled())
	assert.Equal(t, "[walk] visited root\n", buf.String())
}

func TestLogf_Styled(t *testing.T) {
	var buf bytes.Buffer
	Bind(log.New(&buf, "", 0), true)
	defer Bind(nil, false)

	Logf("web", "listening on %s", ":8080")
	assert.Contains(t, buf.String(), "[web]")
	assert.Contains(t, buf.String(), "listening on :8080")
}

package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetFullVersion(t *testing.T) {
	full := GetFullVersion()
	assert.True(t, strings.HasPrefix(full, GetVersion()+" ("), full)
	assert.Contains(t, full, ") built at ")
	assert.NotEmpty(t, GetVersion())
}

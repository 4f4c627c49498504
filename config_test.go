package chatserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	config := NewConfig()
	assert.Equal(t, 8080, config.Port)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Empty(t, config.DB, "default store is in-memory")
}

package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnvelope struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count"`
}

func TestDecodeAndValidateJSON(t *testing.T) {
	envelope := &testEnvelope{}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"chat","count":3}`))
	require.NoError(t, DecodeAndValidateJSON(envelope, req))
	assert.Equal(t, "chat", envelope.Name)
	assert.Equal(t, 3, envelope.Count)
}

func TestDecodeAndValidateJSONErrors(t *testing.T) {
	tcs := []struct {
		label string
		body  string
	}{
		{"invalid json", `{"name":`},
		{"schema violation", `{"count":3}`},
	}

	for _, tc := range tcs {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
		assert.Error(t, DecodeAndValidateJSON(&testEnvelope{}, req), tc.label)
	}
}

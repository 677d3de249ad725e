package mcp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvokeRequest_Normalize(t *testing.T) {
	t.Run("Should apply defaults for absent optional fields", func(t *testing.T) {
		var req InvokeRequest
		require.NoError(t, json.Unmarshal([]byte(`{
			"context_id": "ctx-1",
			"model_id": "gpt-4",
			"prompt": "hello"
		}`), &req))

		req.Normalize()

		assert.Equal(t, ContextTypeWisUnit, req.ContextType)
		require.NotNil(t, req.MaxTokens)
		assert.Equal(t, 2000, *req.MaxTokens)
		require.NotNil(t, req.Temperature)
		assert.InDelta(t, 0.7, *req.Temperature, 1e-9)
	})

	t.Run("Should keep explicit zero temperature", func(t *testing.T) {
		var req InvokeRequest
		require.NoError(t, json.Unmarshal([]byte(`{
			"context_id": "ctx-1",
			"model_id": "gpt-4",
			"prompt": "hello",
			"temperature": 0.0
		}`), &req))

		req.Normalize()

		require.NotNil(t, req.Temperature)
		assert.Zero(t, *req.Temperature)
		assert.NoError(t, req.Validate())
	})

	t.Run("Should keep explicit context type", func(t *testing.T) {
		req := InvokeRequest{
			ContextID:   "ctx-1",
			ModelID:     "glm-4",
			Prompt:      "hello",
			ContextType: ContextTypeWisdomCore,
		}

		req.Normalize()

		assert.Equal(t, ContextTypeWisdomCore, req.ContextType)
	})
}

func TestInvokeRequest_Validate(t *testing.T) {
	valid := func() InvokeRequest {
		req := InvokeRequest{
			ContextID: "ctx-1",
			ModelID:   "gpt-4",
			Prompt:    "hello",
		}
		req.Normalize()
		return req
	}

	t.Run("Should accept a normalized request", func(t *testing.T) {
		req := valid()
		assert.NoError(t, req.Validate())
	})

	t.Run("Should reject missing required fields", func(t *testing.T) {
		for _, mutate := range []func(*InvokeRequest){
			func(r *InvokeRequest) { r.ContextID = "" },
			func(r *InvokeRequest) { r.ModelID = "  " },
			func(r *InvokeRequest) { r.Prompt = "" },
		} {
			req := valid()
			mutate(&req)
			assert.Error(t, req.Validate())
		}
	})

	t.Run("Should reject max_tokens outside bounds", func(t *testing.T) {
		req := valid()
		tooBig := 10000
		req.MaxTokens = &tooBig
		err := req.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_tokens")

		zero := 0
		req.MaxTokens = &zero
		assert.Error(t, req.Validate())
	})

	t.Run("Should reject temperature outside bounds", func(t *testing.T) {
		req := valid()
		tooHot := 2.5
		req.Temperature = &tooHot
		err := req.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "temperature")

		negative := -0.1
		req.Temperature = &negative
		assert.Error(t, req.Validate())
	})

	t.Run("Should reject unknown context types", func(t *testing.T) {
		req := valid()
		req.ContextType = ContextType("graphql")
		assert.Error(t, req.Validate())
	})
}

func TestInvokeResponse_JSON(t *testing.T) {
	t.Run("Should omit error on success payloads", func(t *testing.T) {
		resp := InvokeResponse{
			Status:     StatusSuccess,
			Response:   "generated text",
			TokensUsed: 42,
			Cached:     true,
		}

		data, err := json.Marshal(resp)
		require.NoError(t, err)

		assert.Contains(t, string(data), `"cached":true`)
		assert.NotContains(t, string(data), `"error"`)
	})

	t.Run("Should omit response on error payloads", func(t *testing.T) {
		resp := InvokeResponse{
			Status:  StatusError,
			Message: "model not found",
			Error:   &ErrorInfo{Code: "MCP_002", Details: "gpt-99"},
		}

		data, err := json.Marshal(resp)
		require.NoError(t, err)

		assert.Contains(t, string(data), `"MCP_002"`)
		assert.NotContains(t, string(data), `"response"`)
	})
}

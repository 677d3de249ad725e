package mcp

import (
	"fmt"
	"strings"
)

// ContextType selects which WisHub Core knowledge surface an invocation
// draws its context from.
type ContextType string

const (
	ContextTypeWisUnit        ContextType = "wisunit"
	ContextTypeKnowledgeGraph ContextType = "knowledge_graph"
	ContextTypeWisdomCore     ContextType = "wisdom_core"
)

func (c ContextType) IsValid() bool {
	switch c {
	case ContextTypeWisUnit, ContextTypeKnowledgeGraph, ContextTypeWisdomCore:
		return true
	}
	return false
}

// Request defaults applied by Normalize.
const (
	DefaultMaxTokens   = 2000
	MinMaxTokens       = 1
	MaxMaxTokens       = 8192
	DefaultTemperature = 0.7
	MinTemperature     = 0.0
	MaxTemperature     = 2.0
)

// InvokeRequest is the wire payload for POST /mcp/invoke. MaxTokens and
// Temperature are pointers so an explicit zero survives decoding: absent
// fields take defaults, while temperature 0.0 stays 0.0.
type InvokeRequest struct {
	ContextID   string      `json:"context_id"`
	ModelID     string      `json:"model_id"`
	Prompt      string      `json:"prompt"`
	ContextType ContextType `json:"context_type,omitempty"`
	MaxTokens   *int        `json:"max_tokens,omitempty"`
	Temperature *float64    `json:"temperature,omitempty"`
}

// Normalize fills absent optional fields with their documented defaults.
func (r *InvokeRequest) Normalize() {
	if r.ContextType == "" {
		r.ContextType = ContextTypeWisUnit
	}
	if r.MaxTokens == nil {
		v := DefaultMaxTokens
		r.MaxTokens = &v
	}
	if r.Temperature == nil {
		v := DefaultTemperature
		r.Temperature = &v
	}
}

// Validate enforces required fields and bounds. Call after Normalize;
// violations reject the request before the invocation pipeline runs.
func (r *InvokeRequest) Validate() error {
	if strings.TrimSpace(r.ContextID) == "" {
		return fmt.Errorf("context_id is required")
	}
	if strings.TrimSpace(r.ModelID) == "" {
		return fmt.Errorf("model_id is required")
	}
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("prompt is required")
	}
	if !r.ContextType.IsValid() {
		return fmt.Errorf("context_type must be one of wisunit, knowledge_graph, wisdom_core")
	}
	if r.MaxTokens == nil || *r.MaxTokens < MinMaxTokens || *r.MaxTokens > MaxMaxTokens {
		return fmt.Errorf("max_tokens must be between %d and %d", MinMaxTokens, MaxMaxTokens)
	}
	if r.Temperature == nil || *r.Temperature < MinTemperature || *r.Temperature > MaxTemperature {
		return fmt.Errorf("temperature must be between %.1f and %.1f", MinTemperature, MaxTemperature)
	}
	return nil
}

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ErrorInfo carries the stable error code and diagnostic detail of a failed
// invocation.
type ErrorInfo struct {
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// InvokeResponse is the wire payload returned by POST /mcp/invoke. Exactly
// one of Response or Error is populated.
type InvokeResponse struct {
	Status     string         `json:"status"`
	Context    map[string]any `json:"context,omitempty"`
	Response   string         `json:"response,omitempty"`
	TokensUsed int            `json:"tokens_used,omitempty"`
	Cached     bool           `json:"cached"`
	Message    string         `json:"message,omitempty"`
	Error      *ErrorInfo     `json:"error,omitempty"`
}

// ModelsResponse lists the models currently bound to an adapter.
type ModelsResponse struct {
	Status string   `json:"status"`
	Models []string `json:"models"`
	Count  int      `json:"count"`
}

// DependencyHealth reports one downstream dependency inside the health
// payload.
type DependencyHealth struct {
	Status    string  `json:"status"`
	LatencyMS float64 `json:"latency_ms"`
	Message   string  `json:"message,omitempty"`
}

// HealthResponse is the wire payload for GET /health.
type HealthResponse struct {
	Status       string                      `json:"status"`
	Version      string                      `json:"version"`
	Dependencies map[string]DependencyHealth `json:"dependencies"`
}

// Health status values.
const (
	HealthStatusHealthy   = "healthy"
	HealthStatusUnhealthy = "unhealthy"
	HealthStatusDegraded  = "degraded"
)

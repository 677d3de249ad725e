package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/wishub-ai/wishub-mcp/engine/core"
)

// Sentinel context-hash segments for requests whose context carries no
// hashable content. They keep the key shape fixed at six segments.
const (
	contextHashEmpty      = "empty"
	contextHashUnhashable = "unhashable"
)

const promptHashLen = 16

// Fingerprint derives the cache key for one invocation:
//
//	{prefix}:{model}:{promptHash}:{contextHash}:{temperature}:{maxTokens}
//
// The prompt is reduced to a truncated SHA-256 digest and the context to a
// full canonical digest, so key order inside contextData never changes the
// key. Generation parameters stay in clear text so differing settings
// never share an entry.
func Fingerprint(
	prefix string,
	modelID string,
	prompt string,
	contextData map[string]any,
	temperature float64,
	maxTokens int,
) string {
	segments := []string{
		prefix,
		modelID,
		hashPrompt(prompt),
		hashContext(contextData),
		strconv.FormatFloat(temperature, 'g', -1, 64),
		strconv.Itoa(maxTokens),
	}
	return strings.Join(segments, ":")
}

func hashPrompt(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])[:promptHashLen]
}

// hashContext digests contextData canonically. Empty context and context
// that cannot be serialized map to fixed sentinels instead of failing.
func hashContext(contextData map[string]any) string {
	if len(contextData) == 0 {
		return contextHashEmpty
	}
	if _, err := json.Marshal(contextData); err != nil {
		return contextHashUnhashable
	}
	return core.HashAny(contextData)
}

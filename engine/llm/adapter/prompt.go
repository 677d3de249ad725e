package llmadapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// systemPrompt instructs the model to answer from the supplied context.
const systemPrompt = "你是一个有帮助的助手，基于提供的上下文信息回答问题。"

const (
	noContextNotice = "没有提供上下文信息。"
	contextHeader   = "以下是相关的上下文信息："
)

// BuildPrompt renders contextData and the user prompt into the final
// completion input. Context keys are emitted in sorted order so the same
// request always yields the same prompt, which keeps token counts and
// cache fingerprints stable.
func BuildPrompt(prompt string, contextData map[string]any) string {
	section := ContextSection(contextData)
	if section == "" {
		section = noContextNotice
	}
	var b strings.Builder
	b.WriteString(section)
	b.WriteString("\n\n用户问题:\n")
	b.WriteString(prompt)
	return b.String()
}

// ContextSection renders contextData alone, without the user prompt.
// Returns "" when there is no context, so callers can size the context
// contribution independently.
func ContextSection(contextData map[string]any) string {
	if len(contextData) == 0 {
		return ""
	}
	keys := make([]string, 0, len(contextData))
	for k := range contextData {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys)+1)
	parts = append(parts, contextHeader)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("\n%s:\n%s", k, renderContextValue(contextData[k])))
	}
	return strings.Join(parts, "\n")
}

// renderContextValue formats a single context entry. Structured values are
// pretty-printed as JSON without HTML escaping so CJK text and URLs survive
// verbatim; scalars render with their natural string form.
func renderContextValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any, []any:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Sprintf("%v", v)
		}
		return strings.TrimSuffix(buf.String(), "\n")
	default:
		return fmt.Sprintf("%v", v)
	}
}

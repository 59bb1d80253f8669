package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripFences removes a surrounding markdown code fence from a completion.
// Models sometimes wrap JSON output in ```json ... ``` despite instructions.
func StripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	if i := strings.Index(content, "\n"); i >= 0 {
		content = content[i+1:]
	}
	if strings.HasSuffix(content, "```") {
		if i := strings.LastIndex(content, "```"); i >= 0 {
			content = content[:i]
		}
	}
	return strings.TrimSpace(content)
}

// UnmarshalArray decodes a completion that should be a JSON array. Some
// models wrap the array in an object, typically under "projects", so a bare
// array and a wrapped one are both accepted.
func UnmarshalArray(content, wrapKey string, v any) error {
	data := []byte(StripFences(content))
	if err := json.Unmarshal(data, v); err == nil {
		return nil
	}
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return fmt.Errorf("llm: response is neither array nor object: %w", err)
	}
	raw, ok := wrapper[wrapKey]
	if !ok {
		return fmt.Errorf("llm: response object has no %q key", wrapKey)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("llm: decode %q array: %w", wrapKey, err)
	}
	return nil
}

// UnmarshalObject decodes a completion that should be a JSON object.
func UnmarshalObject(content string, v any) error {
	if err := json.Unmarshal([]byte(StripFences(content)), v); err != nil {
		return fmt.Errorf("llm: decode object: %w", err)
	}
	return nil
}

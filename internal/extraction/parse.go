package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zombor/cashclose/internal/closing"
)

// parseExtraction decodes a provider answer into a raw extraction. Markdown
// fences and chatter around the outermost JSON object are ignored.
func parseExtraction(text string) (*closing.RawExtraction, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end < start {
		return nil, ErrNoStructuredOutput
	}

	var raw closing.RawExtraction
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: unmarshaling json: %v", ErrNoStructuredOutput, err)
	}
	return &raw, nil
}

package llm

import (
	"encoding/json"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// parseLenient unmarshals model output into schema, escalating through
// repair strategies: strict JSON, then automated repair, then Hjson for
// outputs with comments or unquoted keys. Returns false when every
// strategy fails.
func parseLenient(input string, schema any) bool {
	input = stripFences(input)

	if err := json.Unmarshal([]byte(input), schema); err == nil {
		return true
	}

	if repaired, err := jsonrepair.RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return true
		}
	}

	var loose any
	if err := hjson.Unmarshal([]byte(input), &loose); err == nil {
		if normalized, err := json.Marshal(loose); err == nil {
			if err := json.Unmarshal(normalized, schema); err == nil {
				return true
			}
		}
	}
	return false
}

// stripFences removes a surrounding markdown code fence if the model added
// one despite JSON mode.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

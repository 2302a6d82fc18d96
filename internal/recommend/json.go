package recommend

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// ExtractJSON pulls the largest embedded JSON object out of a model response.
// Rankers are asked to respond with bare JSON but routinely wrap it in
// markdown fences or prose, so we slice from the first '{' to the last '}'
// before decoding.
func ExtractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", eris.New("recommend: no JSON object in response")
	}
	return s[start : end+1], nil
}

// decodeJSON extracts and unmarshals the embedded object into out.
func decodeJSON(raw string, out any) error {
	obj, err := ExtractJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(obj), out); err != nil {
		return eris.Wrap(err, "recommend: decode response")
	}
	return nil
}

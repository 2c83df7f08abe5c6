package llm

import (
	"encoding/json"
	"strings"

	"github.com/kaicatering/kai/internal/model"
)

// parsePartialSet attempts to interpret an in-flight stream buffer as a
// structurally valid prefix of a RecommendationSet by closing whatever
// strings, objects and arrays are still open. If the completed buffer does
// not parse, the trailing partial token is cut back to the previous value
// boundary and completion is retried, so a half-streamed key or number never
// surfaces to the consumer.
func parsePartialSet(buf string) (model.RecommendationSet, bool) {
	cut := len(buf)
	for cut > 0 {
		candidate := completeJSON(buf[:cut])

		var set model.RecommendationSet
		if err := json.Unmarshal([]byte(candidate), &set); err == nil {
			return set, true
		}

		next := lastBoundaryBefore(buf, cut)
		if next >= cut {
			break
		}
		cut = next
	}
	return model.RecommendationSet{}, false
}

// completeJSON closes open strings and brackets in a JSON prefix.
func completeJSON(data string) string {
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if escaped {
		data = data[:len(data)-1]
	}
	if inString {
		data += `"`
	}

	data = strings.TrimRight(data, " \t\r\n")
	if strings.HasSuffix(data, ",") {
		data = data[:len(data)-1]
	}
	if strings.HasSuffix(data, ":") {
		data += "null"
	}

	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			data += "}"
		} else {
			data += "]"
		}
	}
	return data
}

// lastBoundaryBefore returns the largest cut position strictly before limit
// at which the buffer ends on a value boundary: just after an opening bracket
// or at a top-of-value comma, ignoring characters inside strings.
func lastBoundaryBefore(data string, limit int) int {
	boundary := 0
	inString := false
	escaped := false

	for i := 0; i < limit; i++ {
		c := data[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			if i+1 < limit {
				boundary = i + 1
			}
		case ',':
			boundary = i
		}
	}
	return boundary
}

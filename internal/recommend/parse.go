package recommend

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

var (
	errMalformedReply = errors.New("malformed reply")
	errEmptyReply     = errors.New("empty reply")
)

// stripFence removes a Markdown code fence, optionally tagged json, around the reply.
func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	body := strings.TrimPrefix(text, "```")
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
	}
	return strings.TrimSpace(body)
}

// decodeReply parses the model reply into recommendations.
// A single object is wrapped into a one-element list.
func decodeReply(raw string) ([]Recommendation, error) {
	cleaned := []byte(stripFence(raw))
	if len(cleaned) == 0 || bytes.Equal(cleaned, []byte("null")) {
		return nil, errEmptyReply
	}

	switch cleaned[0] {
	case '[':
		var recs []Recommendation
		if err := json.Unmarshal(cleaned, &recs); err != nil {
			return nil, fmt.Errorf("%w: %v", errMalformedReply, err)
		}
		if len(recs) == 0 {
			return nil, errEmptyReply
		}
		return recs, nil
	case '{':
		var rec Recommendation
		if err := json.Unmarshal(cleaned, &rec); err != nil {
			return nil, fmt.Errorf("%w: %v", errMalformedReply, err)
		}
		return []Recommendation{rec}, nil
	default:
		return nil, fmt.Errorf("%w: expected JSON array or object", errMalformedReply)
	}
}

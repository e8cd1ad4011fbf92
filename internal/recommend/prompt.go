package recommend

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"sort"
	"strings"
	"text/template"
)

// SystemInstruction is sent as the system message of every completion.
const SystemInstruction = "You are a helpful academic counselor. Always respond with valid JSON arrays."

const notSpecified = "Not specified"

//go:embed prompts/recommend_v1.tmpl
var promptV1 string

var promptTemplate = template.Must(template.New("recommend_v1").
	Option("missingkey=error").
	Funcs(template.FuncMap{
		"join":        joinList,
		"grades":      formatGrades,
		"personality": formatPersonality,
	}).
	Parse(promptV1))

// RenderPrompt renders the user prompt for the input. Output is deterministic for equal inputs.
func RenderPrompt(in Input) (string, error) {
	var b strings.Builder
	if err := promptTemplate.Execute(&b, in); err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}

// HashPrompt returns the hex sha256 of a rendered prompt.
func HashPrompt(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

func joinList(items []string) string {
	return strings.Join(items, ", ")
}

// formatGrades renders "subject: grade" pairs in subject order.
func formatGrades(grades map[string]string) string {
	if len(grades) == 0 {
		return ""
	}
	keys := make([]string, 0, len(grades))
	for k := range grades {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+grades[k])
	}
	return strings.Join(parts, ", ")
}

func formatPersonality(personalityType string) string {
	if strings.TrimSpace(personalityType) == "" {
		return notSpecified
	}
	return personalityType
}

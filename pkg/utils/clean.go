package utils

import (
	"regexp"
	"strings"
)

var thinkBlockRe = regexp.MustCompile(`(?is)<\s*think\s*>.*?<\s*/\s*think\s*>`)

// CleanResponse strips reasoning tags some models emit around their answer
// and trims surrounding whitespace.
func CleanResponse(text string) string {
	cleaned := thinkBlockRe.ReplaceAllString(text, "")
	return strings.TrimSpace(cleaned)
}

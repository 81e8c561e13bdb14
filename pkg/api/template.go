package api

import (
	"fmt"
	"strings"
)

// Placeholders the system prompt template must carry for the single-prompt
// (Ollama) wire format.
const (
	PlaceholderExamples = "{example_text}"
	PlaceholderGoal     = "{user_prompt}"
)

// Markers that introduce the placeholder sections inside a template. The
// chat-style wire format strips everything from the first marker on, since
// examples and goal travel in their own message there.
const (
	examplesMarker = "Example Text Prompts:"
	goalMarker     = "User Input:"
)

// BuildPrompt expands the system prompt template into the single prompt
// string the Ollama generate endpoint expects. Both placeholders must be
// present; a template without them would silently drop the user's input.
func BuildPrompt(template, exampleText, userGoal string) (string, error) {
	for _, placeholder := range []string{PlaceholderExamples, PlaceholderGoal} {
		if !strings.Contains(template, placeholder) {
			return "", fmt.Errorf("system prompt is missing the %s placeholder", placeholder)
		}
	}

	r := strings.NewReplacer(
		PlaceholderExamples, exampleText,
		PlaceholderGoal, userGoal,
	)
	return r.Replace(template), nil
}

// SystemMessage derives the chat system message from the template by
// cutting off the placeholder sections.
func SystemMessage(template string) string {
	cleaned, _, _ := strings.Cut(template, examplesMarker)
	cleaned, _, _ = strings.Cut(cleaned, goalMarker)
	return strings.TrimSpace(cleaned)
}

// UserMessage combines the example text and the user's goal into the chat
// user message.
func UserMessage(exampleText, userGoal string) string {
	return fmt.Sprintf(
		"Analyze the following examples and generate a new prompt based on them, focusing on the user's goal.\n\n**Example Text Prompts:**\n%s\n\n**User Input/Goal:**\n%s",
		exampleText, userGoal,
	)
}

package router

import (
	"regexp"
	"strings"
)

// identityDenylist maps provider and model names to the product's neutral
// wording. Every piece of text destined for the user passes through this
// substitution at the router boundary, so no individual prompt has to carry
// identity-masking instructions.
var identityDenylist = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)chatgpt`), "your assistant"},
	{regexp.MustCompile(`(?i)gpt-?4[\w.-]*`), "our language model"},
	{regexp.MustCompile(`(?i)gpt-?3[\w.-]*`), "our language model"},
	{regexp.MustCompile(`(?i)dall[\s·-]?e[\w.-]*`), "our image model"},
	{regexp.MustCompile(`(?i)openai`), "our model provider"},
	{regexp.MustCompile(`(?i)anthropic`), "our model provider"},
	{regexp.MustCompile(`(?i)claude`), "your assistant"},
	{regexp.MustCompile(`(?i)gemini`), "your assistant"},
	{regexp.MustCompile(`(?i)stable\s+diffusion`), "our image model"},
	{regexp.MustCompile(`(?i)midjourney`), "our image model"},
	{regexp.MustCompile(`(?i)elevenlabs`), "our voice engine"},
}

// sanitizeOutput applies the identity denylist to user-destined text.
func sanitizeOutput(text string) string {
	if text == "" {
		return text
	}
	for _, entry := range identityDenylist {
		text = entry.pattern.ReplaceAllString(text, entry.replacement)
	}
	return strings.TrimSpace(text)
}

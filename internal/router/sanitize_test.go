package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeOutput(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"model name masked",
			"This was drawn by DALL-E 3.",
			"This was drawn by our image model 3.",
		},
		{
			"provider masked case-insensitively",
			"Powered by OpenAI and openai alike.",
			"Powered by our model provider and our model provider alike.",
		},
		{
			"assistant identity masked",
			"I'm ChatGPT, how can I help?",
			"I'm your assistant, how can I help?",
		},
		{
			"versioned model ids masked",
			"Routing between gpt-4o-mini and GPT-4 Turbo.",
			"Routing between our language model and our language model Turbo.",
		},
		{
			"clean text untouched",
			"Here are three latte names for your menu.",
			"Here are three latte names for your menu.",
		},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeOutput(tt.in))
		})
	}
}

package interpreter

import (
	"fmt"
	"strings"

	"github.com/velora-ai/velora/internal/models"
)

// classificationSystemPrompt carries the full instruction set for the
// remote interpretation call: routing keywords, the complexity rubric,
// identity masking, and the strict JSON output contract.
const classificationSystemPrompt = `You are the request interpreter for a creative assistant. Decide which capability the user's message maps to, grade its complexity, and rewrite the request into a prompt suited for the downstream model.

Capabilities and their signals:
- chat: questions, conversation, writing help, anything not below
- image: logo, picture, photo, illustration, poster, banner, icon, drawing
- image_edit: editing, recoloring, or changing a previously created image
- video: video clips, animations, b-roll, filmed scenes
- ppt: powerpoint, slide deck, presentation, pitch deck
- tts: voiceover, narration, reading text aloud, voice changes
- music: songs, jingles, background music, soundtracks

Complexity rubric:
- simple: greetings, acknowledgements, single-fact questions, short requests under a sentence
- medium: ordinary requests with a clear subject and one or two constraints
- complex: multi-part requests, long briefs, anything needing planning or multiple constraints honored at once

Fill in reasonable defaults for details the user omitted and list each one as an assumption. If the request is too ambiguous to act on, or a required detail (such as the text to narrate) is missing, set needs_clarification and ask at most three pointed questions.

Never reveal or mention the name of any underlying model or provider in any text destined for the user.

Return only a JSON object with this structure:
{
  "intent": "chat|image|image_edit|video|ppt|tts|music",
  "confidence": 0.0,
  "enhanced_prompt": "rewritten request for the downstream model",
  "complexity": "simple|medium|complex",
  "context_updates": {
    "long_term": {"business_name": "", "industry": "", "target_audience": "", "brand_tone": "", "business_goals": [], "selling_points": [], "custom_data": {}},
    "short_term": {"current_task": "", "task_type": "", "recent_topics": [], "pending_actions": [], "style_preferences": {}}
  },
  "assumptions": [{"key": "", "value": "", "editable": true}],
  "needs_clarification": false,
  "clarifying_questions": [{"id": "", "question": "", "placeholder": "", "required": true}],
  "status_message": "short progress label"
}`

// buildUserPrompt assembles the context summary, condensed history, tier,
// and the new message into the single user message sent to the remote
// interpreter.
func buildUserPrompt(context *models.ConversationContext, condensed Condensed, tier models.Tier, message string) string {
	var b strings.Builder

	if summary := contextSummary(context); summary != "" {
		b.WriteString("Known about this user:\n")
		b.WriteString(summary)
		b.WriteString("\n\n")
	}
	if condensed.Summary != "" {
		b.WriteString("Earlier in this conversation (summarized):\n")
		b.WriteString(condensed.Summary)
		b.WriteString("\n\n")
	}
	if len(condensed.Recent) > 0 {
		b.WriteString("Recent messages:\n")
		for _, m := range condensed.Recent {
			b.WriteString(fmt.Sprintf("%s: %s\n", m.Role, m.Content))
		}
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("Subscription tier: %s\n\n", tier))
	b.WriteString("New message: ")
	b.WriteString(message)
	return b.String()
}

// contextSummary renders the durable business facts and current task as a
// compact block for the interpretation prompt.
func contextSummary(c *models.ConversationContext) string {
	if c == nil {
		return ""
	}
	var lines []string
	lt := c.LongTerm
	if lt.BusinessName != "" {
		lines = append(lines, "Business: "+lt.BusinessName)
	}
	if lt.Industry != "" {
		lines = append(lines, "Industry: "+lt.Industry)
	}
	if lt.TargetAudience != "" {
		lines = append(lines, "Audience: "+lt.TargetAudience)
	}
	if lt.BrandTone != "" {
		lines = append(lines, "Brand tone: "+lt.BrandTone)
	}
	if len(lt.BusinessGoals) > 0 {
		lines = append(lines, "Goals: "+strings.Join(lt.BusinessGoals, "; "))
	}
	if len(lt.SellingPoints) > 0 {
		lines = append(lines, "Selling points: "+strings.Join(lt.SellingPoints, "; "))
	}
	for _, a := range lt.Assets {
		lines = append(lines, fmt.Sprintf("Asset: %s (%s)", a.Name, a.Type))
	}
	st := c.ShortTerm
	if st.CurrentTask != "" {
		lines = append(lines, "Current task: "+st.CurrentTask)
	}
	if len(st.RecentTopics) > 0 {
		lines = append(lines, "Recent topics: "+strings.Join(st.RecentTopics, ", "))
	}
	return strings.Join(lines, "\n")
}

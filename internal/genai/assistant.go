package genai

import (
	"context"
	"encoding/json"
	"fmt"
)

// historyLimit is how many trailing conversation turns are sent.
const historyLimit = 20

const assistantPrompt = "You are a travel itinerary assistant. Use the trip context to answer " +
	"questions, reference actual plans, and offer suggestions when helpful. Keep answers " +
	"concise and grounded in the provided data unless asked to speculate."

// Chat answers the last user message given the conversation so far and a
// JSON-serialisable snapshot of the trip. Only user and assistant turns are
// forwarded.
func (c *Client) Chat(ctx context.Context, tripContext any, messages []Message) (string, error) {
	ctxJSON, err := json.MarshalIndent(tripContext, "", "  ")
	if err != nil {
		return "", fmt.Errorf("genai.Chat: encode context: %w", err)
	}

	input := []inputBlock{
		textBlock("system", assistantPrompt),
		textBlock("system", "Latest trip context:\n"+string(ctxJSON)),
	}
	if len(messages) > historyLimit {
		messages = messages[len(messages)-historyLimit:]
	}
	for _, m := range messages {
		if m.Content == "" || (m.Role != "user" && m.Role != "assistant") {
			continue
		}
		input = append(input, textBlock(m.Role, m.Content))
	}

	text, err := c.complete(ctx, input)
	if err != nil {
		return "", fmt.Errorf("genai.Chat: %w", err)
	}
	return text, nil
}

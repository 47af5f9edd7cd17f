package genai

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkordes/trip-planner/internal/domain"
)

// modePhrases turn a transport mode into the words used in the prompt.
var modePhrases = map[domain.TransportMode]string{
	domain.ModePublic:  "public transport",
	domain.ModeCar:     "car",
	domain.ModeBicycle: "bicycle",
	domain.ModeWalking: "walking",
	domain.ModeFlight:  "plane",
}

// Estimate asks for the typical travel time between two places. The answer
// is returned as-is; cleaning and validation belong to the caller.
func (c *Client) Estimate(ctx context.Context, from, to string, mode domain.TransportMode, locale string) (string, error) {
	phrase, ok := modePhrases[mode]
	if !ok {
		phrase = strings.ToLower(string(mode))
	}
	if locale == "" {
		locale = "en"
	}

	prompt := fmt.Sprintf(
		"How long does it take to travel from %q to %q by %s? "+
			"Reply with only the duration, for example \"25m\" or \"1h 10m\". "+
			"Use the language with BCP 47 tag %q. No other words.",
		from, to, phrase, locale)

	text, err := c.complete(ctx, []inputBlock{
		textBlock("system", "You estimate door-to-door travel times between named places."),
		textBlock("user", prompt),
	})
	if err != nil {
		return "", fmt.Errorf("genai.Estimate: %w", err)
	}
	return text, nil
}

package chat

import (
	"fmt"
	"strings"

	"github.com/cloudwalk/assistant/internal/config"
	"github.com/cloudwalk/assistant/internal/session"
)

// profileGuidance steers the tone of the answer by merchant profile.
var profileGuidance = map[session.Profile]string{
	session.ProfileNewMerchant:      "The user is a new merchant; avoid jargon and explain how to get started.",
	session.ProfileExistingCustomer: "The user is an existing customer; be direct and focus on their account and products.",
	session.ProfileTechnicalUser:    "The user is technical; precise details and integration specifics are welcome.",
	session.ProfileInvestor:         "The user is an investor; focus on the business, scale and strategy.",
	session.ProfilePartner:          "The user is a business partner; focus on collaboration and the product ecosystem.",
}

// personaPrompt renders the static part of the system prompt: the
// style persona followed by the brand identity and product catalog.
func personaPrompt(brand config.Brand, style config.StylePreset) string {
	var b strings.Builder

	persona := style.Persona
	if persona == "" {
		persona = "You are a helpful %s assistant."
	}
	fmt.Fprintf(&b, persona, brand.Name)
	b.WriteString("\n\n")

	if brand.Tagline != "" {
		fmt.Fprintf(&b, "%s: %s\n", brand.Name, brand.Tagline)
	}
	if brand.Mission != "" {
		fmt.Fprintf(&b, "Mission: %s\n", brand.Mission)
	}
	if len(brand.Products) > 0 {
		b.WriteString("\nProducts:\n")
		for _, p := range brand.Products {
			fmt.Fprintf(&b, "- %s: %s\n", p.Name, p.Description)
		}
	}
	b.WriteString("\nAnswer questions about the company and its products accurately. " +
		"If you do not know the answer, say so instead of inventing one.")

	return b.String()
}

// systemPrompt appends the per-turn instructions (response language,
// merchant profile) to the cached persona.
func (a *Assistant) systemPrompt(lang string, profile session.Profile) string {
	var b strings.Builder
	b.WriteString(a.persona)

	switch lang {
	case "pt-BR":
		b.WriteString("\n\nRespond in Brazilian Portuguese.")
	default:
		b.WriteString("\n\nRespond in English.")
	}

	if guidance, ok := profileGuidance[profile]; ok {
		b.WriteString("\n")
		b.WriteString(guidance)
	}
	return b.String()
}

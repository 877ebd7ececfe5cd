package config

// StylePreset tunes how the assistant speaks. Each preset pairs a
// generation temperature with the persona sentence that opens the
// system prompt.
type StylePreset struct {
	Temperature float32
	Persona     string
}

// responseStyles are the supported response style presets.
var responseStyles = map[string]StylePreset{
	"professional": {
		Temperature: 0.3,
		Persona:     "You are a professional %s representative.",
	},
	"friendly": {
		Temperature: 0.7,
		Persona:     "You are a friendly %s assistant, warm and helpful.",
	},
	"technical": {
		Temperature: 0.2,
		Persona:     "You are a technical %s expert, precise and detailed.",
	},
}

// Style returns the preset for the given style name.
func Style(name string) (StylePreset, bool) {
	s, ok := responseStyles[name]
	return s, ok
}

// StyleNames returns the supported style names in no particular order.
func StyleNames() []string {
	names := make([]string, 0, len(responseStyles))
	for name := range responseStyles {
		names = append(names, name)
	}
	return names
}

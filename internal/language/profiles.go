package language

// DefaultProfiles returns the built-in Brazilian Portuguese and English
// profiles. Portuguese comes first: merchant traffic skews pt-BR, and
// profile order breaks exact ties.
func DefaultProfiles() []Profile {
	return []Profile{
		{
			Code: "pt-BR",
			Terms: []string{
				// Greetings and social forms
				"olá", "oi", "bom dia", "boa tarde", "boa noite",
				"obrigado", "obrigada", "por favor", "tchau", "até",
				"você", "vocês", "está", "estou", "são", "sou",
				"meu", "minha", "nosso", "nossa",
				// Payments vocabulary
				"maquininha", "cartão", "pagamento", "taxa", "pix",
				"boleto", "conta", "dinheiro", "receber", "vender", "comprar",
				// Common verbs
				"fazer", "querer", "poder", "precisar", "ter", "ser", "estar",
				// Affirmation and negation
				"não", "sim", "talvez", "claro", "certo", "errado",
			},
			StopWords: []string{
				"de", "da", "do", "a", "o", "um", "uma", "para", "com", "em", "no", "na",
			},
			Greetings: []string{
				"Olá! Bem-vindo à CloudWalk! 🚀",
				"Oi! Como posso ajudar você hoje?",
				"Seja bem-vindo! Sou o assistente da CloudWalk.",
			},
		},
		{
			Code: "en",
			Terms: []string{
				// Greetings and social forms
				"hello", "hi", "good morning", "good afternoon", "good evening",
				"thanks", "thank you", "please", "bye", "goodbye",
				"you", "your", "are", "am", "is", "my", "our",
				// Payments vocabulary
				"card", "payment", "fee", "rate", "account", "money",
				"receive", "sell", "buy", "terminal",
				// Common verbs
				"do", "want", "can", "need", "have", "be",
				// Affirmation and negation
				"no", "yes", "maybe", "sure", "right", "wrong",
			},
			StopWords: []string{
				"the", "a", "an", "to", "for", "with", "in", "on", "at",
			},
			Greetings: []string{
				"Hello! Welcome to CloudWalk! 🚀",
				"Hi there! How can I help you today?",
				"Welcome! I'm CloudWalk's AI assistant.",
			},
		},
	}
}

package intent

import (
	"slices"
	"testing"
)

func TestDetect(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name string
		text string
		want []Kind
	}{
		{
			name: "english greeting",
			text: "Hello!",
			want: []Kind{Greeting},
		},
		{
			name: "portuguese greeting",
			text: "Olá, tudo bem?",
			want: []Kind{Greeting},
		},
		{
			name: "product inquiry",
			text: "Tell me more about InfinitePay",
			want: []Kind{ProductInquiry},
		},
		{
			name: "pricing question",
			text: "What are the fees for credit cards?",
			want: []Kind{PricingQuestion, FeatureExplanation},
		},
		{
			name: "pricing in portuguese",
			text: "quanto custa a maquininha?",
			want: []Kind{ProductInquiry, PricingQuestion},
		},
		{
			name: "technical support",
			text: "my terminal is not working",
			want: []Kind{ProductInquiry, TechnicalSupport},
		},
		{
			name: "company info",
			text: "what is CloudWalk's mission?",
			want: []Kind{CompanyInfo, FeatureExplanation},
		},
		{
			name: "feature explanation",
			text: "how does the instant payout work?",
			want: []Kind{FeatureExplanation},
		},
		{
			name: "comparison",
			text: "is JIM better than Square?",
			want: []Kind{ProductInquiry, Comparison},
		},
		{
			name: "how to start",
			text: "I want to sign up",
			want: []Kind{HowToStart},
		},
		{
			name: "contact sales",
			text: "can I talk to someone from sales?",
			want: []Kind{ContactSales},
		},
		{
			name: "greeting plus pricing",
			text: "hi, how much is the debit rate?",
			want: []Kind{Greeting, PricingQuestion},
		},
		{
			name: "no match falls back to general chat",
			text: "tomorrow it might snow",
			want: []Kind{GeneralChat},
		},
		{
			name: "empty input falls back to general chat",
			text: "",
			want: []Kind{GeneralChat},
		},
		{
			name: "embedded word does not match",
			text: "highway through the hills",
			want: []Kind{GeneralChat},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Detect(tt.text)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Detect(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestDetect_OrderIsStable(t *testing.T) {
	c := NewClassifier()

	// Matches several intents; result must follow classification order.
	got := c.Detect("hello, how much does InfinitePay cost and how do I sign up?")

	want := []Kind{Greeting, ProductInquiry, PricingQuestion, HowToStart}
	if !slices.Equal(got, want) {
		t.Errorf("Detect() = %v, want %v", got, want)
	}
}

func TestKinds(t *testing.T) {
	kinds := Kinds()
	if len(kinds) != 10 {
		t.Fatalf("len(Kinds()) = %d, want 10", len(kinds))
	}
	if kinds[len(kinds)-1] != GeneralChat {
		t.Errorf("last kind = %q, want general_chat", kinds[len(kinds)-1])
	}
}

package config

// Brand holds the company identity injected into the assistant persona.
// All fields can be overridden from the config file; empty fields fall
// back to the CloudWalk defaults in applyDefaults.
type Brand struct {
	Name     string         `mapstructure:"name"`
	Tagline  string         `mapstructure:"tagline"`
	Mission  string         `mapstructure:"mission"`
	Products []BrandProduct `mapstructure:"products"`
}

// BrandProduct describes one product line of the brand.
// Key is the stable identifier used for knowledge base filtering
// ("infinitepay", "jim", "stratus"); Description is the one-line pitch
// shown to the model in the persona prompt.
type BrandProduct struct {
	Key         string `mapstructure:"key"`
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
}

// applyDefaults fills empty brand fields with the CloudWalk identity.
// Products keep declaration order so prompt assembly stays deterministic.
func (b *Brand) applyDefaults() {
	if b.Name == "" {
		b.Name = "CloudWalk"
	}
	if b.Tagline == "" {
		b.Tagline = "Creating the best payment network on Earth. Then other planets."
	}
	if b.Mission == "" {
		b.Mission = "Create the best payment network on Earth"
	}
	if len(b.Products) == 0 {
		b.Products = []BrandProduct{
			{Key: "infinitepay", Name: "InfinitePay", Description: "InfinitePay - Brazilian payment platform"},
			{Key: "jim", Name: "JIM", Description: "JIM - Instant payments for the US"},
			{Key: "stratus", Name: "STRATUS", Description: "STRATUS - Blockchain for financial solutions"},
		}
	}
}

// Product returns the product with the given key, or nil when unknown.
func (b *Brand) Product(key string) *BrandProduct {
	for i := range b.Products {
		if b.Products[i].Key == key {
			return &b.Products[i]
		}
	}
	return nil
}

package knowledge

import (
	"context"
	"fmt"
)

// SeedDocuments returns the core CloudWalk corpus: company identity,
// the three product lines and their fees, plus Portuguese variants of
// the merchant-facing entries. IDs are derived from stable keys so the
// corpus can be re-seeded at every startup without duplicates.
func SeedDocuments() []Document {
	return []Document{
		{
			ID:          ContentID("cloudwalk_mission"),
			Title:       "CloudWalk Mission",
			Content:     "Our mission is to create the best payment network on Earth. Then other planets. We are democratizing the financial industry, empowering entrepreneurs through technological, inclusive and life-changing solutions.",
			Category:    "company",
			Subcategory: "mission",
			Tags:        []string{"mission", "vision", "company", "about"},
			Language:    "en",
		},
		{
			ID:          ContentID("infinitepay_overview"),
			Title:       "InfinitePay Overview",
			Content:     "InfinitePay is a powerful financial platform democratizing access to world-class payment products and software, currently serving millions of clients in Brazil. Launched in 2019, it represented the most disruptive wave of innovation in the Brazilian payments industry.",
			Category:    "products",
			Subcategory: "infinitepay",
			Tags:        []string{"infinitepay", "brazil", "payments", "maquininha"},
			Language:    "en",
			Product:     "infinitepay",
		},
		{
			ID:          ContentID("infinitepay_fees"),
			Title:       "InfinitePay Fees",
			Content:     "InfinitePay offers the lowest fees in Brazil: 0.00% for Pix, 0.75% for Debit, 2.69% for Credit (1x), and 8.99% for Credit (12x). These are final rates including anticipation. No monthly fees or hidden costs.",
			Category:    "products",
			Subcategory: "fees",
			Tags:        []string{"fees", "rates", "pricing", "costs", "infinitepay"},
			Language:    "en",
			Product:     "infinitepay",
		},
		{
			ID:          ContentID("infinitepay_maquininha"),
			Title:       "InfinitePay Maquininha Smart",
			Content:     "The Maquininha Smart is available for just 12x R$ 16.58 or R$ 199. It includes: Pix with zero fees, receipt printing, long battery life, inventory management, free shipping, and no rental fees or loyalty requirements.",
			Category:    "products",
			Subcategory: "hardware",
			Tags:        []string{"maquininha", "hardware", "terminal", "pos", "infinitepay"},
			Language:    "en",
			Product:     "infinitepay",
		},
		{
			ID:          ContentID("infinitetap_overview"),
			Title:       "InfiniteTap - Phone as Card Reader",
			Content:     "InfiniteTap transforms your smartphone into a card reader in less than 5 minutes. Works on Android and iOS with NFC. Zero investment required, accepts payments up to 12x installments.",
			Category:    "products",
			Subcategory: "infinitetap",
			Tags:        []string{"tap", "nfc", "mobile", "smartphone", "infinitepay"},
			Language:    "en",
			Product:     "infinitepay",
		},
		{
			ID:          ContentID("jim_overview"),
			Title:       "JIM Overview",
			Content:     "JIM brings the power of instant payments for everyone in the US. Combining cutting edge technology with unparalleled design, JIM enables sellers to accept payments, receive money instantly, and access a next generation AI assistant.",
			Category:    "products",
			Subcategory: "jim",
			Tags:        []string{"jim", "usa", "instant", "payments"},
			Language:    "en",
			Product:     "jim",
		},
		{
			ID:          ContentID("jim_features"),
			Title:       "JIM Features and Pricing",
			Content:     "JIM offers: 1.99% per transaction (lowest in market), instant payouts in seconds, no hardware needed (phone only), accepts all major cards and digital wallets, AI-powered business insights. No hidden fees, no monthly charges.",
			Category:    "products",
			Subcategory: "features",
			Tags:        []string{"jim", "fees", "instant", "mobile", "ai"},
			Language:    "en",
			Product:     "jim",
		},
		{
			ID:          ContentID("stratus_overview"),
			Title:       "STRATUS Blockchain",
			Content:     "STRATUS is a high performance, secure, scalable, and open-source blockchain designed for global payment networks. It processes up to 1,800 transactions per second (TPS) with potential for infinite growth through sharding and multi-raft consensus models.",
			Category:    "products",
			Subcategory: "stratus",
			Tags:        []string{"stratus", "blockchain", "technology", "infrastructure"},
			Language:    "en",
			Product:     "stratus",
		},
		{
			ID:          ContentID("cloudwalk_ai"),
			Title:       "CloudWalk AI Capabilities",
			Content:     "CloudWalk leverages AI across multiple fronts: fraud detection with 3-layer system (transactional, behavioral, relational), credit assessment using actual behavior data, customer support automation handling substantial chats without human intervention, and merchant vector space for business analysis.",
			Category:    "technology",
			Subcategory: "ai",
			Tags:        []string{"ai", "ml", "fraud", "credit", "automation"},
			Language:    "en",
		},
		{
			ID:          ContentID("cloudwalk_support"),
			Title:       "CloudWalk Support Excellence",
			Content:     "CloudWalk provides RA1000-rated support, the highest quality rating in Brazil. Our support team is always ready to help with questions and resolve problems quickly and efficiently.",
			Category:    "support",
			Subcategory: "customer_service",
			Tags:        []string{"support", "ra1000", "help", "service"},
			Language:    "en",
		},
		{
			ID:          ContentID("infinitepay_overview_pt"),
			Title:       "Visão Geral InfinitePay",
			Content:     "InfinitePay é uma poderosa plataforma financeira democratizando o acesso a produtos de pagamento de classe mundial, atualmente atendendo milhões de clientes no Brasil. Lançada em 2019, representou a onda mais disruptiva de inovação no setor de pagamentos brasileiro.",
			Category:    "products",
			Subcategory: "infinitepay",
			Tags:        []string{"infinitepay", "brasil", "pagamentos", "maquininha"},
			Language:    "pt-BR",
			Product:     "infinitepay",
		},
		{
			ID:          ContentID("infinitepay_taxas_pt"),
			Title:       "Taxas InfinitePay",
			Content:     "InfinitePay oferece as menores taxas do Brasil: 0,00% no Pix, 0,75% no Débito, 2,69% no Crédito à vista, e 8,99% no Crédito 12x. São taxas finais já com antecipação. Sem mensalidade ou custos escondidos.",
			Category:    "products",
			Subcategory: "fees",
			Tags:        []string{"taxas", "preços", "custos", "infinitepay"},
			Language:    "pt-BR",
			Product:     "infinitepay",
		},
	}
}

// Seed loads the core corpus and reports how many documents were newly
// inserted. Safe to call on every startup.
func (s *Store) Seed(ctx context.Context) (int, error) {
	inserted, err := s.Upsert(ctx, SeedDocuments()...)
	if err != nil {
		return inserted, fmt.Errorf("seeding knowledge base: %w", err)
	}
	if inserted > 0 {
		s.logger.Info("seeded knowledge base", "new_documents", inserted)
	}
	return inserted, nil
}

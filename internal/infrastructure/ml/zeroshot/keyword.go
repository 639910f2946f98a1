package zeroshot

import (
	"context"
	"strings"
)

// KeywordClassifier scores each label by keyword hits in the text. It
// backs the zero-shot client when the model service is down and can
// run standalone in deployments without one.
type KeywordClassifier struct {
	keywords map[string][]string
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		keywords: map[string][]string{
			"invoice":  {"invoice", "amount due", "bill to", "payment terms", "subtotal", "invoice number"},
			"contract": {"agreement", "contract", "party", "parties", "hereby", "terms and conditions", "witness whereof"},
			"report":   {"report", "summary", "analysis", "findings", "quarterly", "annual", "overview"},
			"letter":   {"dear", "sincerely", "regards", "yours truly", "to whom it may concern"},
			"form":     {"form", "application", "please fill", "checkbox", "signature", "date of birth"},
			"receipt":  {"receipt", "paid", "transaction", "change due", "cash", "card ending"},
			"memo":     {"memo", "memorandum", "from:", "to:", "re:", "subject:"},
		},
	}
}

func (k *KeywordClassifier) Classify(_ context.Context, text string) (string, float64, error) {
	lowered := strings.ToLower(text)

	bestLabel := "other"
	bestHits := 0
	for _, label := range Labels {
		hits := 0
		for _, keyword := range k.keywords[label] {
			if strings.Contains(lowered, keyword) {
				hits++
			}
		}
		if hits > bestHits {
			bestHits = hits
			bestLabel = label
		}
	}
	if bestHits == 0 {
		return "other", 0.1, nil
	}

	// Confidence grows with keyword hits but stays below what a real
	// model would report for an unambiguous document.
	confidence := 0.35 + 0.1*float64(bestHits)
	if confidence > 0.85 {
		confidence = 0.85
	}
	return bestLabel, confidence, nil
}

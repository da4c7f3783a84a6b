package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

var promptTemplate = template.Must(template.New("insights").Parse(
	`Budget: ${{.Budget}}
Preferences: {{.Preferences}}
{{- if .IncludeCart}}
Cart Items:
{{.Cart}}
{{- end}}
Based on the given budget and preferences{{if .IncludeCart}}, and with reference to the provided cart items{{end}}:
- Make 3-5 Amazon product recommendations, with a sample URL link to the Amazon product page if possible.
- Provide a brief justification for each recommendation, explaining how it aligns with the user's budget and preferences.
- Ensure the response is concise, informative, and within 150 words.
Label the sections "Budget recommendation:", "Product suggestions:", "Holiday-specific recommendations:" and "Gift suggestions:".
Please ensure the recommendations are practical, realistic, and suitable for the user's stated preferences and budget constraints.
`))

// PromptBuilder renders the insights prompt for a request
type PromptBuilder struct {
	// IncludeCart adds the stored cart items to the prompt
	IncludeCart bool
	// Store supplies the cart items when IncludeCart is set
	Store KeyValueStore
}

// Render produces the prompt text. The same request and cart always render
// to the same text.
func (b *PromptBuilder) Render(ctx context.Context, req InsightsRequest) (string, error) {
	prefs, err := json.Marshal(req.Preferences)
	if err != nil {
		return "", fmt.Errorf("failed to encode preferences: %w", err)
	}

	data := struct {
		Budget      string
		Preferences string
		IncludeCart bool
		Cart        string
	}{
		Budget:      formatBudget(req.Budget),
		Preferences: string(prefs),
		IncludeCart: b.IncludeCart,
	}

	if b.IncludeCart {
		var items []CartItem
		if b.Store != nil {
			items = LoadCartItems(ctx, b.Store)
		}
		data.Cart = FormatCartItems(items)
	}

	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}

// FormatCartItems renders items as a numbered list
func FormatCartItems(items []CartItem) string {
	if len(items) == 0 {
		return "No items in the cart."
	}
	lines := make([]string, len(items))
	for i, item := range items {
		price := item.Price
		if price == "" {
			price = "Price not available"
		}
		lines[i] = fmt.Sprintf("%d. %s (%s)", i+1, item.Name, price)
	}
	return strings.Join(lines, "\n")
}

func formatBudget(b float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", b), "0"), ".")
}

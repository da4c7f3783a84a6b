package internal

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptBuilder_Render(t *testing.T) {
	ctx := context.Background()

	t.Run("without cart", func(t *testing.T) {
		b := &PromptBuilder{}
		got, err := b.Render(ctx, testRequest)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(got, "Budget: $50\n"), got)
		assert.Contains(t, got, `Preferences: {"preferredCategories":["electronics"],"holidaySeason":true,"giftShopping":false}`)
		assert.NotContains(t, got, "Cart Items:")
		assert.Contains(t, got, "Product suggestions:")
	})

	t.Run("with cart", func(t *testing.T) {
		store := newMemStore()
		require.NoError(t, store.Set(ctx, map[string]interface{}{
			KeyCartItems: []CartItem{{Name: "Mouse", Price: "$24"}, {Name: "Notebook"}},
		}))
		b := &PromptBuilder{IncludeCart: true, Store: store}

		got, err := b.Render(ctx, InsightsRequest{Budget: 75.5})
		require.NoError(t, err)
		assert.Contains(t, got, "Budget: $75.5\n")
		assert.Contains(t, got, "Cart Items:\n1. Mouse ($24)\n2. Notebook (Price not available)")
		assert.Contains(t, got, "with reference to the provided cart items")
	})

	t.Run("with empty cart", func(t *testing.T) {
		b := &PromptBuilder{IncludeCart: true, Store: newMemStore()}
		got, err := b.Render(ctx, testRequest)
		require.NoError(t, err)
		assert.Contains(t, got, "No items in the cart.")
	})

	t.Run("deterministic", func(t *testing.T) {
		b := &PromptBuilder{}
		first, err := b.Render(ctx, testRequest)
		require.NoError(t, err)
		second, err := b.Render(ctx, testRequest)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestFormatBudget(t *testing.T) {
	tests := map[float64]string{
		50:     "50",
		100:    "100",
		10.5:   "10.5",
		19.99:  "19.99",
		0.25:   "0.25",
		1000.1: "1000.1",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatBudget(in), "formatBudget(%v)", in)
	}
}

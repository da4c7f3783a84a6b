package internal

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Actions accepted by Service.Handle
const (
	ActionGetInsights     = "getInsights"
	ActionUpdateCart      = "updateCart"
	ActionRefreshCartData = "refreshCartData"
)

// CartItem is a single line item scraped from a cart page
type CartItem struct {
	Name  string `json:"name" yaml:"name"`
	Price string `json:"price,omitempty" yaml:"price,omitempty"`
}

// Order is a single line item scraped from an order history page
type Order struct {
	Title string `json:"title" yaml:"title"`
	Price string `json:"price" yaml:"price"`
}

// Preferences holds what the chat collected besides the budget. A nil
// HolidaySeason or GiftShopping means the question has not been answered.
type Preferences struct {
	PreferredCategories []string `json:"preferredCategories" yaml:"preferred_categories"`
	HolidaySeason       *bool    `json:"holidaySeason" yaml:"holiday_season"`
	GiftShopping        *bool    `json:"giftShopping" yaml:"gift_shopping"`
}

// InsightsRequest is the payload of one queued task
type InsightsRequest struct {
	Budget      float64     `json:"budget" yaml:"budget"`
	Preferences Preferences `json:"preferences" yaml:"preferences"`
}

// Validate checks that the budget is a positive finite number
func (r InsightsRequest) Validate() error {
	if !ValidBudget(r.Budget) {
		return fmt.Errorf("budget must be a positive number, got %v", r.Budget)
	}
	return nil
}

// ValidBudget reports whether b is usable as a shopping budget. NaN and
// infinities parse as floats but cannot be stored as JSON.
func ValidBudget(b float64) bool {
	return !math.IsNaN(b) && !math.IsInf(b, 0) && b > 0
}

// Insights holds the labeled fields extracted from a model response
type Insights struct {
	BudgetRecommendation  string `json:"budgetRecommendation" yaml:"budget_recommendation"`
	ProductSuggestion     string `json:"productSuggestion" yaml:"product_suggestion"`
	HolidayRecommendation string `json:"holidayRecommendation" yaml:"holiday_recommendation"`
	GiftSuggestion        string `json:"giftSuggestion" yaml:"gift_suggestion"`
}

// Fields returns the four insights keyed by their wire names
func (i Insights) Fields() map[string]string {
	return map[string]string{
		"budgetRecommendation":  i.BudgetRecommendation,
		"productSuggestion":     i.ProductSuggestion,
		"holidayRecommendation": i.HolidayRecommendation,
		"giftSuggestion":        i.GiftSuggestion,
	}
}

// Message is an in-process request addressed to the Service
type Message struct {
	Action      string      `json:"action"`
	Budget      float64     `json:"budget,omitempty"`
	Preferences Preferences `json:"preferences"`
	CartItems   []CartItem  `json:"cartItems,omitempty"`
}

// InsightsRequest extracts the queued payload from a getInsights message
func (m Message) InsightsRequest() InsightsRequest {
	return InsightsRequest{Budget: m.Budget, Preferences: m.Preferences}
}

// Response is the reply to a Message. Exactly one of Response, Insights or
// Error is set for getInsights; Success is set for cart actions.
type Response struct {
	Success  *bool     `json:"success,omitempty"`
	Response string    `json:"response,omitempty"`
	Insights *Insights `json:"insights,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Failed reports whether the response carries an error
func (r Response) Failed() bool {
	return r.Error != ""
}

// InsightRecord is a stored model response
type InsightRecord struct {
	ID        int64           `json:"id" yaml:"id"`
	CreatedAt time.Time       `json:"created_at" yaml:"created_at"`
	Request   InsightsRequest `json:"request" yaml:"request"`
	Response  string          `json:"response" yaml:"response"`
	Insights  Insights        `json:"insights" yaml:"insights"`
}

// ParseCategories splits a comma separated category list, dropping blanks
func ParseCategories(input string) []string {
	var categories []string
	for _, c := range strings.Split(input, ",") {
		if c = strings.TrimSpace(c); c != "" {
			categories = append(categories, c)
		}
	}
	return categories
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

package internal

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// DefaultUserName is used when no name was scraped from the page
const DefaultUserName = "AMZ Shopper"

// ChatStep is the position in the conversation
type ChatStep int

const (
	StepUpdateCategories ChatStep = -2
	StepUpdateBudget     ChatStep = -1
	StepBudget           ChatStep = 0
	StepCategories       ChatStep = 1
	StepHoliday          ChatStep = 2
	StepGift             ChatStep = 3
	StepInsights         ChatStep = 4
	StepRestart          ChatStep = 5
)

// Asker sends a message and waits for its reply. *Service implements it.
type Asker interface {
	Ask(ctx context.Context, msg Message) Response
}

// Chat collects a budget and preferences over several turns and requests
// insights once the set is complete. Every method returns the bot's replies.
type Chat struct {
	store KeyValueStore
	asker Asker

	step        ChatStep
	userName    string
	budget      float64
	preferences Preferences
}

// NewChat creates a conversation backed by store
func NewChat(store KeyValueStore, asker Asker) *Chat {
	return &Chat{store: store, asker: asker, userName: DefaultUserName}
}

// Step returns the current conversation step
func (c *Chat) Step() ChatStep {
	return c.step
}

// Start loads saved state and returns the opening messages
func (c *Chat) Start(ctx context.Context) []string {
	var started bool
	c.load(ctx, KeyUserName, &c.userName)
	c.load(ctx, KeySessionStarted, &started)
	c.load(ctx, KeyBudget, &c.budget)
	c.load(ctx, KeyPreferences, &c.preferences)
	if c.userName == "" {
		c.userName = DefaultUserName
	}

	if !started {
		c.save(ctx, map[string]interface{}{KeySessionStarted: true})
		return c.greet()
	}
	if c.budget > 0 {
		return []string{
			fmt.Sprintf("Welcome back, %s! Your current budget is $%s.", c.userName, formatBudget(c.budget)),
			c.askToUpdateBudget(),
		}
	}
	return c.greet()
}

// Handle processes one line of user input
func (c *Chat) Handle(ctx context.Context, input string) []string {
	msg := strings.ToLower(strings.TrimSpace(input))
	if msg == "" {
		LogDebug("Empty input. Ignoring.")
		return nil
	}

	switch c.step {
	case StepUpdateBudget:
		return c.handleBudgetUpdate(ctx, msg)
	case StepUpdateCategories:
		return c.handleCategoryUpdate(ctx, msg)
	case StepBudget:
		return c.handleBudgetEntry(ctx, msg)
	case StepCategories:
		return c.handleCategoryEntry(ctx, msg)
	case StepHoliday:
		return c.handleYesNo(ctx, msg, "holiday shopping", &c.preferences.HolidaySeason, StepGift, "Are you shopping for a gift? (yes/no)")
	case StepGift:
		out := c.handleYesNo(ctx, msg, "gift shopping", &c.preferences.GiftShopping, StepInsights, "")
		if c.step == StepInsights {
			out = append(out, c.askForInsights(ctx)...)
		}
		return out
	case StepInsights:
		return c.askForInsights(ctx)
	case StepRestart:
		return c.handleRestart(ctx, msg)
	default:
		return []string{"Sorry, I didn't understand that."}
	}
}

func (c *Chat) greet() []string {
	out := []string{fmt.Sprintf("Hey %s! This is ShopSavvy Nano!  Please enter your current budget.", c.userName)}
	if c.userName == DefaultUserName {
		out = append(out, "Looks like I didn't catch your name! Please ensure you are logged in and refresh the current page.")
	}
	c.step = StepBudget
	return out
}

func (c *Chat) askToUpdateBudget() string {
	c.step = StepUpdateBudget
	return "Would you like to update your budget? Type 'yes' to update or 'no' to continue with the current budget."
}

func (c *Chat) askToUpdateCategories() string {
	c.step = StepUpdateCategories
	return "Would you like to update your preferred categories? Type 'yes' to update or 'no' to continue with the current settings."
}

func (c *Chat) handleBudgetUpdate(ctx context.Context, msg string) []string {
	switch msg {
	case "yes":
		c.reset(ctx)
		return []string{"Let's start over. Please enter your new budget:"}
	case "no":
		return []string{"Great! Continuing with the current budget.", c.askToUpdateCategories()}
	default:
		return []string{"Please type 'yes' to update or 'no' to continue."}
	}
}

func (c *Chat) handleCategoryUpdate(ctx context.Context, msg string) []string {
	switch msg {
	case "yes":
		c.step = StepCategories
		return []string{"Please enter your preferred categories (you can enter multiple categories separated by commas):"}
	case "no":
		out := []string{"Great! Continuing with the current categories."}
		if len(c.preferences.PreferredCategories) > 0 {
			return append(out, c.askForInsights(ctx)...)
		}
		c.step = StepCategories
		return append(out, "Now, please enter your preferred categories (you can enter multiple categories separated by commas).")
	default:
		return []string{"Please type 'yes' to update or 'no' to continue."}
	}
}

func (c *Chat) handleBudgetEntry(ctx context.Context, msg string) []string {
	budget, err := strconv.ParseFloat(strings.TrimPrefix(msg, "$"), 64)
	if err != nil || !ValidBudget(budget) {
		return []string{"Please enter a valid budget."}
	}
	c.budget = budget
	c.save(ctx, map[string]interface{}{KeyBudget: budget})
	c.step = StepCategories
	return []string{
		fmt.Sprintf("I've set your shopping budget to $%.2f.", budget),
		"Now, please enter your preferred categories (you can enter multiple categories separated by commas).",
	}
}

func (c *Chat) handleCategoryEntry(ctx context.Context, msg string) []string {
	categories := ParseCategories(msg)
	if len(categories) == 0 {
		return []string{"Please enter one or more categories."}
	}
	c.preferences.PreferredCategories = categories
	c.save(ctx, map[string]interface{}{KeyPreferences: c.preferences})
	c.step = StepHoliday
	return []string{
		fmt.Sprintf("Categories set to: %s", strings.Join(categories, ", ")),
		"Are you shopping for a holiday? (yes/no)",
	}
}

func (c *Chat) handleYesNo(ctx context.Context, msg, topic string, field **bool, next ChatStep, followUp string) []string {
	if msg != "yes" && msg != "no" {
		return []string{fmt.Sprintf("Please enter 'yes' or 'no' for %s.", topic)}
	}
	answer := msg == "yes"
	*field = &answer
	c.save(ctx, map[string]interface{}{KeyPreferences: c.preferences})
	c.step = next

	label := "No"
	if answer {
		label = "Yes"
	}
	out := []string{fmt.Sprintf("%s%s: %s", strings.ToUpper(topic[:1]), topic[1:], label)}
	if followUp != "" {
		out = append(out, followUp)
	}
	return out
}

func (c *Chat) askForInsights(ctx context.Context) []string {
	c.step = StepInsights
	out := []string{"Generating shopping insights based on your preferences. Please wait..."}

	resp := c.asker.Ask(ctx, Message{
		Action:      ActionGetInsights,
		Budget:      c.budget,
		Preferences: c.preferences,
	})
	out = append(out, FormatResponse(resp)...)

	c.step = StepRestart
	return append(out, "Would you like to perform another search? Type 'yes' or 'no'.")
}

func (c *Chat) handleRestart(ctx context.Context, msg string) []string {
	switch msg {
	case "yes":
		c.reset(ctx)
		return []string{"Let's start over. Please enter your new budget:"}
	case "no":
		return []string{"Okay, let me know if you need further assistance!"}
	default:
		return []string{"Please type 'yes' to start a new search or 'no' to end."}
	}
}

func (c *Chat) reset(ctx context.Context) {
	c.budget = 0
	c.preferences = Preferences{PreferredCategories: []string{}}
	c.save(ctx, map[string]interface{}{KeyBudget: nil, KeyPreferences: c.preferences})
	c.step = StepBudget
}

// FormatResponse renders a getInsights reply as chat lines
func FormatResponse(resp Response) []string {
	switch {
	case resp.Failed():
		return []string{"Error: " + resp.Error}
	case resp.Insights != nil:
		return []string{
			"ShopSavvy Nano's Insights:",
			"Budget Recommendation: " + resp.Insights.BudgetRecommendation,
			"Product Suggestions: " + resp.Insights.ProductSuggestion,
			"Holiday Recommendations: " + resp.Insights.HolidayRecommendation,
			"Gift Suggestions: " + resp.Insights.GiftSuggestion,
		}
	case resp.Response != "":
		return append([]string{"ShopSavvy Nano's Insights:"}, Segments(resp.Response)...)
	default:
		return []string{"No insights available."}
	}
}

func (c *Chat) load(ctx context.Context, key string, v interface{}) {
	if _, err := getJSON(ctx, c.store, key, v); err != nil {
		LogWarn("Failed to load %s: %v", key, err)
	}
}

func (c *Chat) save(ctx context.Context, values map[string]interface{}) {
	if err := c.store.Set(ctx, values); err != nil {
		LogError("Failed to save chat state: %v", err)
	}
}

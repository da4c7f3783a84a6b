package internal

import (
	"context"
	"errors"
	"fmt"
)

// ResponseMode selects the shape of a successful getInsights reply
type ResponseMode string

const (
	// ResponseRaw replies with the model text as-is
	ResponseRaw ResponseMode = "raw"
	// ResponseLabeled replies with the four extracted insights
	ResponseLabeled ResponseMode = "labeled"
)

// ParseResponseMode validates a config value
func ParseResponseMode(s string) (ResponseMode, error) {
	switch ResponseMode(s) {
	case "", ResponseRaw:
		return ResponseRaw, nil
	case ResponseLabeled:
		return ResponseLabeled, nil
	default:
		return "", fmt.Errorf("unsupported response mode: %s (supported: raw, labeled)", s)
	}
}

// CartSource produces fresh cart items, e.g. by scraping a page
type CartSource interface {
	FetchCart(ctx context.Context) ([]CartItem, error)
}

// InsightStore is the storage the Service needs
type InsightStore interface {
	KeyValueStore
	AppendInsight(ctx context.Context, req InsightsRequest, response string) (int64, error)
}

// Service dispatches in-process messages: insights go through the queue, cart
// updates go to the store.
type Service struct {
	queue *RequestQueue
	store InsightStore
	mode  ResponseMode
	cart  CartSource
}

// NewService wires a Service. cart may be nil when refreshing is unsupported.
func NewService(queue *RequestQueue, store InsightStore, mode ResponseMode, cart CartSource) *Service {
	if mode == "" {
		mode = ResponseRaw
	}
	return &Service{queue: queue, store: store, mode: mode, cart: cart}
}

// Handle processes msg and calls reply exactly once. For getInsights the
// reply arrives asynchronously after the queued task finishes.
func (s *Service) Handle(ctx context.Context, msg Message, reply func(Response)) {
	switch msg.Action {
	case ActionGetInsights:
		LogInfo("Received request to generate insights: budget=%v categories=%v",
			msg.Budget, msg.Preferences.PreferredCategories)
		s.GetInsights(ctx, msg.InsightsRequest(), reply)

	case ActionUpdateCart:
		reply(s.updateCart(ctx, msg.CartItems))

	case ActionRefreshCartData:
		reply(s.refreshCart(ctx))

	default:
		LogWarn("Unknown action received: %s", msg.Action)
		reply(Response{Error: "Unknown action"})
	}
}

// GetInsights validates req and enqueues it
func (s *Service) GetInsights(ctx context.Context, req InsightsRequest, reply func(Response)) {
	if err := req.Validate(); err != nil {
		reply(Response{Error: err.Error()})
		return
	}

	s.queue.Enqueue(Task{
		Request: req,
		Done: func(res Result) {
			reply(s.complete(ctx, req, res))
		},
	})
}

// Ask sends msg and waits for the reply
func (s *Service) Ask(ctx context.Context, msg Message) Response {
	done := make(chan Response, 1)
	s.Handle(ctx, msg, func(r Response) { done <- r })
	select {
	case r := <-done:
		return r
	case <-ctx.Done():
		return Response{Error: ctx.Err().Error()}
	}
}

func (s *Service) complete(ctx context.Context, req InsightsRequest, res Result) Response {
	if res.Err != nil {
		return Response{Error: userMessage(res.Err)}
	}

	if err := s.store.Set(ctx, map[string]interface{}{KeyInsightsResponse: res.Response}); err != nil {
		LogError("Error storing insights: %v", err)
	}
	if id, err := s.store.AppendInsight(ctx, req, res.Response); err != nil {
		LogError("Error recording insights history: %v", err)
	} else {
		LogDebug("Insights stored as record %d", id)
	}

	if s.mode == ResponseLabeled {
		insights := ExtractFields(res.Response)
		return Response{Insights: &insights}
	}
	return Response{Response: res.Response}
}

func (s *Service) updateCart(ctx context.Context, items []CartItem) Response {
	if len(items) == 0 {
		LogError("No cart items provided in updateCart action.")
		return Response{Success: BoolPtr(false), Error: "Cart items are missing."}
	}
	if err := s.store.Set(ctx, map[string]interface{}{KeyCartItems: items}); err != nil {
		LogError("Error storing cart items: %v", err)
		return Response{Success: BoolPtr(false), Error: err.Error()}
	}
	LogInfo("Cart items successfully stored: %d item(s)", len(items))
	return Response{Success: BoolPtr(true)}
}

func (s *Service) refreshCart(ctx context.Context) Response {
	if s.cart == nil {
		return Response{Success: BoolPtr(false), Error: "No cart page source configured."}
	}
	items, err := s.cart.FetchCart(ctx)
	if err != nil {
		LogWarn("Failed to refresh cart data: %v", err)
		return Response{Success: BoolPtr(false), Error: err.Error()}
	}
	return s.updateCart(ctx, items)
}

// userMessage turns a terminal queue error into the text shown to the user
func userMessage(err error) string {
	var exhausted *RetriesExhaustedError
	if errors.As(err, &exhausted) {
		if errors.Is(err, ErrModelUnavailable) {
			return fmt.Sprintf("Language model unavailable after %d attempts. Please try again later.", exhausted.Attempts)
		}
		return fmt.Sprintf("Failed to generate insights after %d attempts. Please try again later.", exhausted.Attempts)
	}
	return err.Error()
}

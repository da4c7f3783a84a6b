package internal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"
)

func TestShowProgress(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		message string
		fn      func() error
		wantErr bool
	}{
		{
			name:    "successful function",
			message: "Generating insights",
			fn: func() error {
				return nil
			},
			wantErr: false,
		},
		{
			name:    "function with error",
			message: "Generating insights",
			fn: func() error {
				return errors.New("test error")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ShowProgress(ctx, tt.message, tt.fn)
			if (err != nil) != tt.wantErr {
				t.Errorf("ShowProgress() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestShowProgress_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := ShowProgress(ctx, "Waiting", func() error {
		time.Sleep(500 * time.Millisecond)
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("ShowProgress() error = %v, want deadline exceeded", err)
	}
}

func TestShowProgressWithSteps(t *testing.T) {
	var ran []string
	steps := []ProgressStep{
		{Message: "Fetching cart page", Fn: func() error { ran = append(ran, "fetch"); return nil }},
		{Message: "Storing cart items", Fn: func() error { ran = append(ran, "store"); return errors.New("disk full") }},
		{Message: "Never", Fn: func() error { ran = append(ran, "never"); return nil }},
	}

	err := ShowProgressWithSteps(context.Background(), steps)
	if err == nil || !strings.Contains(err.Error(), "Storing cart items") {
		t.Fatalf("ShowProgressWithSteps() error = %v", err)
	}
	if strings.Join(ran, ",") != "fetch,store" {
		t.Errorf("unexpected steps run: %v", ran)
	}
}

func TestShowProgressSimple_Output(t *testing.T) {
	var buf bytes.Buffer
	err := showProgressSimple(context.Background(), &buf, "Working", func() error {
		time.Sleep(150 * time.Millisecond)
		return nil
	})
	if err != nil {
		t.Fatalf("showProgressSimple() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "✓") || !strings.HasSuffix(out, "Working\n") {
		t.Errorf("unexpected spinner output: %q", out)
	}

	buf.Reset()
	err = showProgressSimple(context.Background(), &buf, "Failing", func() error { return errors.New("nope") })
	if err == nil || !strings.Contains(buf.String(), "✗") {
		t.Errorf("expected failure mark, got %q (err %v)", buf.String(), err)
	}
}

func TestRenderInsights(t *testing.T) {
	var buf bytes.Buffer
	RenderInsights(&buf, Insights{
		BudgetRecommendation:  "spend $40",
		ProductSuggestion:     "USB cable, $10",
		HolidayRecommendation: Placeholder,
		GiftSuggestion:        Placeholder,
	})
	want := "Budget Recommendation: spend $40\n" +
		"Product Suggestions: USB cable, $10\n" +
		"Holiday Recommendations: N/A\n" +
		"Gift Suggestions: N/A\n"
	if buf.String() != want {
		t.Errorf("RenderInsights() = %q, want %q", buf.String(), want)
	}
}

func TestPrintError_PlainOutsideTerminal(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	orig := os.Stderr
	os.Stderr = w
	defer func() { os.Stderr = orig }()

	PrintError("Error: insight not found: 9")
	_ = w.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(out) != "Error: insight not found: 9\n" {
		t.Errorf("PrintError() wrote %q", out)
	}
}

func TestPrintHelpers(t *testing.T) {
	// Smoke test: none of these may panic outside a terminal.
	PrintSuccess("ok")
	PrintError("bad")
	PrintInfo("info")
	PrintWarning("careful")
}

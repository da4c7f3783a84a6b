package internal

import (
	"time"
)

// CreateTestInsightRecord creates a stored insight with sample data
func CreateTestInsightRecord(id int64) *InsightRecord {
	response := "Budget recommendation: Spend about $40 of your $50 budget.\n" +
		"Product suggestions: USB cable, $10\n" +
		"Holiday-specific recommendations: LED string lights for the season\n" +
		"Gift suggestions: Kindle case"
	return &InsightRecord{
		ID:        id,
		CreatedAt: time.Date(2024, 12, 1, 10, 30, 0, 0, time.UTC),
		Request: InsightsRequest{
			Budget: 50,
			Preferences: Preferences{
				PreferredCategories: []string{"electronics", "books"},
				HolidaySeason:       BoolPtr(true),
				GiftShopping:        BoolPtr(false),
			},
		},
		Response: response,
		Insights: ExtractFields(response),
	}
}

// CreateTestInsightRecordWithResponse creates a stored insight with a custom response
func CreateTestInsightRecordWithResponse(id int64, response string) *InsightRecord {
	rec := CreateTestInsightRecord(id)
	rec.Response = response
	rec.Insights = ExtractFields(response)
	return rec
}

package reporting

import "time"

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// IntakeSummaryRequest requests aggregated intake metrics for a time range.

type IntakeSummaryRequest struct {
	Range TimeRange `json:"range"`
}

// IntakeSummary aggregates call sessions for the reporting portal: how many
// calls came in, how they ended, what callers wanted, and how many intakes
// ran to a confirmed recap.

type IntakeSummary struct {
	TotalCalls      int `json:"total_calls"`
	HandledCalls    int `json:"handled_calls"`
	CompletedCalls  int `json:"completed_calls"`
	FailedCalls     int `json:"failed_calls"`
	NoAnswerCalls   int `json:"no_answer_calls"`
	BusyCalls       int `json:"busy_calls"`
	InProgressCalls int `json:"in_progress_calls"`

	// CompletedIntakes counts conversations that reached the done state.
	CompletedIntakes int `json:"completed_intakes"`
	RecapsSent       int `json:"recaps_sent"`

	CallsByIntent map[string]int `json:"calls_by_intent"`

	TotalDurationSeconds   int `json:"total_duration_seconds"`
	AverageDurationSeconds int `json:"average_duration_seconds"`
}

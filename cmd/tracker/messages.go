package main

import "github.com/rxtech-lab/ohlc-tracker/pkg/batch"

// ProgressMsg reports that completed of total symbols have been fetched.
type ProgressMsg struct {
	Completed int
	Total     int
}

// FetchDoneMsg carries the finished batch.
type FetchDoneMsg struct {
	Report *batch.Report
	Err    error
}

// SavedMsg signals that the workbook was written to Path.
type SavedMsg struct {
	Path string
	Err  error
}

package models

import "time"

// TransferRequest optionally selects the class of a zone transfer.
type TransferRequest struct {
	Class string `json:"class"`
}

// TransferSummary describes one archived zone transfer.
type TransferSummary struct {
	ID          int64     `json:"id"`
	Zone        string    `json:"zone"`
	Class       string    `json:"class"`
	Server      string    `json:"server"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Serial      uint32    `json:"serial"`
	RecordCount int       `json:"record_count"`
	Complete    bool      `json:"complete"`
	Error       string    `json:"error,omitempty"`
}

// TransferListResponse contains a list of transfers.
type TransferListResponse struct {
	Transfers []TransferSummary `json:"transfers"`
	Count     int               `json:"count"`
}

// TransferDetailResponse is a transfer with its records.
type TransferDetailResponse struct {
	TransferSummary
	Records []RecordResponse `json:"records"`
}

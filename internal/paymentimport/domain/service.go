// Package domain defines the bank-registry import boundary: parsing
// uploaded CSV rows into draft payments matched against the plot registry
// for human review.
package domain

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/bwmarrin/snowflake"
	paymentdomain "github.com/sadovo/vznos/internal/payment/domain"
)

// MatchType records which registry attribute matched a row, in priority
// order: exact plot number, then normalized phone, then full name.
type MatchType string

const (
	MatchPlotNumber MatchType = "plot_number"
	MatchPhone      MatchType = "phone"
	MatchName       MatchType = "name"
	MatchNone       MatchType = "none"
)

// DraftRow is one parsed registry row awaiting confirmation.
type DraftRow struct {
	RowIndex      int           `json:"row_index"`
	PaidAt        time.Time     `json:"paid_at"`
	Amount        int64         `json:"amount"`
	RawPlot       string        `json:"raw_plot,omitempty"`
	RawName       string        `json:"raw_name,omitempty"`
	RawPhone      string        `json:"raw_phone,omitempty"`
	Comment       string        `json:"comment,omitempty"`
	ExternalID    string        `json:"external_id,omitempty"`
	RawRowHash    string        `json:"raw_row_hash"`
	MatchedPlotID *snowflake.ID `json:"matched_plot_id,omitempty"`
	MatchType     MatchType     `json:"match_type"`
	// AlreadyImported flags rows whose hash landed in a previous upload.
	AlreadyImported bool `json:"already_imported"`
}

// RowError reports a row that could not be parsed.
type RowError struct {
	RowIndex int    `json:"row_index"`
	Message  string `json:"message"`
}

type ParseResult struct {
	Rows   []DraftRow `json:"rows"`
	Errors []RowError `json:"errors,omitempty"`
}

type ConfirmRowRequest struct {
	PlotID     string
	PaidAt     time.Time
	Amount     int64
	ExternalID string
	RawRowHash string
	Comment    string
}

type Service interface {
	// ParseAndMatch reads registry CSV and produces draft rows with
	// match candidates; it creates nothing.
	ParseAndMatch(ctx context.Context, r io.Reader) (ParseResult, error)
	// ConfirmRow lands one reviewed draft as an import-sourced payment.
	ConfirmRow(ctx context.Context, req ConfirmRowRequest) (paymentdomain.Payment, error)
}

var (
	ErrEmptyFile      = errors.New("empty_import_file")
	ErrMissingColumns = errors.New("missing_required_columns")
)

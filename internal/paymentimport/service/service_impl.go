package service

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	obsmetrics "github.com/sadovo/vznos/internal/observability/metrics"
	"github.com/sadovo/vznos/internal/paymentimport/domain"
	paymentdomain "github.com/sadovo/vznos/internal/payment/domain"
	plotdomain "github.com/sadovo/vznos/internal/plot/domain"
	plotservice "github.com/sadovo/vznos/internal/plot/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	PlotRepo    plotdomain.Repository
	PaymentRepo paymentdomain.Repository
	PaymentSvc  paymentdomain.Service
	Metrics     *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	plotRepo    plotdomain.Repository
	paymentRepo paymentdomain.Repository
	paymentSvc  paymentdomain.Service
	metrics     *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("paymentimport.service"),
		plotRepo:    p.PlotRepo,
		paymentRepo: p.PaymentRepo,
		paymentSvc:  p.PaymentSvc,
		metrics:     p.Metrics,
	}
}

// Expected header columns (registry exports vary in order):
// date, amount, plot, name, phone, purpose, external_id. Only date and
// amount are required.
var requiredColumns = []string{"date", "amount"}

func (s *Service) ParseAndMatch(ctx context.Context, r io.Reader) (domain.ParseResult, error) {
	buffered := bufio.NewReader(r)
	delimiter, err := detectDelimiter(buffered)
	if err != nil {
		return domain.ParseResult{}, domain.ErrEmptyFile
	}

	reader := csv.NewReader(buffered)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return domain.ParseResult{}, domain.ErrEmptyFile
	}
	columns := indexColumns(header)
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			return domain.ParseResult{}, domain.ErrMissingColumns
		}
	}

	result := domain.ParseResult{}
	rowIndex := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowIndex++
		if err != nil {
			result.Errors = append(result.Errors, domain.RowError{
				RowIndex: rowIndex,
				Message:  err.Error(),
			})
			continue
		}

		row, rowErr := s.parseRow(columns, record, rowIndex)
		if rowErr != nil {
			result.Errors = append(result.Errors, *rowErr)
			continue
		}

		s.matchRow(ctx, &row)

		existing, err := s.paymentRepo.FindByRawRowHash(ctx, s.db, row.RawRowHash)
		if err == nil && existing != nil {
			row.AlreadyImported = true
		}

		s.metrics.RecordImportRow(string(row.MatchType))
		result.Rows = append(result.Rows, row)
	}

	s.log.Info("import file parsed",
		zap.Int("rows", len(result.Rows)),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

func (s *Service) ConfirmRow(ctx context.Context, req domain.ConfirmRowRequest) (paymentdomain.Payment, error) {
	return s.paymentSvc.Create(ctx, paymentdomain.CreatePaymentRequest{
		PlotID:     req.PlotID,
		PaidAt:     req.PaidAt,
		Amount:     req.Amount,
		Source:     string(paymentdomain.PaymentSourceImport),
		ExternalID: req.ExternalID,
		RawRowHash: req.RawRowHash,
		Comment:    req.Comment,
	})
}

func (s *Service) parseRow(columns map[string]int, record []string, rowIndex int) (domain.DraftRow, *domain.RowError) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	paidAt, err := parseDate(field("date"))
	if err != nil {
		return domain.DraftRow{}, &domain.RowError{RowIndex: rowIndex, Message: fmt.Sprintf("bad date: %v", err)}
	}
	amount, err := parseAmount(field("amount"))
	if err != nil {
		return domain.DraftRow{}, &domain.RowError{RowIndex: rowIndex, Message: fmt.Sprintf("bad amount: %v", err)}
	}
	if amount <= 0 {
		return domain.DraftRow{}, &domain.RowError{RowIndex: rowIndex, Message: "amount must be positive"}
	}

	return domain.DraftRow{
		RowIndex:   rowIndex,
		PaidAt:     paidAt,
		Amount:     amount,
		RawPlot:    field("plot"),
		RawName:    field("name"),
		RawPhone:   field("phone"),
		Comment:    field("purpose"),
		ExternalID: field("external_id"),
		RawRowHash: hashRow(record),
		MatchType:  domain.MatchNone,
	}, nil
}

// matchRow resolves the draft against the registry in priority order:
// exact plot number, then normalized phone, then case-insensitive name.
func (s *Service) matchRow(ctx context.Context, row *domain.DraftRow) {
	if row.RawPlot != "" {
		if plot, err := s.plotRepo.FindByNumber(ctx, s.db, row.RawPlot); err == nil && plot != nil {
			row.MatchedPlotID = &plot.ID
			row.MatchType = domain.MatchPlotNumber
			return
		}
	}
	if phone := plotservice.NormalizePhone(row.RawPhone); phone != "" {
		if plot, err := s.plotRepo.FindByPhone(ctx, s.db, phone); err == nil && plot != nil {
			row.MatchedPlotID = &plot.ID
			row.MatchType = domain.MatchPhone
			return
		}
	}
	if row.RawName != "" {
		if plot, err := s.plotRepo.FindByOwnerName(ctx, s.db, row.RawName); err == nil && plot != nil {
			row.MatchedPlotID = &plot.ID
			row.MatchType = domain.MatchName
			return
		}
	}
}

func detectDelimiter(r *bufio.Reader) (rune, error) {
	peeked, err := r.Peek(512)
	if err != nil && len(peeked) == 0 {
		return 0, err
	}
	line := string(peeked)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';', nil
	}
	return ',', nil
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if key == "" {
			continue
		}
		columns[key] = i
	}
	return columns
}

var dateLayouts = []string{
	"02.01.2006",
	"2006-01-02",
	time.RFC3339,
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// parseAmount converts a ruble amount ("1500", "1500.50", "1 500,50")
// into kopecks.
func parseAmount(value string) (int64, error) {
	cleaned := strings.NewReplacer(" ", "", "\u00a0", "", ",", ".").Replace(value)
	if cleaned == "" {
		return 0, fmt.Errorf("empty amount")
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, err
	}
	return int64(parsed*100 + 0.5), nil
}

func hashRow(record []string) string {
	sum := sha256.Sum256([]byte(strings.Join(record, "|")))
	return hex.EncodeToString(sum[:])
}

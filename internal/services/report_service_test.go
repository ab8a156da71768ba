package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"revpulse/internal/analytics"
	apperrors "revpulse/internal/errors"
	"revpulse/internal/files"
	"revpulse/internal/ingest"
	"revpulse/internal/shared/testutil"
	"revpulse/pkg/contracts/domain"
)

func record(location, period, item, qty, amount string) domain.CanonicalRecord {
	d := time.Date(2025, time.Month(domain.MonthIndex(period)), 1, 0, 0, 0, 0, time.UTC)
	return domain.CanonicalRecord{
		Date:     &d,
		Item:     item,
		Quantity: decimal.NewNullDecimal(decimal.RequireFromString(qty)),
		Amount:   decimal.NewNullDecimal(decimal.RequireFromString(amount)),
		Location: location,
		Period:   period,
	}
}

func loadResult(records ...domain.CanonicalRecord) *ingest.LoadResult {
	return &ingest.LoadResult{
		Dataset:     analytics.Build(records),
		Fingerprint: "f00d",
		LoadedAt:    time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC),
		Sources: []ingest.SourceReport{
			{SourceInfo: ingest.SourceInfo{Name: "berko.jun.csv"}, Status: ingest.OutcomeOK, Records: len(records)},
		},
	}
}

func twoLocations() *ingest.LoadResult {
	return loadResult(
		record("Berkhamsted", "June", "PT Session", "1", "50.00"),
		record("Aylesbury", "June", "PT Session", "2", "90.00"),
		record("Aylesbury", "July", "Class Pass", "3", "30.00"),
	)
}

func newService(t *testing.T, provider DatasetProvider, opts ...ReportOption) (*ReportService, *testutil.BufferedSlogHandler) {
	logger, logs := testutil.NewTestLogger(t)
	return NewReportService(provider, logger, opts...), logs
}

func TestReportService_Report(t *testing.T) {
	provider := new(MockDatasetProvider)
	provider.On("Get", mock.Anything).Return(twoLocations(), nil)
	svc, _ := newService(t, provider)

	view, err := svc.Report(context.Background(), domain.FilterState{Periods: []string{"June"}})
	require.NoError(t, err)

	assert.False(t, view.Empty)
	assert.Empty(t, view.Message)
	assert.Equal(t, 2, view.Result.RecordCount)
	assert.True(t, decimal.RequireFromString("140").Equal(view.Result.TotalRevenue))
	assert.Equal(t, []string{"June", "July"}, view.Options.Periods, "options cover the whole dataset")
	assert.Equal(t, []string{"June"}, view.Filter.Periods)
	assert.False(t, view.GeneratedAt.IsZero())
	provider.AssertExpectations(t)
}

func TestReportService_Report_EmptyStates(t *testing.T) {
	tests := []struct {
		name    string
		result  *ingest.LoadResult
		filter  domain.FilterState
		message string
	}{
		{
			name:    "empty dataset",
			result:  loadResult(),
			message: MessageNoData,
		},
		{
			name:    "filter matches nothing",
			result:  twoLocations(),
			filter:  domain.FilterState{Locations: []string{}},
			message: MessageNoMatches,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := new(MockDatasetProvider)
			provider.On("Get", mock.Anything).Return(tt.result, nil)
			svc, _ := newService(t, provider)

			view, err := svc.Report(context.Background(), tt.filter)
			require.NoError(t, err)

			assert.True(t, view.Empty)
			assert.Equal(t, tt.message, view.Message)
			assert.True(t, view.Result.TotalRevenue.IsZero())
			assert.True(t, view.Result.AvgMonthlyRevenue.IsZero())
			assert.Empty(t, view.Result.RevenueByLocation)
		})
	}
}

func TestReportService_LoadErrorPropagates(t *testing.T) {
	loadErr := apperrors.NewConfigError("source Aylesbury (June) is blank", nil)
	provider := new(MockDatasetProvider)
	provider.On("Get", mock.Anything).Return(nil, loadErr)
	svc, _ := newService(t, provider)

	_, err := svc.Report(context.Background(), domain.DefaultFilter())
	assert.Same(t, loadErr, err)

	_, err = svc.Filters(context.Background())
	assert.Equal(t, apperrors.ErrTypeConfig, apperrors.TypeOf(err))

	_, err = svc.ExportCSV(context.Background(), &bytes.Buffer{}, domain.DefaultFilter())
	assert.Error(t, err)
}

func TestReportService_FiltersTransactionsSources(t *testing.T) {
	provider := new(MockDatasetProvider)
	provider.On("Get", mock.Anything).Return(twoLocations(), nil)
	svc, _ := newService(t, provider)
	ctx := context.Background()

	opts, err := svc.Filters(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Aylesbury", "Berkhamsted"}, opts.Locations)
	assert.Equal(t, []string{"Class Pass", "PT Session"}, opts.Items)

	txs, err := svc.Transactions(ctx, domain.FilterState{Locations: []string{"Aylesbury"}})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "June", txs[0].Period)
	assert.Equal(t, "July", txs[1].Period)

	srcs, err := svc.Sources(ctx)
	require.NoError(t, err)
	require.Len(t, srcs, 1)
	assert.Equal(t, "berko.jun.csv", srcs[0].Name)
}

func TestReportService_Reload(t *testing.T) {
	provider := new(MockDatasetProvider)
	provider.On("Reload", mock.Anything).Return(twoLocations(), nil)
	hub := new(MockBroadcaster)
	hub.On("Broadcast", "dataset:reloaded", mock.AnythingOfType("*services.ReloadSummary")).Return()
	svc, logs := newService(t, provider, WithBroadcaster(hub))

	summary, err := svc.Reload(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Records)
	assert.Equal(t, "f00d", summary.Fingerprint)
	hub.AssertExpectations(t)
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "dataset reloaded")
}

func TestReportService_ReloadFailureDoesNotBroadcast(t *testing.T) {
	provider := new(MockDatasetProvider)
	provider.On("Reload", mock.Anything).Return(nil, errors.New("scan directory data cannot be read"))
	hub := new(MockBroadcaster)
	svc, logs := newService(t, provider, WithBroadcaster(hub))

	_, err := svc.Reload(context.Background())
	require.Error(t, err)
	hub.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything)
	assert.True(t, logs.ContainsMessage("reload failed"))
}

func TestReportService_ReadyAndStats(t *testing.T) {
	provider := new(MockDatasetProvider)
	provider.On("Current").Return(nil).Once()
	provider.On("Stats").Return(ingest.CacheStats{Misses: 1, LastError: "boom"})
	svc, _ := newService(t, provider)

	ready, lastErr := svc.Ready()
	assert.False(t, ready)
	assert.Equal(t, "boom", lastErr)
	assert.EqualValues(t, 1, svc.CacheStats().Misses)

	provider.On("Current").Return(twoLocations())
	ready, _ = svc.Ready()
	assert.True(t, ready)
}

func TestReportService_ExportCSV(t *testing.T) {
	provider := new(MockDatasetProvider)
	provider.On("Get", mock.Anything).Return(twoLocations(), nil)
	svc, _ := newService(t, provider)

	var buf bytes.Buffer
	n, err := svc.ExportCSV(context.Background(), &buf, domain.FilterState{Locations: []string{"Berkhamsted"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Date", "Item", "Quantity Sold", "Amount Inc Tax", "location", "period"},
		{"2025-06-01", "PT Session", "1", "50", "Berkhamsted", "June"},
	}, rows)
}

func TestReportService_Export(t *testing.T) {
	provider := new(MockDatasetProvider)
	provider.On("Get", mock.Anything).Return(twoLocations(), nil)
	svc, _ := newService(t, provider)
	ctx := context.Background()

	var buf bytes.Buffer
	n, err := svc.Export(ctx, &buf, "XLSX", domain.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Revenue by Location")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	_, err = svc.Export(ctx, &bytes.Buffer{}, "pdf", domain.DefaultFilter())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReportService_ExportToFile(t *testing.T) {
	provider := new(MockDatasetProvider)
	provider.On("Get", mock.Anything).Return(twoLocations(), nil)
	svc, _ := newService(t, provider)
	dir := t.TempDir()

	path, n, err := svc.ExportToFile(context.Background(), files.NewManager(dir), ExportFileName(FormatCSV), FormatCSV, domain.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, filepath.Join(dir, "filtered_transactions.csv"), path)
	assert.FileExists(t, path)

	assert.Equal(t, "revenue_report.xlsx", ExportFileName("xlsx"))
}

package ingest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "revpulse/internal/errors"
	"revpulse/internal/shared/testutil"
	"revpulse/internal/sources"
	"revpulse/pkg/contracts/domain"
)

const missingQuantity = "Date,Item,Qty,Amount Inc Tax\n01/06/2025,PT Session,1,50\n"

func staticSource(location, period, text string) sources.RawSource {
	return sources.RawSource{
		ID:       "static:" + location + "/" + period,
		Strategy: sources.StrategyStatic,
		Location: location,
		Period:   period,
		Format:   sources.FormatCSV,
		Data:     []byte(text),
	}
}

func scanSource(name, location, period, text string) sources.RawSource {
	return sources.RawSource{
		ID:       "/data/" + name,
		Strategy: sources.StrategyScan,
		Location: location,
		Period:   period,
		Format:   sources.FormatCSV,
		Data:     []byte(text),
	}
}

func TestProcess(t *testing.T) {
	tests := []struct {
		name     string
		src      sources.RawSource
		kind     OutcomeKind
		errType  apperrors.ErrorType
		nRecords int
	}{
		{
			name:     "static ok",
			src:      staticSource("Berkhamsted", "June", testutil.BerkhamstedJune),
			kind:     OutcomeOK,
			nRecords: 1,
		},
		{
			name:    "static schema failure is fatal",
			src:     staticSource("Berkhamsted", "June", missingQuantity),
			kind:    OutcomeFatal,
			errType: apperrors.ErrTypeSchema,
		},
		{
			name:    "scan schema failure is skippable",
			src:     scanSource("berko.jun.csv", "Berkhamsted", "June", missingQuantity),
			kind:    OutcomeSkippable,
			errType: apperrors.ErrTypeSchema,
		},
		{
			name:    "scan syntax failure is skippable",
			src:     scanSource("berko.jul.csv", "Berkhamsted", "July", "Date,Item,Quantity Sold,Amount Inc Tax\n\"broken,1,2,3\n"),
			kind:    OutcomeSkippable,
			errType: apperrors.ErrTypeSyntax,
		},
		{
			name: "unreadable scan file is skippable",
			src: sources.RawSource{
				ID:       "/data/ayles.aug.csv",
				Strategy: sources.StrategyScan,
				ReadErr:  apperrors.NewStorageError("cannot read ayles.aug.csv", errors.New("permission denied")),
			},
			kind:    OutcomeSkippable,
			errType: apperrors.ErrTypeStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Process(tt.src)

			assert.Equal(t, tt.kind, o.Kind)
			assert.Len(t, o.Records, tt.nRecords)
			if tt.errType == "" {
				assert.NoError(t, o.Err)
				return
			}
			require.Error(t, o.Err)
			assert.Equal(t, tt.errType, apperrors.TypeOf(o.Err))
		})
	}
}

func TestProcess_ScenarioC(t *testing.T) {
	text := testutil.TransactionCSV(
		testutil.Row{"not-a-date", "PT Session", "1", "40"},
		testutil.Row{"not-a-date", "Class Pass", "2", "20"},
	)
	o := Process(scanSource("ayles.sep.25.csv", "Aylesbury", "", text))

	require.Equal(t, OutcomeOK, o.Kind)
	require.Len(t, o.Records, 2)
	for _, r := range o.Records {
		assert.Empty(t, r.Period)
		assert.Nil(t, r.Date)
	}
	assert.Equal(t, 2, o.Stats.NullPeriods)
}

func TestReduce(t *testing.T) {
	ok1 := Outcome{Kind: OutcomeOK, Records: []domain.CanonicalRecord{{Item: "a"}}}
	ok2 := Outcome{Kind: OutcomeOK, Records: []domain.CanonicalRecord{{Item: "b"}, {Item: "c"}}}
	skip := Outcome{Kind: OutcomeSkippable, Err: errors.New("bad file")}
	fatal := Outcome{Kind: OutcomeFatal, Err: apperrors.NewConfigError("source Aylesbury (June) is blank", nil)}

	batches, err := Reduce([]Outcome{ok1, skip, ok2})
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "a", batches[0][0].Item)
	assert.Len(t, batches[1], 2)

	batches, err = Reduce([]Outcome{ok1, fatal, ok2, skip})
	assert.Nil(t, batches)
	assert.Equal(t, fatal.Err, err)

	batches, err = Reduce(nil)
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestOutcome_Report(t *testing.T) {
	o := Process(scanSource("berko.jun.csv", "Berkhamsted", "June", missingQuantity))
	r := o.Report()

	assert.Equal(t, "berko.jun.csv", r.Name)
	assert.Equal(t, OutcomeSkippable, r.Status)
	assert.Contains(t, r.Error, "Quantity Sold")
	assert.Zero(t, r.Records)
}

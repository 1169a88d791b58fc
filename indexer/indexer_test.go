package indexer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/mapping"
	"github.com/rflorenc/azure-search-workbench/wire"
)

func TestNew_Defaults(t *testing.T) {
	ix, err := New("docs-indexer", "docs-blob", "docs")
	require.NoError(t, err)

	d := ix.ToDict()
	assert.Equal(t, "docs-indexer", d["name"])
	assert.Equal(t, "docs-blob", d["dataSourceName"])
	assert.Equal(t, "docs", d["targetIndexName"])
	assert.Equal(t, false, d["disabled"])
	assert.NotContains(t, d, "skillsetName")
	assert.NotContains(t, d, "schedule")
	assert.Equal(t, map[string]any{
		"maxFailedItems":         -1,
		"maxFailedItemsPerBatch": -1,
		"configuration": map[string]any{
			"parsingMode":   "default",
			"dataToExtract": "contentAndMetadata",
			"imageAction":   "generateNormalizedImages",
		},
	}, d["parameters"])
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name       string
		ixName     string
		dataSource string
		target     string
		opts       []Option
		wantErr    string
	}{
		{name: "missing name", dataSource: "ds", target: "idx", wantErr: "name is required"},
		{name: "missing data source", ixName: "ix", target: "idx", wantErr: "data source name"},
		{name: "missing target", ixName: "ix", dataSource: "ds", wantErr: "target index name"},
		{
			name: "bad mapping", ixName: "ix", dataSource: "ds", target: "idx",
			opts:    []Option{WithFieldMappings(mapping.FieldMapping{TargetFieldName: "x"})},
			wantErr: "source field name",
		},
		{
			name: "bad schedule", ixName: "ix", dataSource: "ds", target: "idx",
			opts:    []Option{WithSchedule(&Schedule{Interval: "PT1M"})},
			wantErr: "must be between",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.ixName, tt.dataSource, tt.target, tt.opts...)
			require.Error(t, err)
			assert.True(t, faults.IsValidation(err))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"PT5M", 5 * time.Minute, true},
		{"PT2H", 2 * time.Hour, true},
		{"PT1H30M", 90 * time.Minute, true},
		{"P1D", 24 * time.Hour, true},
		{"P", 0, false},
		{"PT", 0, false},
		{"5m", 0, false},
		{"PT5S", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInterval(tt.in)
			if !tt.ok {
				assert.True(t, faults.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSchedule_Bounds(t *testing.T) {
	_, err := NewSchedule("PT4M", nil)
	assert.Error(t, err)
	_, err = NewSchedule("P1DT1M", nil)
	assert.Error(t, err)

	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	s, err := NewSchedule("P1D", &start)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"interval": "P1D", "startTime": "2024-03-01T08:00:00Z"}, s.ToDict())
}

func TestSchedule_KeepsFractionalSeconds(t *testing.T) {
	start := time.Date(2024, 3, 1, 8, 0, 0, 250_000_000, time.UTC)
	s, err := NewSchedule("PT5M", &start)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T08:00:00.25Z", s.ToDict()["startTime"])

	got, err := LoadSchedule(s.ToDict())
	require.NoError(t, err)
	assert.True(t, start.Equal(*got.StartTime), got.StartTime)
}

func TestLoad_RoundTrip(t *testing.T) {
	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	sched, err := NewSchedule("PT15M", &start)
	require.NoError(t, err)
	batch := 50

	ix, err := New("docs-indexer", "docs-blob", "docs",
		WithDescription("nightly"),
		WithSkillset("docs-skills"),
		WithFieldMappings(mapping.New("metadata_storage_path", "id").
			WithFunction(mapping.Base64Encode, nil)),
		WithOutputFieldMappings(mapping.New("/document/pages/*/keyPhrases/*", "keyphrases")),
		WithSchedule(sched),
		WithParameters(&Parameters{BatchSize: &batch, Configuration: map[string]any{"parsingMode": "json"}}),
		WithParams(wire.Params{"encryption_key": map[string]any{"keyVaultKeyName": "k"}}),
	)
	require.NoError(t, err)

	raw, err := wire.ToJSON(ix)
	require.NoError(t, err)
	got, err := Load(raw)
	require.NoError(t, err)

	assert.Equal(t, "docs-skills", got.SkillsetName)
	require.Len(t, got.FieldMappings, 1)
	assert.Equal(t, mapping.Base64Encode, got.FieldMappings[0].Function.Name)
	require.NotNil(t, got.Schedule)
	assert.True(t, start.Equal(*got.Schedule.StartTime))
	assert.Equal(t, 50, *got.Parameters.BatchSize)
	assert.Nil(t, got.Parameters.MaxFailedItems)
	assert.Contains(t, got.Params, "encryption_key")

	again, err := wire.ToJSON(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(again))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(`[]`)
	assert.True(t, faults.IsParse(err))

	_, err = Load(`{"name":"ix","dataSourceName":"ds","targetIndexName":"idx","schedule":{"interval":"PT1M"}}`)
	assert.True(t, faults.IsValidation(err))

	_, err = Load(`{"name":"ix","dataSourceName":"ds","targetIndexName":"idx","disabled":"no"}`)
	assert.True(t, faults.IsValidation(err))
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus(`{
		"status": "running",
		"lastResult": {
			"status": "inProgress",
			"errorMessage": null,
			"startTime": "2024-03-01T08:00:00.123Z",
			"endTime": null,
			"itemsProcessed": 3,
			"itemsFailed": 0,
			"errors": [],
			"warnings": []
		},
		"executionHistory": [
			{"status": "transientFailure", "errorMessage": "boom", "itemsProcessed": 1, "itemsFailed": 1,
			 "errors": [{"key": "doc1", "errorMessage": "bad"}]},
			{"status": "success", "itemsProcessed": 10, "itemsFailed": 0}
		],
		"limits": {"maxRunTime": "PT2H"}
	}`)
	require.NoError(t, err)

	assert.Equal(t, StatusRunning, st.Status)
	require.NotNil(t, st.LastResult)
	assert.False(t, st.Idle())
	assert.Equal(t, 3, st.LastResult.ItemsProcessed)
	assert.Nil(t, st.LastResult.EndTime)
	require.Len(t, st.ExecutionHistory, 2)
	assert.True(t, st.ExecutionHistory[0].Failed())
	assert.Equal(t, "bad", st.ExecutionHistory[0].Errors[0]["errorMessage"])
	assert.True(t, st.ExecutionHistory[1].Finished())
	assert.False(t, st.ExecutionHistory[1].Failed())
	assert.Equal(t, "PT2H", st.Limits["maxRunTime"])
}

func TestParseStatus_NeverRun(t *testing.T) {
	st, err := ParseStatus(map[string]any{"status": "running", "lastResult": nil, "executionHistory": []any{}})
	require.NoError(t, err)
	assert.True(t, st.Idle())
	assert.Empty(t, st.ExecutionHistory)
}

func TestStatus_FinishedAfter(t *testing.T) {
	prev := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	later := prev.Add(time.Millisecond)
	tests := []struct {
		name string
		last *ExecutionResult
		prev *time.Time
		want bool
	}{
		{"never run", nil, nil, false},
		{"any finished run", &ExecutionResult{Status: ResultSuccess}, nil, true},
		{"same run", &ExecutionResult{Status: ResultSuccess, StartTime: &prev}, &prev, false},
		{"newer run in progress", &ExecutionResult{Status: ResultInProgress, StartTime: &later}, &prev, false},
		{"newer run finished", &ExecutionResult{Status: ResultTransientFailure, StartTime: &later}, &prev, true},
		{"no start time", &ExecutionResult{Status: ResultSuccess}, &prev, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &Status{LastResult: tt.last}
			assert.Equal(t, tt.want, st.FinishedAfter(tt.prev))
		})
	}
}

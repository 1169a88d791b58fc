package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rflorenc/azure-search-workbench/faults"
)

func TestFieldMapping_ToDict(t *testing.T) {
	m := New("metadata_storage_path", "id").WithFunction(Base64Encode, nil)

	assert.Equal(t, map[string]any{
		"sourceFieldName": "metadata_storage_path",
		"targetFieldName": "id",
		"mappingFunction": map[string]any{"name": "base64Encode"},
	}, m.ToDict())
}

func TestFieldMapping_EmptyTargetDropped(t *testing.T) {
	d := New("content", "").ToDict()
	_, ok := d["targetFieldName"]
	assert.False(t, ok)
}

func TestLoad_RoundTrip(t *testing.T) {
	orig := New("/document/pages/*/keyPhrases/*", "keyphrases").
		WithFunction(ExtractTokenAtPos, map[string]any{"delimiter": " ", "position": float64(0)})

	got, err := Load(orig.ToDict())
	require.NoError(t, err)
	assert.Equal(t, orig.ToDict(), got.ToDict())
}

func TestLoad_FromJSON(t *testing.T) {
	m, err := Load(`{"sourceFieldName":"a","targetFieldName":"b","mappingFunction":{"name":"urlEncode"}}`)
	require.NoError(t, err)
	assert.Equal(t, "a", m.SourceFieldName)
	assert.Equal(t, URLEncode, m.Function.Name)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(`{"targetFieldName":"b"}`)
	assert.True(t, faults.IsValidation(err))

	_, err = Load(`["a"]`)
	assert.True(t, faults.IsParse(err))
}

func TestLoadAll(t *testing.T) {
	ms, err := LoadAll([]map[string]any{
		{"sourceFieldName": "a"},
		{"sourceFieldName": "b", "targetFieldName": "c"},
	})
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, "b -> c", ms[1].String())
}

package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/index"
	"github.com/rflorenc/azure-search-workbench/mapping"
)

func TestNewSkill_Validation(t *testing.T) {
	in := []SkillInput{{Name: "text", Source: "/document/content"}}
	out := []SkillOutput{{Name: "score", TargetName: "score"}}

	tests := []struct {
		name    string
		typ     string
		inputs  []SkillInput
		outputs []SkillOutput
	}{
		{"no outputs", TypeSentiment, in, nil},
		{"no type", "", in, out},
		{"input without source", TypeSentiment, []SkillInput{{Name: "text"}}, out},
		{"output without name", TypeSentiment, in, []SkillOutput{{TargetName: "x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSkill(tt.typ, tt.inputs, tt.outputs)
			require.Error(t, err)
			assert.True(t, faults.IsValidation(err))
		})
	}
}

func TestNewSkill_Defaults(t *testing.T) {
	s, err := NewSkill(TypeSentiment, nil, []SkillOutput{{Name: "score"}})
	require.NoError(t, err)

	assert.Equal(t, DefaultContext, s.Context)
	assert.Equal(t, "score", s.Outputs[0].TargetName)
	assert.Equal(t, map[string]any{
		"@odata.type": TypeSentiment,
		"context":     "/document",
		"outputs":     []map[string]any{{"name": "score", "targetName": "score"}},
	}, s.ToDict())
}

func TestSkillParameter_MapTo(t *testing.T) {
	kp, err := NewKeyPhraseExtractionSkill(WithContext("/document"))
	require.NoError(t, err)
	field, err := index.NewCollectionField("keyphrases")
	require.NoError(t, err)

	m := kp.KeyPhrases.MapTo(field)

	assert.Equal(t, mapping.New("/document/keyPhrases/*", "keyphrases"), m)
	assert.Equal(t, []mapping.FieldMapping{m}, kp.OutputFieldMappings())

	ss, err := NewSkillset("ss", []*Skill{kp.Skill})
	require.NoError(t, err)
	assert.Equal(t, []mapping.FieldMapping{m}, ss.OutputFieldMappings())
}

func TestSkillParameter_MapToUsesContext(t *testing.T) {
	kp, err := NewKeyPhraseExtractionSkill()
	require.NoError(t, err)
	field, err := index.NewCollectionField("phrases")
	require.NoError(t, err)

	m := kp.KeyPhrases.MapTo(field)
	assert.Equal(t, "/document/pages/*/keyPhrases/*", m.SourceFieldName)
}

func TestOutputFieldMappings_ReturnsCopy(t *testing.T) {
	ld, err := NewLanguageDetectionSkill()
	require.NoError(t, err)
	field, err := index.NewStringField("language")
	require.NoError(t, err)
	ld.LanguageCode.MapTo(field)

	got := ld.OutputFieldMappings()
	got[0].TargetFieldName = "changed"
	assert.Equal(t, "language", ld.OutputFieldMappings()[0].TargetFieldName)
}

func TestSetInputs_FromSkillParameters(t *testing.T) {
	split, err := NewSplitSkill()
	require.NoError(t, err)
	lang, err := NewLanguageDetectionSkill()
	require.NoError(t, err)
	kp, err := NewKeyPhraseExtractionSkill()
	require.NoError(t, err)

	kp.SetInputs(split.TextItems, lang.LanguageCode)

	text, ok := kp.Input("text")
	require.True(t, ok)
	assert.Equal(t, "/document/pages/*", text.Source)
	code, ok := kp.Input("languageCode")
	require.True(t, ok)
	assert.Equal(t, "/document/languageCode", code.Source)
	assert.Len(t, kp.Inputs, 2)

	kp.SetInputs(Path("/document/content"), nil)
	text, _ = kp.Input("text")
	assert.Equal(t, "/document/content", text.Source)
	assert.Len(t, kp.Inputs, 2)
}

func TestAddSource(t *testing.T) {
	split, err := NewSplitSkill()
	require.NoError(t, err)
	lang, err := NewLanguageDetectionSkill()
	require.NoError(t, err)
	target, err := NewSkill(TypeWebAPI, []SkillInput{{Name: "textItems", Source: "/document/old"}}, []SkillOutput{{Name: "out"}})
	require.NoError(t, err)

	target.AddSource(split.Skill)
	target.AddSource(lang.Skill, "languageCode")

	assert.Equal(t, []SkillInput{
		{Name: "textItems", Source: "/document/pages/*"},
		{Name: "languageCode", Source: "/document/languageCode"},
	}, target.Inputs)

	target.RemoveSource(split.Skill)
	assert.Equal(t, []SkillInput{{Name: "languageCode", Source: "/document/languageCode"}}, target.Inputs)

	assert.True(t, target.RemoveInput("languageCode"))
	assert.False(t, target.RemoveInput("languageCode"))
}

func TestDefaultOutputFieldMappings(t *testing.T) {
	split, err := NewSplitSkill()
	require.NoError(t, err)

	assert.Equal(t, []mapping.FieldMapping{mapping.New("/document/pages/*", "textItems")}, split.DefaultOutputFieldMappings())
}

func TestLoadSkill_RoundTrip(t *testing.T) {
	kp, err := NewKeyPhraseExtractionSkill(WithName("kp"), WithParams(map[string]any{"maxKeyPhraseCount": 10}))
	require.NoError(t, err)

	got, err := LoadSkill(kp.ToDict())
	require.NoError(t, err)

	assert.Equal(t, kp.ToDict(), got.ToDict())
	out, ok := got.Output("keyPhrases")
	require.True(t, ok)
	assert.True(t, out.ReturnsMultiple)
}

func TestLoadSkill_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown type", `{"@odata.type":"#Microsoft.Skills.Text.Nope","outputs":[{"name":"a","targetName":"a"}]}`},
		{"missing type", `{"outputs":[{"name":"a","targetName":"a"}]}`},
		{"missing outputs", `{"@odata.type":"#Microsoft.Skills.Text.SplitSkill","inputs":[]}`},
		{"inputs not objects", `{"@odata.type":"#Microsoft.Skills.Text.SplitSkill","inputs":["text"],"outputs":[{"name":"a"}]}`},
		{"outputs not a list", `{"@odata.type":"#Microsoft.Skills.Text.SplitSkill","outputs":{"name":"a"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSkill(tt.data)
			require.Error(t, err)
			assert.True(t, faults.IsValidation(err), "got %v", err)
		})
	}

	_, err := LoadSkill(`not json`)
	assert.True(t, faults.IsParse(err))
}

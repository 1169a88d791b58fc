package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/wire"
)

func TestNewSkillset_Validation(t *testing.T) {
	_, err := NewSkillset("ss", nil)
	require.Error(t, err)
	assert.True(t, faults.IsValidation(err))

	_, err = NewSkillset("ss", []*Skill{nil})
	assert.ErrorContains(t, err, "not a skill")

	sp, err := NewSplitSkill()
	require.NoError(t, err)
	_, err = NewSkillset("", []*Skill{sp.Skill})
	assert.True(t, faults.IsValidation(err))
}

func TestSkillset_CognitiveServices(t *testing.T) {
	sp, err := NewSplitSkill()
	require.NoError(t, err)

	ss, err := NewSkillset("demo", []*Skill{sp.Skill},
		WithSkillsetDescription("split pages"),
		WithCognitiveServicesKey("secret", "billing"))
	require.NoError(t, err)

	d := ss.ToDict()
	assert.Equal(t, map[string]any{
		"@odata.type": "#Microsoft.Azure.Search.CognitiveServicesByKey",
		"description": "billing",
		"key":         "secret",
	}, d["cognitiveServices"])
	assert.Equal(t, "split pages", d["description"])

	noKey, err := NewSkillset("demo", []*Skill{sp.Skill})
	require.NoError(t, err)
	assert.NotContains(t, noKey.ToDict(), "cognitiveServices")
}

func TestLoadSkillset_RoundTrip(t *testing.T) {
	sp, err := NewSplitSkill()
	require.NoError(t, err)
	kp, err := NewKeyPhraseExtractionSkill()
	require.NoError(t, err)
	kp.SetInputs(sp.TextItems, nil)

	ss, err := NewSkillset("demo", []*Skill{sp.Skill, kp.Skill}, WithCognitiveServicesKey("k", ""))
	require.NoError(t, err)
	raw, err := wire.ToJSON(ss)
	require.NoError(t, err)

	got, err := LoadSkillset(raw)
	require.NoError(t, err)
	require.Len(t, got.Skills, 2)
	assert.Equal(t, "k", got.CognitiveServicesKey)

	again, err := wire.ToJSON(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(again))
}

func TestLoadSkillset_PassesThroughOtherCognitiveServices(t *testing.T) {
	got, err := LoadSkillset(`{
		"name": "demo",
		"skills": [{"@odata.type": "#Microsoft.Skills.Text.SplitSkill", "outputs": [{"name": "textItems", "targetName": "pages"}]}],
		"cognitiveServices": {"@odata.type": "#Microsoft.Azure.Search.DefaultCognitiveServices"}
	}`)
	require.NoError(t, err)

	assert.Empty(t, got.CognitiveServicesKey)
	assert.Equal(t, map[string]any{"@odata.type": "#Microsoft.Azure.Search.DefaultCognitiveServices"},
		got.ToDict()["cognitiveServices"])
}

func TestLoadSkillset_MissingSkills(t *testing.T) {
	_, err := LoadSkillset(`{"name":"demo"}`)
	assert.True(t, faults.IsValidation(err))
}

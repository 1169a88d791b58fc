package skills

import (
	"fmt"

	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/mapping"
	"github.com/rflorenc/azure-search-workbench/wire"
)

// CognitiveServicesByKey is the @odata.type of a billed Cognitive Services
// attachment.
const CognitiveServicesByKey = "#Microsoft.Azure.Search.CognitiveServicesByKey"

// Skillset is an ordered collection of skills run by an indexer.
type Skillset struct {
	Name        string
	Description string
	Skills      []*Skill

	// CognitiveServicesKey attaches a billable Cognitive Services resource.
	CognitiveServicesKey         string
	CognitiveServicesDescription string

	Params wire.Params
}

type SkillsetOption func(*Skillset)

func WithSkillsetDescription(d string) SkillsetOption {
	return func(ss *Skillset) { ss.Description = d }
}

func WithCognitiveServicesKey(key, description string) SkillsetOption {
	return func(ss *Skillset) {
		ss.CognitiveServicesKey = key
		ss.CognitiveServicesDescription = description
	}
}

func WithSkillsetParams(p wire.Params) SkillsetOption {
	return func(ss *Skillset) { ss.Params = p }
}

// NewSkillset requires at least one skill.
func NewSkillset(name string, skills []*Skill, opts ...SkillsetOption) (*Skillset, error) {
	ss := &Skillset{Name: name, Skills: skills}
	for _, opt := range opts {
		opt(ss)
	}
	if err := ss.Validate(); err != nil {
		return nil, err
	}
	return ss, nil
}

// ResourceName implements search.Resource.
func (ss *Skillset) ResourceName() string { return ss.Name }

func (ss *Skillset) Validate() error {
	if ss.Name == "" {
		return faults.Validationf("skillset: name is required")
	}
	if len(ss.Skills) == 0 {
		return faults.Validationf("skillset %q: at least one skill is required", ss.Name)
	}
	for i, s := range ss.Skills {
		if s == nil {
			return faults.Validationf("skillset %q: skill %d is not a skill", ss.Name, i)
		}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("skillset %q: %w", ss.Name, err)
		}
	}
	return nil
}

// OutputFieldMappings concatenates the mappings registered on every skill.
func (ss *Skillset) OutputFieldMappings() []mapping.FieldMapping {
	var out []mapping.FieldMapping
	for _, s := range ss.Skills {
		out = append(out, s.OutputFieldMappings()...)
	}
	return out
}

func (ss *Skillset) ToDict() map[string]any {
	base := map[string]any{
		"name":        ss.Name,
		"description": ss.Description,
		"skills":      wire.Dicts(ss.Skills),
	}
	if ss.CognitiveServicesKey != "" {
		base["cognitiveServices"] = wire.Finish(map[string]any{
			"@odata.type": CognitiveServicesByKey,
			"description": ss.CognitiveServicesDescription,
			"key":         ss.CognitiveServicesKey,
		}, nil)
	}
	return wire.Finish(base, ss.Params)
}

// LoadSkillset rebuilds a skillset and each of its skills.
func LoadSkillset(data any) (*Skillset, error) {
	f, err := wire.Load("skillset", data)
	if err != nil {
		return nil, err
	}
	ss := &Skillset{
		Name:        f.String("name"),
		Description: f.String("description"),
	}
	if !f.Has("skills") {
		return nil, faults.Validationf("skillset %q: skills not found", ss.Name)
	}
	for i, raw := range f.Maps("skills") {
		s, err := LoadSkill(raw)
		if err != nil {
			return nil, fmt.Errorf("skillset %q skill %d: %w", ss.Name, i, err)
		}
		ss.Skills = append(ss.Skills, s)
	}
	var passthrough any
	if cs, ok := f.Take("cognitive_services"); ok {
		m, _ := cs.(map[string]any)
		if m != nil && m["@odata.type"] == CognitiveServicesByKey {
			ss.CognitiveServicesKey, _ = m["key"].(string)
			ss.CognitiveServicesDescription, _ = m["description"].(string)
		} else {
			// other attachment kinds are passed through untouched
			passthrough = cs
		}
	}
	if err := f.Err(); err != nil {
		return nil, err
	}
	ss.Params = f.Rest()
	if passthrough != nil {
		if ss.Params == nil {
			ss.Params = wire.Params{}
		}
		ss.Params["cognitiveServices"] = passthrough
	}
	if err := ss.Validate(); err != nil {
		return nil, err
	}
	return ss, nil
}

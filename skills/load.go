package skills

import (
	"fmt"

	"github.com/rflorenc/azure-search-workbench/wire"
)

// kind describes what the client knows about a skill type beyond its wire
// shape: which outputs produce collections.
type kind struct {
	multiOutputs map[string]bool
}

var kinds = wire.NewRegistry[kind]("skill")

func init() {
	kinds.Register(TypeKeyPhraseExtraction, kind{multiOutputs: map[string]bool{"keyPhrases": true}})
	kinds.Register(TypeLanguageDetection, kind{})
	kinds.Register(TypeEntityRecognition, kind{})
	kinds.Register(TypeMerge, kind{})
	kinds.Register(TypeSplit, kind{multiOutputs: map[string]bool{"textItems": true}})
	kinds.Register(TypeSentiment, kind{})
	kinds.Register(TypeImageAnalysis, kind{})
	kinds.Register(TypeOCR, kind{})
	kinds.Register(TypeShaper, kind{})
	kinds.Register(TypeWebAPI, kind{})
}

// KnownTypes lists the skill types LoadSkill accepts.
func KnownTypes() []string { return kinds.Names() }

// LoadSkill rebuilds a skill from its wire form. The @odata.type must be a
// known skill type; the result is the generic Skill.
func LoadSkill(data any) (*Skill, error) {
	f, err := wire.Load("skill", data)
	if err != nil {
		return nil, err
	}
	s := &Skill{
		Type:        f.String("@odata.type"),
		Name:        f.String("name"),
		Description: f.String("description"),
		Context:     f.String("context"),
	}
	k, err := kinds.Lookup(s.Type)
	if err != nil {
		return nil, err
	}
	if !f.Has("outputs") {
		f.Failf("outputs are required")
	}
	for i, raw := range f.Maps("inputs") {
		in, err := loadInput(raw)
		if err != nil {
			return nil, fmt.Errorf("skill %s input %d: %w", s.label(), i, err)
		}
		s.Inputs = append(s.Inputs, in)
	}
	for i, raw := range f.Maps("outputs") {
		out, err := loadOutput(raw)
		if err != nil {
			return nil, fmt.Errorf("skill %s output %d: %w", s.label(), i, err)
		}
		out.ReturnsMultiple = k.multiOutputs[out.Name]
		s.Outputs = append(s.Outputs, out)
	}
	if err := f.Err(); err != nil {
		return nil, err
	}
	s.Params = f.Rest()
	s.normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func loadInput(m map[string]any) (SkillInput, error) {
	f := wire.NewFields("skill input", m)
	in := SkillInput{Name: f.String("name"), Source: f.String("source")}
	in.Params = f.Rest()
	return in, f.Err()
}

func loadOutput(m map[string]any) (SkillOutput, error) {
	f := wire.NewFields("skill output", m)
	out := SkillOutput{Name: f.String("name"), TargetName: f.String("target_name")}
	out.Params = f.Rest()
	return out, f.Err()
}

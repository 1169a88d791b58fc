// Package skills models cognitive enrichment skills and skillsets. Skills
// read values from the enrichment tree through inputs, write new nodes
// through outputs, and can be chained by pointing one skill's inputs at
// another skill's outputs.
package skills

import (
	"fmt"
	"strings"

	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/index"
	"github.com/rflorenc/azure-search-workbench/mapping"
	"github.com/rflorenc/azure-search-workbench/wire"
)

// DefaultContext is the enrichment node a skill runs against when none is
// given: once per document.
const DefaultContext = "/document"

// SkillInput feeds the enrichment node at Source into the input Name.
type SkillInput struct {
	Name   string
	Source string
	Params wire.Params
}

func (in SkillInput) ToDict() map[string]any {
	return wire.Finish(map[string]any{"name": in.Name, "source": in.Source}, in.Params)
}

// SkillOutput writes the output Name to the node TargetName. ReturnsMultiple
// marks outputs that produce a collection; it is client-side metadata used to
// build paths and is not sent to the service.
type SkillOutput struct {
	Name            string
	TargetName      string
	ReturnsMultiple bool
	Params          wire.Params
}

func (out SkillOutput) ToDict() map[string]any {
	return wire.Finish(map[string]any{"name": out.Name, "targetName": out.TargetName}, out.Params)
}

// path is where downstream skills find this output.
func (out SkillOutput) path() string {
	p := "/document/" + out.TargetName
	if out.ReturnsMultiple {
		p += "/*"
	}
	return p
}

// Skill is one enrichment step. The skill exclusively owns the output field
// mappings registered on it through SkillParameter.MapTo.
type Skill struct {
	Type        string
	Name        string
	Description string
	Context     string
	Inputs      []SkillInput
	Outputs     []SkillOutput
	Params      wire.Params

	mappings []mapping.FieldMapping
}

// Option customizes a skill at construction.
type Option func(*Skill)

func WithName(name string) Option { return func(s *Skill) { s.Name = name } }

func WithDescription(d string) Option { return func(s *Skill) { s.Description = d } }

func WithContext(ctx string) Option { return func(s *Skill) { s.Context = ctx } }

// WithInputs replaces the default inputs.
func WithInputs(in ...SkillInput) Option { return func(s *Skill) { s.Inputs = in } }

// WithOutputs replaces the default outputs.
func WithOutputs(out ...SkillOutput) Option { return func(s *Skill) { s.Outputs = out } }

// WithParams merges p into the skill's extra parameters.
func WithParams(p wire.Params) Option {
	return func(s *Skill) {
		if s.Params == nil {
			s.Params = wire.Params{}
		}
		for k, v := range p {
			s.Params[k] = v
		}
	}
}

// NewSkill builds a skill of any type. At least one output is required.
func NewSkill(skillType string, inputs []SkillInput, outputs []SkillOutput, opts ...Option) (*Skill, error) {
	s := &Skill{Type: skillType, Context: DefaultContext, Inputs: inputs, Outputs: outputs}
	for _, opt := range opts {
		opt(s)
	}
	s.normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Skill) normalize() {
	if s.Context == "" {
		s.Context = DefaultContext
	}
	for i := range s.Outputs {
		if s.Outputs[i].TargetName == "" {
			s.Outputs[i].TargetName = s.Outputs[i].Name
		}
	}
}

func (s *Skill) Validate() error {
	if s.Type == "" {
		return faults.Validationf("skill: @odata.type is required")
	}
	if len(s.Outputs) == 0 {
		return faults.Validationf("skill %s: at least one output is required", s.label())
	}
	for i, in := range s.Inputs {
		if in.Name == "" || in.Source == "" {
			return faults.Validationf("skill %s: input %d needs a name and a source", s.label(), i)
		}
	}
	for i, out := range s.Outputs {
		if out.Name == "" {
			return faults.Validationf("skill %s: output %d needs a name", s.label(), i)
		}
	}
	return nil
}

func (s *Skill) label() string {
	if s.Name != "" {
		return fmt.Sprintf("%q", s.Name)
	}
	return s.Type
}

func (s *Skill) ToDict() map[string]any {
	return wire.Finish(map[string]any{
		"@odata.type": s.Type,
		"name":        s.Name,
		"description": s.Description,
		"context":     s.Context,
		"inputs":      wire.Dicts(s.Inputs),
		"outputs":     wire.Dicts(s.Outputs),
	}, s.Params)
}

func (s *Skill) String() string {
	return fmt.Sprintf("<Skill: %s>", strings.TrimPrefix(s.Type, "#Microsoft.Skills."))
}

// Input returns the input called name.
func (s *Skill) Input(name string) (SkillInput, bool) {
	for _, in := range s.Inputs {
		if in.Name == name {
			return in, true
		}
	}
	return SkillInput{}, false
}

// Output returns the output called name.
func (s *Skill) Output(name string) (SkillOutput, bool) {
	for _, out := range s.Outputs {
		if out.Name == name {
			return out, true
		}
	}
	return SkillOutput{}, false
}

// SetInput points the input name at src, replacing an existing input of the
// same name.
func (s *Skill) SetInput(name string, src InputSource) {
	path := src.SourcePath()
	for i := range s.Inputs {
		if s.Inputs[i].Name == name {
			s.Inputs[i].Source = path
			return
		}
	}
	s.Inputs = append(s.Inputs, SkillInput{Name: name, Source: path})
}

// RemoveInput drops the input called name and reports whether it existed.
func (s *Skill) RemoveInput(name string) bool {
	for i, in := range s.Inputs {
		if in.Name == name {
			s.Inputs = append(s.Inputs[:i], s.Inputs[i+1:]...)
			return true
		}
	}
	return false
}

// AddSource wires the outputs of other into this skill's inputs, each input
// taking the output's name. include restricts which outputs are used.
func (s *Skill) AddSource(other *Skill, include ...string) {
	for _, out := range other.Outputs {
		if len(include) > 0 && !contains(include, out.Name) {
			continue
		}
		s.SetInput(out.Name, Path(out.path()))
	}
}

// RemoveSource drops every input named after one of other's outputs.
func (s *Skill) RemoveSource(other *Skill) {
	for _, out := range other.Outputs {
		for s.RemoveInput(out.Name) {
		}
	}
}

// DefaultOutputFieldMappings maps each output's enrichment node to an index
// field of the same name as the output.
func (s *Skill) DefaultOutputFieldMappings() []mapping.FieldMapping {
	out := make([]mapping.FieldMapping, 0, len(s.Outputs))
	for _, o := range s.Outputs {
		out = append(out, mapping.New(o.path(), o.Name))
	}
	return out
}

// OutputFieldMappings returns a copy of the mappings registered through
// SkillParameter.MapTo.
func (s *Skill) OutputFieldMappings() []mapping.FieldMapping {
	return append([]mapping.FieldMapping(nil), s.mappings...)
}

// InputSource is anything that resolves to an enrichment path.
type InputSource interface {
	SourcePath() string
}

// Path is a literal enrichment path such as /document/content.
type Path string

func (p Path) SourcePath() string { return string(p) }

// SkillParameter is a named output of a skill that can feed another skill or
// be mapped to an index field.
type SkillParameter struct {
	Name           string
	Target         string
	ReturnMultiple bool

	skill *Skill
}

// NewSkillParameter binds an output description to skill. An empty target
// defaults to name.
func NewSkillParameter(skill *Skill, name, target string, multiple bool) *SkillParameter {
	if target == "" {
		target = name
	}
	return &SkillParameter{Name: name, Target: target, ReturnMultiple: multiple, skill: skill}
}

// Skill returns the owning skill.
func (p *SkillParameter) Skill() *Skill { return p.skill }

// SourcePath is where downstream skills read this output.
func (p *SkillParameter) SourcePath() string { return p.ToSkillOutput().path() }

func (p *SkillParameter) ToSkillOutput() SkillOutput {
	return SkillOutput{Name: p.Name, TargetName: p.Target, ReturnsMultiple: p.ReturnMultiple}
}

// MapTo derives the output field mapping from this parameter to field, records
// it on the owning skill and returns it.
func (p *SkillParameter) MapTo(field *index.Field) mapping.FieldMapping {
	ctx := DefaultContext
	if p.skill != nil && p.skill.Context != "" {
		ctx = p.skill.Context
	}
	src := strings.TrimSuffix(ctx, "/") + "/" + p.Name
	if p.ReturnMultiple {
		src += "/*"
	}
	m := mapping.New(src, field.Name)
	if p.skill != nil {
		p.skill.mappings = append(p.skill.mappings, m)
	}
	return m
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

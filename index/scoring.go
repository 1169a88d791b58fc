package index

import (
	"fmt"

	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/wire"
)

// Scoring function types.
const (
	FunctionMagnitude = "magnitude"
	FunctionFreshness = "freshness"
	FunctionDistance  = "distance"
	FunctionTag       = "tag"
)

// Interpolations accepted by scoring functions.
var Interpolations = []string{"constant", "linear", "quadratic", "logarithmic"}

// ScoringProfile boosts documents by field weights and scoring functions.
type ScoringProfile struct {
	Name                string
	Text                *TextWeights
	Functions           []ScoringFunction
	FunctionAggregation string
	Params              wire.Params
}

// TextWeights maps searchable field names to a relative weight.
type TextWeights struct {
	Weights map[string]float64
	Params  wire.Params
}

type ScoringFunction struct {
	Type          string
	FieldName     string
	Boost         float64
	Interpolation string
	Magnitude     *MagnitudeParams
	Freshness     *FreshnessParams
	Distance      *DistanceParams
	Tag           *TagParams
	Params        wire.Params
}

type MagnitudeParams struct {
	BoostingRangeStart       float64
	BoostingRangeEnd         float64
	ConstantBoostBeyondRange bool
}

type FreshnessParams struct {
	// BoostingDuration is an XSD duration such as P2D.
	BoostingDuration string
}

type DistanceParams struct {
	ReferencePointParameter string
	BoostingDistance        float64
}

type TagParams struct {
	TagsParameter string
}

func NewScoringProfile(name string, text *TextWeights, functions ...ScoringFunction) (*ScoringProfile, error) {
	sp := &ScoringProfile{Name: name, Text: text, Functions: functions}
	if err := sp.Validate(); err != nil {
		return nil, err
	}
	return sp, nil
}

func (sp *ScoringProfile) Validate() error {
	if sp.Name == "" {
		return faults.Validationf("scoring profile: name is required")
	}
	for i, fn := range sp.Functions {
		if err := fn.Validate(); err != nil {
			return fmt.Errorf("scoring profile %q function %d: %w", sp.Name, i, err)
		}
	}
	return nil
}

func (sp *ScoringProfile) ToDict() map[string]any {
	base := map[string]any{
		"name":                sp.Name,
		"functions":           wire.Dicts(sp.Functions),
		"functionAggregation": sp.FunctionAggregation,
	}
	if sp.Text != nil {
		base["text"] = sp.Text.ToDict()
	}
	return wire.Finish(base, sp.Params)
}

func (tw *TextWeights) ToDict() map[string]any {
	weights := make(map[string]any, len(tw.Weights))
	for k, v := range tw.Weights {
		weights[k] = v
	}
	return wire.Finish(map[string]any{"weights": weights}, tw.Params)
}

func (fn ScoringFunction) Validate() error {
	switch fn.Type {
	case FunctionMagnitude, FunctionFreshness, FunctionDistance, FunctionTag:
	default:
		return faults.Validationf("unknown scoring function type %q", fn.Type)
	}
	if fn.FieldName == "" {
		return faults.Validationf("%s function: field name is required", fn.Type)
	}
	if fn.Interpolation != "" && !validInterpolation(fn.Interpolation) {
		return faults.Validationf("%s function on %q: interpolation %q not in %v", fn.Type, fn.FieldName, fn.Interpolation, Interpolations)
	}
	return nil
}

func validInterpolation(s string) bool {
	for _, v := range Interpolations {
		if v == s {
			return true
		}
	}
	return false
}

func (fn ScoringFunction) ToDict() map[string]any {
	base := map[string]any{
		"type":          fn.Type,
		"fieldName":     fn.FieldName,
		"boost":         fn.Boost,
		"interpolation": fn.Interpolation,
	}
	if fn.Magnitude != nil {
		base["magnitude"] = map[string]any{
			"boostingRangeStart":       fn.Magnitude.BoostingRangeStart,
			"boostingRangeEnd":         fn.Magnitude.BoostingRangeEnd,
			"constantBoostBeyondRange": fn.Magnitude.ConstantBoostBeyondRange,
		}
	}
	if fn.Freshness != nil {
		base["freshness"] = map[string]any{"boostingDuration": fn.Freshness.BoostingDuration}
	}
	if fn.Distance != nil {
		base["distance"] = map[string]any{
			"referencePointParameter": fn.Distance.ReferencePointParameter,
			"boostingDistance":        fn.Distance.BoostingDistance,
		}
	}
	if fn.Tag != nil {
		base["tag"] = map[string]any{"tagsParameter": fn.Tag.TagsParameter}
	}
	return wire.Finish(base, fn.Params)
}

func LoadScoringProfile(data any) (*ScoringProfile, error) {
	f, err := wire.Load("scoring profile", data)
	if err != nil {
		return nil, err
	}
	sp := &ScoringProfile{
		Name:                f.String("name"),
		FunctionAggregation: f.String("function_aggregation"),
	}
	if text := f.Map("text"); text != nil {
		tw, err := loadTextWeights(text)
		if err != nil {
			return nil, fmt.Errorf("scoring profile %q: %w", sp.Name, err)
		}
		sp.Text = tw
	}
	for _, raw := range f.Maps("functions") {
		fn, err := loadScoringFunction(raw)
		if err != nil {
			return nil, fmt.Errorf("scoring profile %q: %w", sp.Name, err)
		}
		sp.Functions = append(sp.Functions, fn)
	}
	if err := f.Err(); err != nil {
		return nil, err
	}
	sp.Params = f.Rest()
	return sp, sp.Validate()
}

func loadTextWeights(m map[string]any) (*TextWeights, error) {
	f := wire.NewFields("text weights", m)
	tw := &TextWeights{Weights: map[string]float64{}}
	for k, v := range f.Map("weights") {
		w, ok := wire.Float(v)
		if !ok {
			return nil, faults.Validationf("text weights: weight for %q is not a number", k)
		}
		tw.Weights[k] = w
	}
	if err := f.Err(); err != nil {
		return nil, err
	}
	tw.Params = f.Rest()
	return tw, nil
}

func loadScoringFunction(m map[string]any) (ScoringFunction, error) {
	f := wire.NewFields("scoring function", m)
	fn := ScoringFunction{
		Type:          f.String("type"),
		FieldName:     f.String("field_name"),
		Boost:         f.Float("boost"),
		Interpolation: f.String("interpolation"),
	}
	if mag := f.Map("magnitude"); mag != nil {
		mf := wire.NewFields("magnitude", mag)
		fn.Magnitude = &MagnitudeParams{
			BoostingRangeStart:       mf.Float("boosting_range_start"),
			BoostingRangeEnd:         mf.Float("boosting_range_end"),
			ConstantBoostBeyondRange: mf.Bool("constant_boost_beyond_range"),
		}
		if err := mf.Err(); err != nil {
			return fn, err
		}
	}
	if fr := f.Map("freshness"); fr != nil {
		ff := wire.NewFields("freshness", fr)
		fn.Freshness = &FreshnessParams{BoostingDuration: ff.String("boosting_duration")}
		if err := ff.Err(); err != nil {
			return fn, err
		}
	}
	if d := f.Map("distance"); d != nil {
		df := wire.NewFields("distance", d)
		fn.Distance = &DistanceParams{
			ReferencePointParameter: df.String("reference_point_parameter"),
			BoostingDistance:        df.Float("boosting_distance"),
		}
		if err := df.Err(); err != nil {
			return fn, err
		}
	}
	if tag := f.Map("tag"); tag != nil {
		tf := wire.NewFields("tag", tag)
		fn.Tag = &TagParams{TagsParameter: tf.String("tags_parameter")}
		if err := tf.Err(); err != nil {
			return fn, err
		}
	}
	if err := f.Err(); err != nil {
		return fn, err
	}
	fn.Params = f.Rest()
	return fn, fn.Validate()
}

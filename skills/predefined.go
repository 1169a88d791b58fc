package skills

import (
	"strings"

	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/wire"
)

// @odata.type values of the built-in skills.
const (
	TypeKeyPhraseExtraction = "#Microsoft.Skills.Text.KeyPhraseExtractionSkill"
	TypeLanguageDetection   = "#Microsoft.Skills.Text.LanguageDetectionSkill"
	TypeEntityRecognition   = "#Microsoft.Skills.Text.EntityRecognitionSkill"
	TypeMerge               = "#Microsoft.Skills.Text.MergeSkill"
	TypeSplit               = "#Microsoft.Skills.Text.SplitSkill"
	TypeSentiment           = "#Microsoft.Skills.Text.SentimentSkill"
	TypeImageAnalysis       = "#Microsoft.Skills.Vision.ImageAnalysisSkill"
	TypeOCR                 = "#Microsoft.Skills.Vision.OcrSkill"
	TypeShaper              = "#Microsoft.Skills.Util.ShaperSkill"
	TypeWebAPI              = "#Microsoft.Skills.Custom.WebApiSkill"
)

const imagesContext = "/document/normalized_images/*"

// build assembles a predefined skill: defaults first, then caller options,
// then default outputs if the caller set none.
func build(skillType string, defaults []Option, outputs []SkillOutput, opts []Option) (*Skill, error) {
	s := &Skill{Type: skillType, Context: DefaultContext}
	for _, opt := range defaults {
		opt(s)
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.Outputs) == 0 {
		s.Outputs = outputs
	}
	s.normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func bind(s *Skill, params ...*SkillParameter) {
	for _, p := range params {
		p.skill = s
	}
}

func setIfGiven(s *Skill, name string, src InputSource) {
	if src != nil {
		s.SetInput(name, src)
	}
}

// KeyPhraseExtraction returns the key phrases found in each page.
type KeyPhraseExtraction struct {
	*Skill
	KeyPhrases *SkillParameter
}

func NewKeyPhraseExtractionSkill(opts ...Option) (*KeyPhraseExtraction, error) {
	kp := &KeyPhraseExtraction{KeyPhrases: NewSkillParameter(nil, "keyPhrases", "keyPhrases", true)}
	s, err := build(TypeKeyPhraseExtraction, []Option{
		WithContext("/document/pages/*"),
		WithInputs(SkillInput{Name: "text", Source: "/document/pages/*"}),
		WithParams(wire.Params{"defaultLanguageCode": "en", "maxKeyPhraseCount": 30}),
	}, []SkillOutput{kp.KeyPhrases.ToSkillOutput()}, opts)
	if err != nil {
		return nil, err
	}
	kp.Skill = s
	bind(s, kp.KeyPhrases)
	return kp, nil
}

// SetInputs rewires the text and language code inputs. nil leaves an input
// unchanged.
func (kp *KeyPhraseExtraction) SetInputs(text, languageCode InputSource) {
	setIfGiven(kp.Skill, "text", text)
	setIfGiven(kp.Skill, "languageCode", languageCode)
}

// LanguageDetection reports the language of each document.
type LanguageDetection struct {
	*Skill
	LanguageCode *SkillParameter
	LanguageName *SkillParameter
	Score        *SkillParameter
}

func NewLanguageDetectionSkill(opts ...Option) (*LanguageDetection, error) {
	ld := &LanguageDetection{
		LanguageCode: NewSkillParameter(nil, "languageCode", "languageCode", false),
		LanguageName: NewSkillParameter(nil, "languageName", "languageName", false),
		Score:        NewSkillParameter(nil, "score", "score", false),
	}
	s, err := build(TypeLanguageDetection, []Option{
		WithInputs(SkillInput{Name: "text", Source: "/document/content"}),
	}, []SkillOutput{
		ld.LanguageCode.ToSkillOutput(),
		ld.LanguageName.ToSkillOutput(),
		ld.Score.ToSkillOutput(),
	}, opts)
	if err != nil {
		return nil, err
	}
	ld.Skill = s
	bind(s, ld.LanguageCode, ld.LanguageName, ld.Score)
	return ld, nil
}

func (ld *LanguageDetection) SetInputs(text InputSource) {
	setIfGiven(ld.Skill, "text", text)
}

// Entity categories and the output each one produces.
var entityOutputs = map[string]string{
	"Person":       "persons",
	"Location":     "locations",
	"Organization": "organizations",
	"Quantity":     "quantities",
	"Datetime":     "dateTimes",
	"URL":          "urls",
	"Email":        "emails",
}

// DefaultEntityCategories are extracted when no categories are given.
var DefaultEntityCategories = []string{"Person", "Location", "Organization", "Quantity", "Datetime", "URL", "Email"}

// EntityRecognition extracts entities of the requested categories.
type EntityRecognition struct {
	*Skill
	Entities map[string]*SkillParameter
}

// NewEntityRecognitionSkill builds the skill with one output per category.
func NewEntityRecognitionSkill(categories []string, opts ...Option) (*EntityRecognition, error) {
	if categories == nil {
		categories = DefaultEntityCategories
	}
	if len(categories) == 0 {
		return nil, faults.Validationf("entity recognition: at least one category is required")
	}
	er := &EntityRecognition{Entities: make(map[string]*SkillParameter, len(categories))}
	outputs := make([]SkillOutput, 0, len(categories))
	for _, c := range categories {
		name, ok := entityOutputs[c]
		if !ok {
			return nil, faults.Validationf("entity recognition: unknown category %q", c)
		}
		p := NewSkillParameter(nil, name, name, false)
		er.Entities[c] = p
		outputs = append(outputs, p.ToSkillOutput())
	}
	s, err := build(TypeEntityRecognition, []Option{
		WithInputs(SkillInput{Name: "text", Source: "/document/content"}),
		WithParams(wire.Params{
			"categories":              append([]string(nil), categories...),
			"defaultLanguageCode":     "en",
			"includeTypelessEntities": false,
		}),
	}, outputs, opts)
	if err != nil {
		return nil, err
	}
	er.Skill = s
	for _, p := range er.Entities {
		bind(s, p)
	}
	return er, nil
}

// Entity returns the parameter for category, or nil.
func (er *EntityRecognition) Entity(category string) *SkillParameter {
	return er.Entities[category]
}

func (er *EntityRecognition) SetInputs(text, languageCode InputSource) {
	setIfGiven(er.Skill, "text", text)
	setIfGiven(er.Skill, "languageCode", languageCode)
}

// Merge folds a collection of strings (typically OCR text) into a single
// text at the given offsets.
type Merge struct {
	*Skill
	MergedText *SkillParameter
}

func NewMergeSkill(opts ...Option) (*Merge, error) {
	m := &Merge{MergedText: NewSkillParameter(nil, "mergedText", "merged_text", false)}
	s, err := build(TypeMerge, []Option{
		WithInputs(
			SkillInput{Name: "text", Source: "/document/content"},
			SkillInput{Name: "itemsToInsert", Source: "/document/normalized_images/*/text"},
			SkillInput{Name: "offsets", Source: "/document/normalized_images/*/contentOffset"},
		),
		WithParams(wire.Params{"insertPreTag": " ", "insertPostTag": " "}),
	}, []SkillOutput{m.MergedText.ToSkillOutput()}, opts)
	if err != nil {
		return nil, err
	}
	m.Skill = s
	bind(s, m.MergedText)
	return m, nil
}

func (m *Merge) SetInputs(text, itemsToInsert, offsets InputSource) {
	setIfGiven(m.Skill, "text", text)
	setIfGiven(m.Skill, "itemsToInsert", itemsToInsert)
	setIfGiven(m.Skill, "offsets", offsets)
}

// Split breaks text into pages or sentences.
type Split struct {
	*Skill
	TextItems *SkillParameter
}

func NewSplitSkill(opts ...Option) (*Split, error) {
	sp := &Split{TextItems: NewSkillParameter(nil, "textItems", "pages", true)}
	s, err := build(TypeSplit, []Option{
		WithInputs(SkillInput{Name: "text", Source: "/document/content"}),
		WithParams(wire.Params{"textSplitMode": "pages", "defaultLanguageCode": "en"}),
	}, []SkillOutput{sp.TextItems.ToSkillOutput()}, opts)
	if err != nil {
		return nil, err
	}
	sp.Skill = s
	bind(s, sp.TextItems)
	return sp, nil
}

func (sp *Split) SetInputs(text, languageCode InputSource) {
	setIfGiven(sp.Skill, "text", text)
	setIfGiven(sp.Skill, "languageCode", languageCode)
}

// Sentiment scores text between 0 (negative) and 1 (positive).
type Sentiment struct {
	*Skill
	Score *SkillParameter
}

func NewSentimentSkill(opts ...Option) (*Sentiment, error) {
	st := &Sentiment{Score: NewSkillParameter(nil, "score", "sentiment", false)}
	s, err := build(TypeSentiment, []Option{
		WithInputs(
			SkillInput{Name: "text", Source: "/document/content"},
			SkillInput{Name: "languageCode", Source: "/document/languageCode"},
		),
		WithParams(wire.Params{"defaultLanguageCode": "en"}),
	}, []SkillOutput{st.Score.ToSkillOutput()}, opts)
	if err != nil {
		return nil, err
	}
	st.Skill = s
	bind(s, st.Score)
	return st, nil
}

func (st *Sentiment) SetInputs(text, languageCode InputSource) {
	setIfGiven(st.Skill, "text", text)
	setIfGiven(st.Skill, "languageCode", languageCode)
}

// Visual features and the output each one produces.
var visualFeatureOutputs = map[string]string{
	"Categories":  "categories",
	"Tags":        "tags",
	"Description": "description",
	"Faces":       "faces",
	"ImageType":   "imageType",
	"Color":       "color",
	"Adult":       "adult",
}

var DefaultVisualFeatures = []string{"Tags", "Faces", "Categories", "Adult", "Description", "ImageType", "Color"}

// ImageAnalysis extracts visual features from normalized images.
type ImageAnalysis struct {
	*Skill
	Features map[string]*SkillParameter
}

func NewImageAnalysisSkill(features []string, opts ...Option) (*ImageAnalysis, error) {
	if features == nil {
		features = DefaultVisualFeatures
	}
	if len(features) == 0 {
		return nil, faults.Validationf("image analysis: at least one visual feature is required")
	}
	ia := &ImageAnalysis{Features: make(map[string]*SkillParameter, len(features))}
	outputs := make([]SkillOutput, 0, len(features))
	for _, f := range features {
		name, ok := visualFeatureOutputs[f]
		if !ok {
			name = strings.ToLower(f)
		}
		p := NewSkillParameter(nil, name, name, false)
		ia.Features[f] = p
		outputs = append(outputs, p.ToSkillOutput())
	}
	s, err := build(TypeImageAnalysis, []Option{
		WithContext(imagesContext),
		WithInputs(SkillInput{Name: "image", Source: imagesContext}),
		WithParams(wire.Params{
			"defaultLanguageCode": "en",
			"visualFeatures":      append([]string(nil), features...),
			"details":             []string{"Celebrities", "Landmarks"},
		}),
	}, outputs, opts)
	if err != nil {
		return nil, err
	}
	ia.Skill = s
	for _, p := range ia.Features {
		bind(s, p)
	}
	return ia, nil
}

// OCR extracts printed or handwritten text from normalized images.
type OCR struct {
	*Skill
	Text       *SkillParameter
	LayoutText *SkillParameter
}

func NewOCRSkill(opts ...Option) (*OCR, error) {
	o := &OCR{
		Text:       NewSkillParameter(nil, "text", "text", false),
		LayoutText: NewSkillParameter(nil, "layoutText", "layoutText", false),
	}
	s, err := build(TypeOCR, []Option{
		WithContext(imagesContext),
		WithInputs(SkillInput{Name: "image", Source: imagesContext}),
		WithParams(wire.Params{
			"defaultLanguageCode":     "en",
			"detectOrientation":       true,
			"textExtractionAlgorithm": "printed",
		}),
	}, []SkillOutput{o.Text.ToSkillOutput(), o.LayoutText.ToSkillOutput()}, opts)
	if err != nil {
		return nil, err
	}
	o.Skill = s
	bind(s, o.Text, o.LayoutText)
	return o, nil
}

// NewShaperSkill builds a shaper, which combines its inputs into one complex
// output. Inputs and outputs have no defaults.
func NewShaperSkill(inputs []SkillInput, outputs []SkillOutput, opts ...Option) (*Skill, error) {
	if len(inputs) == 0 {
		return nil, faults.Validationf("shaper skill: at least one input is required")
	}
	return NewSkill(TypeShaper, inputs, outputs, opts...)
}

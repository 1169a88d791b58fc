package skills

import (
	"net/url"

	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/wire"
)

// WebAPIOption configures the HTTP side of a custom web API skill.
type WebAPIOption func(wire.Params)

func WithHTTPHeaders(h map[string]string) WebAPIOption {
	return func(p wire.Params) { p["httpHeaders"] = h }
}

func WithHTTPMethod(m string) WebAPIOption {
	return func(p wire.Params) { p["httpMethod"] = m }
}

// WithTimeout sets the request timeout as an XSD duration, e.g. PT30S.
func WithTimeout(d string) WebAPIOption {
	return func(p wire.Params) { p["timeout"] = d }
}

func WithBatchSize(n int) WebAPIOption {
	return func(p wire.Params) { p["batchSize"] = n }
}

// NewWebAPISkill builds a custom skill backed by an HTTP endpoint.
func NewWebAPISkill(uri string, inputs []SkillInput, outputs []SkillOutput, web []WebAPIOption, opts ...Option) (*Skill, error) {
	u, err := url.Parse(uri)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return nil, faults.Validationf("web api skill: %q is not an absolute http(s) URI", uri)
	}
	params := wire.Params{"uri": uri}
	for _, w := range web {
		w(params)
	}
	return NewSkill(TypeWebAPI, inputs, outputs, append([]Option{WithParams(params)}, opts...)...)
}

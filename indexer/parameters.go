package indexer

import (
	"github.com/rflorenc/azure-search-workbench/wire"
)

// Parameters tune failure tolerance, batching and data-source specific
// extraction behavior.
type Parameters struct {
	MaxFailedItems         *int
	MaxFailedItemsPerBatch *int
	BatchSize              *int
	// Configuration holds data-source specific settings, keyed in camelCase
	// (parsingMode, dataToExtract, imageAction, ...).
	Configuration map[string]any
	Params        wire.Params
}

// DefaultConfiguration is the blob extraction setup that feeds image skills:
// content plus metadata, with normalized images generated.
func DefaultConfiguration() map[string]any {
	return map[string]any{
		"parsingMode":   "default",
		"dataToExtract": "contentAndMetadata",
		"imageAction":   "generateNormalizedImages",
	}
}

// DefaultParameters tolerates any number of failed items and uses
// DefaultConfiguration.
func DefaultParameters() *Parameters {
	unlimited := -1
	perBatch := -1
	return &Parameters{
		MaxFailedItems:         &unlimited,
		MaxFailedItemsPerBatch: &perBatch,
		Configuration:          DefaultConfiguration(),
	}
}

func (p *Parameters) ToDict() map[string]any {
	base := map[string]any{
		"maxFailedItems":         p.MaxFailedItems,
		"maxFailedItemsPerBatch": p.MaxFailedItemsPerBatch,
		"batchSize":              p.BatchSize,
		"configuration":          wire.RemoveEmptyValues(p.Configuration),
	}
	for k, v := range base {
		if ip, ok := v.(*int); ok && ip != nil {
			base[k] = *ip
		}
	}
	return wire.Finish(base, p.Params)
}

func LoadParameters(data any) (*Parameters, error) {
	f, err := wire.Load("indexer parameters", data)
	if err != nil {
		return nil, err
	}
	p := &Parameters{
		MaxFailedItems:         f.IntPtr("max_failed_items"),
		MaxFailedItemsPerBatch: f.IntPtr("max_failed_items_per_batch"),
		BatchSize:              f.IntPtr("batch_size"),
		Configuration:          f.Map("configuration"),
	}
	if err := f.Err(); err != nil {
		return nil, err
	}
	p.Params = f.Rest()
	return p, nil
}

package deploy

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/search"
)

// Formats accepted by Export.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Export writes every resource on the service to
// outDir/<collection>/<name>.<format>. The output can be fed back to
// LoadManifest.
func Export(ctx context.Context, svc *search.Service, outDir, format string, logger func(string)) (int, error) {
	log := logger
	if format != FormatJSON && format != FormatYAML {
		return 0, faults.Validationf("export format must be %s or %s, got %q", FormatJSON, FormatYAML, format)
	}

	fileCount := 0
	writeFile := func(dir, name string, payload map[string]any) error {
		dirPath := filepath.Join(outDir, dir)
		if err := os.MkdirAll(dirPath, 0755); err != nil {
			return err
		}
		var b []byte
		var err error
		if format == FormatYAML {
			b, err = yaml.Marshal(payload)
		} else {
			b, err = json.MarshalIndent(payload, "", "  ")
		}
		if err != nil {
			return err
		}
		fileCount++
		return os.WriteFile(filepath.Join(dirPath, safeName(name)+"."+format), b, 0644)
	}

	for _, rt := range search.ResourceTypes {
		log(fmt.Sprintf("=== Exporting %s ===", rt.Label))
		items, err := svc.RawList(ctx, rt)
		if err != nil {
			return fileCount, fmt.Errorf("listing %s: %w", rt.Path, err)
		}
		for _, item := range items {
			stripODataKeys(item)
			name, _ := item["name"].(string)
			if name == "" {
				log("  WARNING: skipping unnamed " + rt.Name)
				continue
			}
			if err := writeFile(rt.Path, name, item); err != nil {
				return fileCount, faults.NewTypedError(faults.ConfigError, fmt.Sprintf("writing %s %s", rt.Name, name), err)
			}
			log(fmt.Sprintf("  %s: %s", rt.Name, name))
		}
	}

	log(fmt.Sprintf("Export complete: %d files written to %s", fileCount, outDir))
	return fileCount, nil
}

// stripODataKeys removes read-only service annotations such as @odata.etag
// and @odata.context from the top level.
func stripODataKeys(m map[string]any) {
	for k := range m {
		if strings.HasPrefix(k, "@odata.") {
			delete(m, k)
		}
	}
}

func safeName(name string) string {
	r := strings.NewReplacer(" ", "_", "/", "_", "\\", "_")
	return r.Replace(name)
}

// Cleanup deletes every resource on the service in reverse dependency order.
// Names in skip are left alone. Failures are logged and counted.
func Cleanup(ctx context.Context, svc *search.Service, skip map[string]bool, logger func(string)) (*Result, error) {
	log := logger
	res := &Result{}

	for _, rt := range search.DeleteOrder() {
		log(fmt.Sprintf("--- Cleaning %s ---", rt.Label))

		names, err := svc.RawNames(ctx, rt)
		if err != nil {
			log(fmt.Sprintf("  ERROR listing %s: %v", rt.Label, err))
			res.Failed++
			continue
		}

		for _, name := range names {
			if skip[name] {
				log(fmt.Sprintf("  SKIP %s", name))
				res.Skipped++
				continue
			}
			if _, err := svc.RawDelete(ctx, rt, name, true); err != nil {
				log(fmt.Sprintf("  FAIL %s: %v", name, err))
				res.Failed++
				continue
			}
			log(fmt.Sprintf("  DELETED %s", name))
			res.Deleted++
		}
	}

	log(fmt.Sprintf("Cleanup complete: %d deleted, %d skipped, %d failed", res.Deleted, res.Skipped, res.Failed))
	if res.Failed > 0 {
		return res, fmt.Errorf("cleanup finished with %d failures", res.Failed)
	}
	return res, nil
}

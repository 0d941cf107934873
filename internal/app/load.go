package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/gppgo/internal/config"
	"github.com/specialistvlad/gppgo/internal/ctxlog"
	"github.com/specialistvlad/gppgo/internal/fsutil"
	"github.com/specialistvlad/gppgo/internal/hcl_adapter"
	"github.com/specialistvlad/gppgo/internal/yaml_adapter"
)

// loaderFor picks the configuration loader for path. Files are chosen by
// extension; a directory must hold files of exactly one format.
func loaderFor(path string) (config.Loader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing path %s: %w", path, err)
	}

	if !info.IsDir() {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".hcl":
			return hcl_adapter.NewLoader(), nil
		case ".yaml", ".yml":
			return yaml_adapter.NewLoader(), nil
		default:
			return nil, fmt.Errorf("unsupported configuration file %s: expected .hcl, .yaml or .yml", path)
		}
	}

	hclFiles, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, err
	}
	yamlFiles, err := fsutil.FindFilesByExtension(path, ".yaml", ".yml")
	if err != nil {
		return nil, err
	}
	switch {
	case len(hclFiles) > 0 && len(yamlFiles) > 0:
		return nil, fmt.Errorf("directory %s mixes HCL and YAML files", path)
	case len(yamlFiles) > 0:
		return yaml_adapter.NewLoader(), nil
	case len(hclFiles) > 0:
		return hcl_adapter.NewLoader(), nil
	default:
		return nil, fmt.Errorf("no configuration files found in %s", path)
	}
}

// LoadDocument reads the configuration at path with the matching loader.
func LoadDocument(ctx context.Context, path string) (*config.Document, error) {
	loader, err := loaderFor(path)
	if err != nil {
		return nil, err
	}
	doc, err := loader.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Configuration loaded.", "source", doc.Source, "keys", doc.Keys())
	return doc, nil
}

package registry

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk shape of a node-type catalog: an
// operator/author-facing config format, distinct from the versioned project
// JSON schema that serial.Load/Save handle. Behavior functions cannot be
// expressed in YAML, so a loaded catalog only carries metadata; callers
// attach behaviors afterward (see AttachBehaviors).
type catalogFile struct {
	Types []catalogEntry `yaml:"types"`
}

type catalogEntry struct {
	Type          string `yaml:"type"`
	DisplayName   string `yaml:"displayName"`
	Category      string `yaml:"category"`
	Archetype     string `yaml:"archetype"`
	Inputs        int    `yaml:"inputs"`
	Outputs       int    `yaml:"outputs"`
	ControlPorts  int    `yaml:"controlPorts"`
	ControlOutput bool   `yaml:"controlOutput"`
	DefaultParam  int    `yaml:"defaultParam"`
	ParamMap      *struct {
		TargetKey string `yaml:"targetKey"`
		Mapping   string `yaml:"mapping"`
	} `yaml:"paramMap,omitempty"`
}

// LoadCatalogYAML decodes a node-type catalog from r. The returned
// definitions have nil behavior functions; pass the result through
// AttachBehaviors before building a Registry unless the caller only needs
// metadata (e.g. cmd/patchctl's catalog-listing mode).
func LoadCatalogYAML(r io.Reader) ([]NodeTypeDef, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("registry: decode catalog: %w", err)
	}

	defs := make([]NodeTypeDef, 0, len(file.Types))
	for _, e := range file.Types {
		def := NodeTypeDef{
			Type:          e.Type,
			DisplayName:   e.DisplayName,
			Category:      e.Category,
			Archetype:     Archetype(e.Archetype),
			Inputs:        e.Inputs,
			Outputs:       e.Outputs,
			ControlPorts:  e.ControlPorts,
			ControlOutput: e.ControlOutput,
			DefaultParam:  e.DefaultParam,
		}
		if e.ParamMap != nil {
			def.ParamMap = &ParamMap{TargetKey: e.ParamMap.TargetKey, Mapping: e.ParamMap.Mapping}
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// LoadCatalogYAMLFile is a convenience wrapper around LoadCatalogYAML for a
// path on disk.
func LoadCatalogYAMLFile(path string) ([]NodeTypeDef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("registry: open catalog %s: %w", path, err)
	}
	defer f.Close()
	return LoadCatalogYAML(f)
}

// AttachBehaviors merges behavior functions (InitState/OnControl/OnSignal)
// into metadata-only definitions loaded from YAML, matched by Type. Types
// present in defs but absent from behaviors are left without behaviors and
// will fail registry validation with REG_MISSING_ON_SIGNAL.
func AttachBehaviors(defs []NodeTypeDef, behaviors map[string]struct {
	InitState InitState
	OnControl OnControl
	OnSignal  OnSignal
}) []NodeTypeDef {
	out := make([]NodeTypeDef, len(defs))
	for i, def := range defs {
		if b, ok := behaviors[def.Type]; ok {
			def.InitState = b.InitState
			def.OnControl = b.OnControl
			def.OnSignal = b.OnSignal
		}
		out[i] = def
	}
	return out
}

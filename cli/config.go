package cli

import (
	"io"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// yamlConfig is a [kong.ConfigurationLoader] that reads default flag values
// from a YAML document. Nested maps are flattened to dash-joined flag names,
// e.g.:
//
//	log:
//	  level: debug
//	  format: json
//	recursion-depth: 512
//
// resolves "log-level", "log-format", and "recursion-depth".
func yamlConfig(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return kong.ResolverFunc(
			func(*kong.Context, *kong.Path, *kong.Flag) (any, error) {
				return nil, nil
			},
		), nil
	}

	var values map[string]any

	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, err
	}

	flat := make(map[string]any, len(values))
	flattenConfig("", values, flat)

	return kong.ResolverFunc(
		func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
			v, ok := flat[flag.Name]
			if !ok {
				return nil, nil
			}

			return v, nil
		},
	), nil
}

// flattenConfig recursively flattens nested maps into dash-joined keys,
// mirroring kong's flag-naming convention for embedded structs.
func flattenConfig(prefix string, in map[string]any, out map[string]any) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "-" + k
		}

		if nested, ok := v.(map[string]any); ok {
			flattenConfig(key, nested, out)

			continue
		}

		out[key] = v
	}
}

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v2"
)

// YAMLConfig is a kong.ConfigurationLoader. Top level keys set flags of any
// command, keys nested under a command name only set that command's flags.
//
//	dsn: sqlite3:/var/lib/koc/koc.sqlite
//	export:
//	  output_dir: /var/spool/koc
func YAMLConfig(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	values := map[string]any{}
	err = yaml.Unmarshal(data, &values)
	if err != nil {
		return nil, fmt.Errorf("unable to parse config: %w", err)
	}
	var resolver kong.ResolverFunc = func(kctx *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		if parent != nil && parent.Command != nil {
			if sub, ok := values[parent.Command.Name].(map[any]any); ok {
				for _, name := range flagNames(flag) {
					if v, ok := sub[name]; ok {
						return scalar(v), nil
					}
				}
			}
		}
		for _, name := range flagNames(flag) {
			if v, ok := values[name]; ok {
				return scalar(v), nil
			}
		}
		return nil, nil
	}
	return resolver, nil
}

func flagNames(flag *kong.Flag) []string {
	return []string{
		flag.Name,
		strings.ReplaceAll(flag.Name, "-", "_"),
		strings.ReplaceAll(flag.Name, "_", "-"),
	}
}

func scalar(v any) any {
	switch v.(type) {
	case map[any]any, []any:
		return v
	}
	return fmt.Sprint(v)
}

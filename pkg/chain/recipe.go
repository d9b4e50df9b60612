package chain

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/imgfilter/pkg/errors"
)

type recipeFile struct {
	Filter []recipeStep `toml:"filter"`
}

type recipeStep struct {
	Name   string `toml:"name"`
	Params []any  `toml:"params"`
}

// LoadRecipe reads and validates a TOML recipe file.
func LoadRecipe(path string) ([]Step, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "recipe %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidRecipe, err, "read recipe %s", path)
	}
	steps, err := ParseRecipe(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return steps, nil
}

// ParseRecipe decodes a recipe and validates every step. Parameters may be
// written as strings or numbers.
func ParseRecipe(data []byte) ([]Step, error) {
	var rf recipeFile
	md, err := toml.Decode(string(data), &rf)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRecipe, err, "invalid recipe")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidRecipe, "unknown recipe keys: %s", strings.Join(keys, ", "))
	}

	steps := make([]Step, 0, len(rf.Filter))
	for i, rs := range rf.Filter {
		if rs.Name == "" {
			return nil, errors.New(errors.ErrCodeInvalidRecipe, "filter %d has no name", i+1)
		}
		s := Step{Name: strings.TrimPrefix(rs.Name, "-")}
		for _, p := range rs.Params {
			v, err := recipeParam(p)
			if err != nil {
				return nil, errors.New(errors.ErrCodeInvalidRecipe, "filter %d (%s): %v", i+1, rs.Name, err)
			}
			s.Params = append(s.Params, v)
		}
		steps = append(steps, s)
	}

	if err := Validate(steps); err != nil {
		return nil, err
	}
	return steps, nil
}

func recipeParam(v any) (string, error) {
	switch p := v.(type) {
	case string:
		return p, nil
	case int64:
		return strconv.FormatInt(p, 10), nil
	case float64:
		return strconv.FormatFloat(p, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported parameter %v (%T)", v, v)
	}
}

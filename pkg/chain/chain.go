package chain

import (
	"strconv"
	"strings"

	"github.com/matzehuels/imgfilter/pkg/errors"
)

// Step is one filter invocation: a registry name plus its raw parameters.
type Step struct {
	Name   string   `json:"name" toml:"name"`
	Params []string `json:"params,omitempty" toml:"params"`
}

// String renders the step in command-line form, e.g. "-crop 800 600".
func (s Step) String() string {
	var b strings.Builder
	b.WriteByte('-')
	b.WriteString(s.Name)
	for _, p := range s.Params {
		b.WriteByte(' ')
		b.WriteString(p)
	}
	return b.String()
}

// Invocation is a parsed command line.
type Invocation struct {
	Input  string
	Output string
	Steps  []Step
}

// Parse parses "<input> <output> [-filter [params...]]..." and validates
// every step. Callers handle the no-argument case (print the filter list)
// before calling Parse.
func Parse(args []string) (*Invocation, error) {
	if len(args) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "input and output files are required")
	}
	inv := &Invocation{Input: args[0], Output: args[1]}
	if err := errors.ValidateInputOutput(inv.Input, inv.Output); err != nil {
		return nil, err
	}

	steps, err := Tokenize(args[2:])
	if err != nil {
		return nil, err
	}
	if err := Validate(steps); err != nil {
		return nil, err
	}
	inv.Steps = steps
	return inv, nil
}

// Tokenize splits filter tokens into steps without validating them. Step
// names are stored without the leading "-". A token such as "-0.5" that
// parses as a number is a parameter of the open step, so range checks can
// report it.
func Tokenize(tokens []string) ([]Step, error) {
	var steps []Step
	for _, tok := range tokens {
		if strings.HasPrefix(tok, "-") && !(len(steps) > 0 && isNumber(tok)) {
			steps = append(steps, Step{Name: tok[1:]})
			continue
		}
		if len(steps) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidFilter, "parameter %q given before any filter name", tok)
		}
		last := &steps[len(steps)-1]
		last.Params = append(last.Params, tok)
	}
	return steps, nil
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// Validate checks every step against the registry: the name must be known
// and the parameters must match the filter's arity and ranges.
func Validate(steps []Step) error {
	_, err := Build(steps, nil)
	return err
}

// Key returns a canonical string for the chain, suitable for cache keys.
// Aliases are resolved, so "-gs" and "-grayscale" give the same key.
func Key(steps []Step) string {
	parts := make([]string, len(steps))
	for i, s := range steps {
		if d, err := Lookup(s.Name); err == nil {
			s.Name = d.Flag
		}
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

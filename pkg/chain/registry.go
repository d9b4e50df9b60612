package chain

import (
	"fmt"
	"strings"

	"github.com/matzehuels/imgfilter/pkg/errors"
	"github.com/matzehuels/imgfilter/pkg/filter"
)

// Descriptor describes one filter the chain can build.
type Descriptor struct {
	Flag        string   // command-line flag without "-", e.g. "gs"
	Title       string   // display name, e.g. "Grayscale"
	Params      []string // parameter names in order
	Description string
	Aliases     []string

	build func(params []string, seed *uint64) (filter.Filter, error)
}

// Usage returns the command-line form, e.g. "-crop width height".
func (d *Descriptor) Usage() string {
	if len(d.Params) == 0 {
		return "-" + d.Flag
	}
	return "-" + d.Flag + " " + strings.Join(d.Params, " ")
}

// New validates params and builds the filter. seed is only used by
// randomized filters.
func (d *Descriptor) New(params []string, seed *uint64) (filter.Filter, error) {
	if err := d.arity(params); err != nil {
		return nil, err
	}
	return d.build(params, seed)
}

func (d *Descriptor) arity(params []string) error {
	if len(params) == len(d.Params) {
		return nil
	}
	switch len(d.Params) {
	case 0:
		return errors.New(errors.ErrCodeInvalidParameter, "%s filter doesn't take any parameters", d.Title)
	case 1:
		return errors.New(errors.ErrCodeInvalidParameter, "%s filter takes 1 parameter: %s", d.Title, d.Params[0])
	default:
		return errors.New(errors.ErrCodeInvalidParameter, "%s filter takes %d parameters: %s",
			d.Title, len(d.Params), strings.Join(d.Params, " and "))
	}
}

var descriptors = []*Descriptor{
	{
		Flag: "crop", Title: "Crop", Params: []string{"width", "height"},
		Description: "Keep the top-left width x height region",
		build: func(p []string, _ *uint64) (filter.Filter, error) {
			w, err := errors.ParseCount("width", p[0])
			if err != nil {
				return nil, err
			}
			h, err := errors.ParseCount("height", p[1])
			if err != nil {
				return nil, err
			}
			return filter.Crop{Width: w, Height: h}, nil
		},
	},
	{
		Flag: "gs", Title: "Grayscale", Aliases: []string{"grayscale"},
		Description: "Replace every channel with the pixel's luma",
		build: func([]string, *uint64) (filter.Filter, error) {
			return filter.Grayscale{}, nil
		},
	},
	{
		Flag: "neg", Title: "Negative", Aliases: []string{"negative"},
		Description: "Invert every channel",
		build: func([]string, *uint64) (filter.Filter, error) {
			return filter.Negative{}, nil
		},
	},
	{
		Flag: "sharp", Title: "Sharpening", Aliases: []string{"sharpen"},
		Description: "Sharpen with a 3x3 kernel",
		build: func([]string, *uint64) (filter.Filter, error) {
			return filter.Sharpen{}, nil
		},
	},
	{
		Flag: "edge", Title: "Edge Detection", Params: []string{"threshold"},
		Description: "Black and white edge map, threshold in [0, 1]",
		build: func(p []string, _ *uint64) (filter.Filter, error) {
			t, err := errors.ParseFloatRange("threshold", p[0], 0, 1)
			if err != nil {
				return nil, err
			}
			return filter.EdgeDetect{Threshold: t}, nil
		},
	},
	{
		Flag: "blur", Title: "Gaussian Blur", Params: []string{"sigma"},
		Description: "Approximate Gaussian blur with four box passes",
		build: func(p []string, _ *uint64) (filter.Filter, error) {
			s, err := errors.ParseFloatRange("sigma", p[0], 0, filter.MaxSigma)
			if err != nil {
				return nil, err
			}
			return filter.GaussianBlur{Sigma: s}, nil
		},
	},
	{
		Flag: "contr", Title: "Auto Contrast", Aliases: []string{"contrast"},
		Description: "Push bright and dark bands apart",
		build: func([]string, *uint64) (filter.Filter, error) {
			return filter.AutoContrast{}, nil
		},
	},
	{
		Flag: "gamma", Title: "Gamma", Params: []string{"sigma"},
		Description: "Raise every channel to the power sigma in [0.1, 1]",
		build: func(p []string, _ *uint64) (filter.Filter, error) {
			s, err := errors.ParseFloatRange("sigma", p[0], 0.1, 1)
			if err != nil {
				return nil, err
			}
			return filter.Gamma{Sigma: s}, nil
		},
	},
	{
		Flag: "pixel", Title: "Pixelate", Params: []string{"size"}, Aliases: []string{"pixelate"},
		Description: "Average (2*size+1)-square blocks",
		build: func(p []string, _ *uint64) (filter.Filter, error) {
			n, err := errors.ParseCount("pixel size", p[0])
			if err != nil {
				return nil, err
			}
			return filter.Pixelate{Size: n}, nil
		},
	},
	{
		Flag: "crystal", Title: "Crystallization", Params: []string{"size"}, Aliases: []string{"crystallize"},
		Description: "Voronoi shards seeded on a size x size grid",
		build: func(p []string, seed *uint64) (filter.Filter, error) {
			n, err := errors.ParseCount("shard size", p[0])
			if err != nil {
				return nil, err
			}
			if n == 0 {
				return nil, errors.New(errors.ErrCodeInvalidParameter, "shard size must be positive")
			}
			if seed != nil {
				return filter.NewCrystallizeSeeded(n, *seed), nil
			}
			return filter.NewCrystallize(n), nil
		},
	},
}

var byName = func() map[string]*Descriptor {
	m := make(map[string]*Descriptor)
	for _, d := range descriptors {
		m[d.Flag] = d
		for _, a := range d.Aliases {
			m[a] = d
		}
	}
	return m
}()

// Descriptors returns all filters in display order.
func Descriptors() []*Descriptor {
	return append([]*Descriptor(nil), descriptors...)
}

// Lookup resolves a flag or alias, with or without a leading "-".
func Lookup(name string) (*Descriptor, error) {
	if d, ok := byName[strings.TrimPrefix(name, "-")]; ok {
		return d, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFilter, "filter %q is not supported (available: %s)", name, flags())
}

func flags() string {
	names := make([]string, len(descriptors))
	for i, d := range descriptors {
		names[i] = "-" + d.Flag
	}
	return strings.Join(names, ", ")
}

// Build turns steps into filters, validating each one. When seed is non-nil
// randomized filters are seeded from it; the k-th step gets seed+k so two
// crystallize steps in one chain draw different anchors.
func Build(steps []Step, seed *uint64) ([]filter.Filter, error) {
	filters := make([]filter.Filter, 0, len(steps))
	for i, s := range steps {
		d, err := Lookup(s.Name)
		if err != nil {
			return nil, err
		}
		var stepSeed *uint64
		if seed != nil {
			v := *seed + uint64(i)
			stepSeed = &v
		}
		f, err := d.New(s.Params, stepSeed)
		if err != nil {
			return nil, errors.New(errors.GetCode(err), "step %d (-%s): %s", i+1, d.Flag, errors.UserMessage(err))
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// Help renders the numbered filter list shown when no arguments are given.
func Help() string {
	var b strings.Builder
	b.WriteString("You can choose filters from the following list:\n")
	for i, d := range descriptors {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, d.Title, d.Usage())
	}
	b.WriteString("Filters can be combined and run in the order given.\n")
	return b.String()
}

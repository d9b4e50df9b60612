package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/imgfilter/pkg/chain"
	"github.com/matzehuels/imgfilter/pkg/pipeline"
)

// runOpts holds the flags shared by the root and apply commands.
type runOpts struct {
	seed     uint64 // seed for randomized filters; only used when set
	recipe   string // TOML recipe whose steps run before the command-line steps
	noCache  bool   // disable the result cache
	refresh  bool   // skip cache reads but still store the result
	redisURL string // Redis cache URL (default $IMGFILTER_REDIS_URL)
}

func (o *runOpts) register(cmd *cobra.Command) {
	cmd.Flags().Uint64Var(&o.seed, "seed", 0, "seed for randomized filters (makes -crystal reproducible and cacheable)")
	cmd.Flags().StringVar(&o.recipe, "recipe", "", "TOML recipe file with filters to run first")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "recompute even if a cached result exists")
	cmd.Flags().StringVar(&o.redisURL, "redis-url", "", "Redis cache URL (default $"+envRedisURL+")")
}

// runRoot implements the classic "<input> <output> [-filter ...]" form.
func (c *CLI) runRoot(cmd *cobra.Command, args []string, ro *runOpts) error {
	if len(args) == 0 {
		printFilterList()
		return nil
	}
	inv, err := chain.Parse(args)
	if err != nil {
		return err
	}
	return c.runChain(cmd, ro, inv.Input, inv.Output, inv.Steps)
}

// applyCommand creates the apply command, which takes filters as flag
// values so it composes with scripts that build argument lists.
func (c *CLI) applyCommand() *cobra.Command {
	var (
		ro      runOpts
		filters []string
	)

	cmd := &cobra.Command{
		Use:   "apply <input.bmp> <output.bmp>",
		Short: "Apply filters given with --filter or --recipe",
		Long: `Apply filters given with --filter or --recipe.

Each --filter value is one step in command-line form. Steps from --recipe
run first, then --filter steps in the order given.`,
		Example: `  imgfilter apply in.bmp out.bmp --filter "-crop 640 480" --filter -neg
  imgfilter apply in.bmp out.bmp --recipe poster.toml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var tokens []string
			for _, f := range filters {
				tokens = append(tokens, strings.Fields(f)...)
			}
			inv, err := chain.Parse(append([]string{args[0], args[1]}, tokens...))
			if err != nil {
				return err
			}
			return c.runChain(cmd, &ro, inv.Input, inv.Output, inv.Steps)
		},
	}

	ro.register(cmd)
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, `filter step, e.g. "-blur 2" (repeatable)`)
	return cmd
}

// runChain loads the recipe, runs the pipeline and reports the result.
func (c *CLI) runChain(cmd *cobra.Command, ro *runOpts, input, output string, steps []chain.Step) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = withLogger(ctx, c.Logger)

	if ro.recipe != "" {
		recipeSteps, err := chain.LoadRecipe(ro.recipe)
		if err != nil {
			return err
		}
		steps = append(recipeSteps, steps...)
	}
	if len(steps) == 0 {
		printInfo("No filters given; the image is re-encoded unchanged")
	}

	opts := pipeline.Options{
		Input:   input,
		Output:  output,
		Steps:   steps,
		Refresh: ro.refresh,
		Logger:  c.Logger,
	}
	if cmd.Flags().Changed("seed") {
		seed := ro.seed
		opts.Seed = &seed
	} else if hasRandomStep(steps) {
		printWarning("-crystal without --seed gives a different result on every run and is not cached")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, ro.noCache, ro.redisURL, "")
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer runner.Close()

	return c.execute(ctx, runner, opts)
}

func (c *CLI) execute(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) error {
	logger := loggerFromContext(ctx)
	logger.Debugf("Running %d filters on %s", len(opts.Steps), opts.Input)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Filtering %s...", opts.Input))
	restore := withFilterProgress(&filterProgress{spinner: spinner, total: len(opts.Steps)})
	defer restore()
	spinner.Start()

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
		} else {
			spinner.StopWithError("Could not filter " + opts.Input)
		}
		return err
	}
	spinner.StopWithSuccess("Filtered image written")
	prog.done(fmt.Sprintf("Applied %d filters", len(opts.Steps)))

	printFile(opts.Output)
	printStats(result)
	return nil
}

// hasRandomStep reports whether any step draws random numbers.
func hasRandomStep(steps []chain.Step) bool {
	for _, s := range steps {
		if d, err := chain.Lookup(s.Name); err == nil && d.Flag == "crystal" {
			return true
		}
	}
	return false
}

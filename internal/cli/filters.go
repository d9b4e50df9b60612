package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/imgfilter/pkg/chain"
)

// filterInfo is the JSON form of a chain.Descriptor.
type filterInfo struct {
	Flag        string   `json:"flag"`
	Title       string   `json:"title"`
	Usage       string   `json:"usage"`
	Params      []string `json:"params"`
	Aliases     []string `json:"aliases,omitempty"`
	Description string   `json:"description"`
}

func filterInfos() []filterInfo {
	ds := chain.Descriptors()
	out := make([]filterInfo, 0, len(ds))
	for _, d := range ds {
		params := d.Params
		if params == nil {
			params = []string{}
		}
		out = append(out, filterInfo{
			Flag:        d.Flag,
			Title:       d.Title,
			Usage:       d.Usage(),
			Params:      params,
			Aliases:     d.Aliases,
			Description: d.Description,
		})
	}
	return out
}

// filtersCommand creates the filters command, which lists the registry.
func (c *CLI) filtersCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "filters",
		Short: "List the available filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(filterInfos())
			}
			fmt.Fprintln(cmd.OutOrStdout(), filterTable())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the filters as JSON")
	return cmd
}

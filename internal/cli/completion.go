package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/imgfilter/pkg/chain"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for imgfilter.

Bash:
  $ source <(imgfilter completion bash)

Zsh:
  $ imgfilter completion zsh > "${fpath[1]}/_imgfilter"

Fish:
  $ imgfilter completion fish > ~/.config/fish/completions/imgfilter.fish

PowerShell:
  PS> imgfilter completion powershell | Out-String | Invoke-Expression

Input and output arguments complete to .bmp files; later arguments complete
to filter names.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

// completeChainArgs completes the two bitmap paths, then filter flags with
// their usage as the description.
func completeChainArgs(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) < 2 {
		return []string{"bmp"}, cobra.ShellCompDirectiveFilterFileExt
	}
	var out []string
	for _, d := range chain.Descriptors() {
		// cobra splits a completion from its description on the tab.
		out = append(out, "-"+d.Flag+"\t"+d.Usage()+"  "+d.Description)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/auroramap/pkg/pipeline"
)

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for auroramap.

Bash:
  $ source <(auroramap completion bash)

Zsh:
  $ auroramap completion zsh > "${fpath[1]}/_auroramap"

Fish:
  $ auroramap completion fish > ~/.config/fish/completions/auroramap.fish

PowerShell:
  PS> auroramap completion powershell | Out-String | Invoke-Expression

Format flags such as "render --format" complete comma-separated lists.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             completionShells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// completeFormats completes the last element of a comma-separated format
// list, skipping formats already named.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix := ""
	current := toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix, current = toComplete[:i+1], toComplete[i+1:]
	}
	used := make(map[string]bool)
	for _, f := range strings.Split(prefix, ",") {
		used[strings.TrimSpace(f)] = true
	}

	var out []string
	for _, f := range pipeline.ValidFormats {
		if used[f] || !strings.HasPrefix(f, current) {
			continue
		}
		out = append(out, prefix+f)
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

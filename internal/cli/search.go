package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/auroramap/pkg/errors"
	"github.com/matzehuels/auroramap/pkg/mapview"
	"github.com/matzehuels/auroramap/pkg/pipeline"
	"github.com/matzehuels/auroramap/pkg/render"
)

// searchCommand finds systems by name and prints their detail panels.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		src  sourceFlags
		info bool
	)

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Find systems by name",
		Long: fmt.Sprintf(`Find systems by name.

Matching ignores case and lists at most %d systems in id order. With --info
the detail panel of each match is printed.`, mapview.MaxResults),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := strings.Join(args, " ")
			if err := errors.ValidateSearchTerm(term); err != nil {
				return err
			}
			opts := c.baseOptions()
			src.apply(&opts)
			return c.runSearch(cmd.Context(), opts, src.noCache, term, info)
		},
	}

	src.register(cmd)
	cmd.Flags().BoolVarP(&info, "info", "i", false, "print the detail panel of each match")

	return cmd
}

func (c *CLI) runSearch(ctx context.Context, opts pipeline.Options, noCache bool, term string, info bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := runner.ExecuteLayout(ctx, opts)
	if err != nil {
		return err
	}

	ids := mapview.Search(res.Graph, term)
	if len(ids) == 0 {
		printWarning("No system matches %q", term)
		return nil
	}
	for _, id := range ids {
		n, _ := res.Graph.Node(id)
		if !info {
			printKeyValue(strconv.FormatInt(id, 10), n.Name)
			continue
		}
		panel, _ := render.Describe(res.Graph, res.Layout.RootID, id)
		fmt.Println(StyleTitle.Render(n.Name))
		fmt.Println(panel.String())
		printNewline()
	}
	return nil
}

package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/auroramap/pkg/errors"
	"github.com/matzehuels/auroramap/pkg/pipeline"
	"github.com/matzehuels/auroramap/pkg/source/aurora"
)

// sourceFlags selects the dataset a command works on. Unset flags fall
// back to the [source] section of the config file.
type sourceFlags struct {
	save    string
	dataset string
	game    int64
	race    int64
	root    int64
	refresh bool
	noCache bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.save, "save", "s", "", "Aurora save database (AuroraDB.db)")
	cmd.Flags().StringVarP(&f.dataset, "dataset", "d", "", "dataset JSON written by 'extract'")
	cmd.Flags().Int64Var(&f.game, "game", 0, "game id (default: the only game in the save)")
	cmd.Flags().Int64Var(&f.race, "race", 0, "race id (default: the only player race)")
	cmd.Flags().Int64Var(&f.root, "root", 0, "root system id (default: the race capital)")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "re-read the save instead of using the cached dataset")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.MarkFlagsMutuallyExclusive("save", "dataset")
}

// apply overlays the flags on opts.
func (f *sourceFlags) apply(opts *pipeline.Options) {
	switch {
	case f.save != "":
		opts.SavePath, opts.DatasetPath = f.save, ""
	case f.dataset != "":
		opts.SavePath, opts.DatasetPath = "", f.dataset
	}
	if f.game != 0 {
		opts.GameID = f.game
	}
	if f.race != 0 {
		opts.RaceID = f.race
	}
	if f.root != 0 {
		opts.RootID = f.root
	}
	opts.Refresh = opts.Refresh || f.refresh
}

// savePath returns the save named by the flag or the config file.
func (c *CLI) savePath(flag string) (string, error) {
	path := flag
	if path == "" {
		path = c.cfg.Source.Save
	}
	if path == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "no save given: pass --save or set source.save")
	}
	if err := errors.ValidateSavePath(path); err != nil {
		return "", err
	}
	return path, nil
}

// gamesCommand lists the games stored in a save.
func (c *CLI) gamesCommand() *cobra.Command {
	var save string
	cmd := &cobra.Command{
		Use:   "games",
		Short: "List the games in an Aurora save",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.savePath(save)
			if err != nil {
				return err
			}
			return c.runGames(cmd.Context(), path)
		},
	}
	cmd.Flags().StringVarP(&save, "save", "s", "", "Aurora save database (AuroraDB.db)")
	return cmd
}

func (c *CLI) runGames(ctx context.Context, path string) error {
	src, err := aurora.Open(ctx, path, aurora.WithLogger(c.Logger))
	if err != nil {
		return err
	}
	defer src.Close()

	games, err := src.ListGames(ctx)
	if err != nil {
		return err
	}
	if len(games) == 0 {
		printWarning("No games in %s", path)
		return nil
	}
	rows := make([][]string, 0, len(games))
	for _, g := range games {
		rows = append(rows, []string{strconv.FormatInt(g.ID, 10), g.Name})
	}
	fmt.Println(StyleTitle.Render("Games"))
	printTable([]string{"ID", "Game"}, rows)
	printNewline()
	printNextStep("List races", fmt.Sprintf("%s races --save %s --game %d", appName, path, games[0].ID))
	return nil
}

// racesCommand lists the player races of a game.
func (c *CLI) racesCommand() *cobra.Command {
	var (
		save string
		game int64
	)
	cmd := &cobra.Command{
		Use:   "races",
		Short: "List the player races of a game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.savePath(save)
			if err != nil {
				return err
			}
			if game == 0 {
				game = c.cfg.Source.Game
			}
			return c.runRaces(cmd.Context(), path, game)
		},
	}
	cmd.Flags().StringVarP(&save, "save", "s", "", "Aurora save database (AuroraDB.db)")
	cmd.Flags().Int64Var(&game, "game", 0, "game id (default: the only game in the save)")
	return cmd
}

func (c *CLI) runRaces(ctx context.Context, path string, gameID int64) error {
	src, err := aurora.Open(ctx, path, aurora.WithLogger(c.Logger))
	if err != nil {
		return err
	}
	defer src.Close()

	if gameID == 0 {
		games, err := src.ListGames(ctx)
		if err != nil {
			return err
		}
		if len(games) != 1 {
			return errors.New(errors.ErrCodeInvalidInput, "game id required: save holds %d games", len(games))
		}
		gameID = games[0].ID
	}
	races, err := src.ListRaces(ctx, gameID)
	if err != nil {
		return err
	}
	if len(races) == 0 {
		printWarning("No player races in game %d", gameID)
		return nil
	}
	rows := make([][]string, 0, len(races))
	for _, r := range races {
		rows = append(rows, []string{strconv.FormatInt(r.ID, 10), r.Name})
	}
	fmt.Println(StyleTitle.Render(fmt.Sprintf("Races in game %d", gameID)))
	printTable([]string{"ID", "Race"}, rows)
	return nil
}

package pipeline

import (
	"context"
	"os"

	"github.com/matzehuels/auroramap/pkg/cache"
	"github.com/matzehuels/auroramap/pkg/errors"
	"github.com/matzehuels/auroramap/pkg/source/aurora"
	"github.com/matzehuels/auroramap/pkg/starmap"
)

// LoadDataset reads the dataset named by opts without caching.
func LoadDataset(ctx context.Context, opts Options) (*starmap.Dataset, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}
	if opts.DatasetPath != "" {
		if _, err := os.Stat(opts.DatasetPath); os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "dataset not found: %s", opts.DatasetPath)
		}
		ds, err := starmap.ReadDatasetFile(opts.DatasetPath)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read dataset %s", opts.DatasetPath)
		}
		return ds, nil
	}

	src, err := aurora.Open(ctx, opts.SavePath, aurora.WithLogger(opts.Logger))
	if err != nil {
		return nil, err
	}
	defer src.Close()

	game, race, err := ResolveSelection(ctx, src, opts.GameID, opts.RaceID)
	if err != nil {
		return nil, err
	}
	return src.Load(ctx, game, race)
}

// ResolveSelection fills in a zero game or race id when the save offers
// exactly one choice.
func ResolveSelection(ctx context.Context, src *aurora.Source, gameID, raceID int64) (int64, int64, error) {
	if gameID == 0 {
		games, err := src.ListGames(ctx)
		if err != nil {
			return 0, 0, err
		}
		if len(games) != 1 {
			return 0, 0, errors.New(errors.ErrCodeInvalidInput, "game id required: save holds %d games", len(games))
		}
		gameID = games[0].ID
	}
	if raceID == 0 {
		races, err := src.ListRaces(ctx, gameID)
		if err != nil {
			return 0, 0, err
		}
		if len(races) != 1 {
			return 0, 0, errors.New(errors.ErrCodeInvalidInput, "race id required: game %d has %d races", gameID, len(races))
		}
		raceID = races[0].ID
	}
	return gameID, raceID, nil
}

// datasetKeyOpts identifies the file version the dataset comes from. A
// save written by the game gets a new modification time and so a new key.
func datasetKeyOpts(opts Options) (cache.DatasetKeyOpts, error) {
	path := opts.SavePath
	if opts.DatasetPath != "" {
		path = opts.DatasetPath
	}
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cache.DatasetKeyOpts{}, errors.New(errors.ErrCodeFileNotFound, "not found: %s", path)
		}
		return cache.DatasetKeyOpts{}, errors.Wrap(errors.ErrCodeSource, err, "stat %s", path)
	}
	return cache.DatasetKeyOpts{
		Path:    path,
		ModTime: fi.ModTime().UnixNano(),
		Size:    fi.Size(),
	}, nil
}

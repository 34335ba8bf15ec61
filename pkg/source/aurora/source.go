package aurora

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"github.com/matzehuels/auroramap/pkg/errors"
	"github.com/matzehuels/auroramap/pkg/starmap"
)

// dsnPragmas opens the save without ever writing to it; Aurora itself may
// hold the file open.
const dsnPragmas = "?_pragma=busy_timeout(5000)&_pragma=query_only(1)"

// Game is a saved game.
type Game struct {
	ID   int64  `json:"gameId"`
	Name string `json:"gameName"`
}

// Race is a race within a game.
type Race struct {
	ID   int64  `json:"raceId"`
	Name string `json:"raceName"`
}

// Source reads one save database. It is safe for concurrent use.
type Source struct {
	db     *sql.DB
	path   string
	logger *log.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithLogger sets the logger used for query timings.
func WithLogger(l *log.Logger) Option {
	return func(s *Source) { s.logger = l }
}

// Open opens the save database at path read-only.
func Open(ctx context.Context, path string, opts ...Option) (*Source, error) {
	if err := errors.ValidateSavePath(path); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "save not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeSource, err, "stat %s", path)
	}

	db, err := sql.Open("sqlite", path+dsnPragmas)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSource, err, "open %s", path)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeSource, err, "open %s", path)
	}
	s := FromDB(db, opts...)
	s.path = path
	return s, nil
}

// FromDB wraps an already open database.
func FromDB(db *sql.DB, opts ...Option) *Source {
	s := &Source{db: db, logger: log.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the file the source was opened from, or "".
func (s *Source) Path() string { return s.path }

// Close closes the database.
func (s *Source) Close() error { return s.db.Close() }

// ListGames returns all games in the save.
func (s *Source) ListGames(ctx context.Context) ([]Game, error) {
	rows, err := s.db.QueryContext(ctx, queryGames)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSource, err, "list games")
	}
	defer rows.Close()

	var out []Game
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeSource, err, "list games")
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSource, err, "list games")
	}
	return out, nil
}

// ListRaces returns the races of a game.
func (s *Source) ListRaces(ctx context.Context, gameID int64) ([]Race, error) {
	rows, err := s.db.QueryContext(ctx, queryRaces, gameID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSource, err, "list races")
	}
	defer rows.Close()

	var out []Race
	for rows.Next() {
		var r Race
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeSource, err, "list races")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSource, err, "list races")
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeGameNotFound, "game %d has no races", gameID)
	}
	return out, nil
}

// Load extracts everything needed to draw the map of one race. The three
// extraction queries run concurrently.
func (s *Source) Load(ctx context.Context, gameID, raceID int64) (*starmap.Dataset, error) {
	if err := errors.ValidateID("game", gameID); err != nil {
		return nil, err
	}
	if err := errors.ValidateID("race", raceID); err != nil {
		return nil, err
	}

	start := time.Now()
	ds := &starmap.Dataset{GameID: gameID, RaceID: raceID}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		systems, err := s.SystemConnections(ctx, gameID, raceID)
		ds.Systems = systems
		return err
	})
	eg.Go(func() error {
		pop, err := s.Population(ctx, gameID, raceID)
		ds.Population = pop
		return err
	})
	eg.Go(func() error {
		id, err := s.CapitalSystemID(ctx, gameID, raceID)
		ds.CapitalSystemID = id
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSource, err, "failed to load game %d race %d", gameID, raceID)
	}

	s.logger.Debug("loaded save data",
		"game", gameID,
		"race", raceID,
		"systems", len(ds.Systems),
		"colonies", len(ds.Population.Colonies),
		"duration", time.Since(start))
	return ds, nil
}

// SystemConnections returns the race's surveyed systems with their links,
// ordered by system name. Games without any jump links (a lone home
// system) yield the surveyed systems without connections.
func (s *Source) SystemConnections(ctx context.Context, gameID, raceID int64) ([]starmap.SystemConnection, error) {
	rows, err := s.db.QueryContext(ctx, queryLinks, raceID, gameID, gameID, raceID, gameID)
	if err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}
	defer rows.Close()

	var out []starmap.SystemConnection
	index := make(map[int64]int)
	for rows.Next() {
		var (
			srcID, dstID     int64
			srcName, dstName sql.NullString
			gate             int64
		)
		if err := rows.Scan(&srcID, &srcName, &dstID, &dstName, &gate); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		i, ok := index[srcID]
		if !ok {
			i = len(out)
			index[srcID] = i
			out = append(out, starmap.SystemConnection{SystemID: srcID, SystemName: srcName.String, ConnectedTo: []starmap.Link{}})
		}
		addLink(&out[i], starmap.Link{SystemID: dstID, SystemName: dstName.String, GateRaceID: gate})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read links: %w", err)
	}
	rows.Close()

	if len(out) > 0 {
		return out, nil
	}
	return s.surveyedSystems(ctx, gameID, raceID)
}

// addLink appends l unless c already links to that system, in which case
// a gate on the new row fills a missing one.
func addLink(c *starmap.SystemConnection, l starmap.Link) {
	for i := range c.ConnectedTo {
		if c.ConnectedTo[i].SystemID == l.SystemID {
			if c.ConnectedTo[i].GateRaceID == 0 {
				c.ConnectedTo[i].GateRaceID = l.GateRaceID
			}
			return
		}
	}
	c.ConnectedTo = append(c.ConnectedTo, l)
	c.ConnectionCount = len(c.ConnectedTo)
}

func (s *Source) surveyedSystems(ctx context.Context, gameID, raceID int64) ([]starmap.SystemConnection, error) {
	rows, err := s.db.QueryContext(ctx, querySurveyed+" ORDER BY rs.Name", raceID, gameID, gameID, raceID)
	if err != nil {
		return nil, fmt.Errorf("query systems: %w", err)
	}
	defer rows.Close()

	out := []starmap.SystemConnection{}
	for rows.Next() {
		var (
			id   int64
			name sql.NullString
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan system: %w", err)
		}
		out = append(out, starmap.SystemConnection{SystemID: id, SystemName: name.String, ConnectedTo: []starmap.Link{}})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read systems: %w", err)
	}
	return out, nil
}

// Population returns the race's population aggregate.
func (s *Source) Population(ctx context.Context, gameID, raceID int64) (*starmap.PopulationData, error) {
	pd := &starmap.PopulationData{Colonies: []starmap.ColonyRecord{}, SystemDistribution: []starmap.SystemDistribution{}}

	if err := s.db.QueryRowContext(ctx, queryRaceName, raceID, gameID).Scan(&pd.RaceName); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New(errors.ErrCodeNotFound, "race %d not found in game %d", raceID, gameID)
		}
		return nil, fmt.Errorf("query race: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, queryPopulationSummary, raceID, gameID).
		Scan(&pd.Summary.ColonyCount, &pd.Summary.TotalPopulation); err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}

	if err := s.colonies(ctx, gameID, raceID, pd); err != nil {
		return nil, err
	}
	if err := s.distribution(ctx, gameID, raceID, pd); err != nil {
		return nil, err
	}
	return pd, nil
}

func (s *Source) colonies(ctx context.Context, gameID, raceID int64, pd *starmap.PopulationData) error {
	rows, err := s.db.QueryContext(ctx, queryColonies, raceID, gameID)
	if err != nil {
		return fmt.Errorf("query colonies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c      starmap.ColonyRecord
			system sql.NullString
		)
		if err := rows.Scan(&c.PopulationID, &c.Name, &c.Population, &system, &c.BodyName,
			&c.ControllingRaceID, &c.ControllingRaceName); err != nil {
			return fmt.Errorf("scan colony: %w", err)
		}
		c.SystemName = system.String
		pd.Colonies = append(pd.Colonies, c)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read colonies: %w", err)
	}
	return nil
}

func (s *Source) distribution(ctx context.Context, gameID, raceID int64, pd *starmap.PopulationData) error {
	rows, err := s.db.QueryContext(ctx, queryDistribution, raceID, gameID)
	if err != nil {
		return fmt.Errorf("query distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			d     starmap.SystemDistribution
			name  sql.NullString
			names sql.NullString
		)
		if err := rows.Scan(&name, &d.ColonyCount, &d.TotalPopulation, &names); err != nil {
			return fmt.Errorf("scan distribution: %w", err)
		}
		d.SystemName = name.String
		d.Colonies = []string{}
		if names.Valid && names.String != "" {
			d.Colonies = strings.Split(names.String, colonySeparator)
		}
		pd.SystemDistribution = append(pd.SystemDistribution, d)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read distribution: %w", err)
	}
	return nil
}

// CapitalSystemID returns the system holding the race's capital, or 0 if
// the race has none.
func (s *Source) CapitalSystemID(ctx context.Context, gameID, raceID int64) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, queryCapital, gameID, raceID).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("query capital: %w", err)
	}
	return id, nil
}

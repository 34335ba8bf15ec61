// Package pipeline provides the star map pipeline shared by the CLI, the
// terminal viewer and the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read a [starmap.Dataset] from an Aurora save or a JSON file
//  2. Layout: build the graph, assign faction colors, place and relax
//  3. Render: generate output in various formats (SVG, DOT, PNG, PDF, JSON)
//
// Each stage is cached through a [cache.Cache] keyed by everything that
// changes its output. A [Loader] wraps a [Runner] for callers that reload
// repeatedly, publishing only the latest result.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    SavePath: "AuroraDB.db",
//	    GameID:   1,
//	    RaceID:   10,
//	    Formats:  []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/auroramap/pkg/cache"
	"github.com/matzehuels/auroramap/pkg/errors"
	"github.com/matzehuels/auroramap/pkg/graph"
	"github.com/matzehuels/auroramap/pkg/layout"
	"github.com/matzehuels/auroramap/pkg/palette"
	"github.com/matzehuels/auroramap/pkg/starmap"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultPNGScale is the rasterization factor of PNG output.
	DefaultPNGScale = 2.0

	// DefaultSeed seeds faction color generation.
	DefaultSeed = palette.DefaultSeed
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats lists the supported output formats.
var ValidFormats = []string{FormatSVG, FormatDOT, FormatPNG, FormatPDF, FormatJSON}

// Source names reported to hooks and logs.
const (
	SourceAurora = "aurora"
	SourceFile   = "file"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// Load options. Exactly one of SavePath and DatasetPath is set.
	SavePath    string `json:"save_path,omitempty"`
	DatasetPath string `json:"dataset_path,omitempty"`
	GameID      int64  `json:"game_id,omitempty"`
	RaceID      int64  `json:"race_id,omitempty"`
	Refresh     bool   `json:"refresh,omitempty"`

	// Layout options
	RootID int64         `json:"root_id,omitempty"`
	Layout layout.Config `json:"layout"`
	Seed   uint64        `json:"seed,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Width       float64  `json:"width,omitempty"`
	Height      float64  `json:"height,omitempty"`
	Scale       float64  `json:"scale,omitempty"`
	NoLabels    bool     `json:"no_labels,omitempty"`
	Legend      bool     `json:"legend,omitempty"`
	Interactive bool     `json:"interactive,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Dataset *starmap.Dataset
	Graph   *starmap.Graph
	Layout  *layout.Result

	// Document is the serialized layout, as cached and served.
	Document graph.Layout

	// DatasetHash is the content hash of the dataset.
	DatasetHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	SystemCount int
	EdgeCount   int
	LoadTime    time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool
	LayoutHit bool
	RenderHit bool // all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, dot, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for
// the full pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks the dataset source.
func (o *Options) ValidateForLoad() error {
	switch {
	case o.SavePath == "" && o.DatasetPath == "":
		return errors.New(errors.ErrCodeInvalidInput, "a save path or dataset path is required")
	case o.SavePath != "" && o.DatasetPath != "":
		return errors.New(errors.ErrCodeInvalidInput, "save path and dataset path are mutually exclusive")
	case o.SavePath != "":
		if err := errors.ValidateSavePath(o.SavePath); err != nil {
			return err
		}
	}
	if o.GameID < 0 || o.RaceID < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "game and race ids must not be negative")
	}
	o.setLogger()
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	o.Layout.SetDefaults()
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	o.setLogger()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultPNGScale
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for layout and rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if o.Width < 0 || o.Height < 0 || o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "image size and scale must not be negative")
	}
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Source returns the name of the dataset source.
func (o *Options) Source() string {
	if o.DatasetPath != "" {
		return SourceFile
	}
	return SourceAurora
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		RootID:       o.RootID,
		RootName:     o.Layout.RootName,
		BaseRadius:   o.Layout.BaseRadius,
		LevelSpacing: o.Layout.LevelSpacing,
		Iterations:   o.Layout.Iterations,
		Repulsion:    o.Layout.Repulsion,
		Threshold:    o.Layout.Threshold,
		MinDistance:  o.Layout.MinDistance,
		Sectors:      o.Layout.Sectors,
		Seed:         o.Seed,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:      format,
		Width:       o.Width,
		Height:      o.Height,
		Labels:      !o.NoLabels,
		Legend:      o.Legend,
		Interactive: o.Interactive,
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}

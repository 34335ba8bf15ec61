package cache

// Keyer builds cache keys for each pipeline stage.
type Keyer interface {
	DatasetKey(game, race int64, opts DatasetKeyOpts) string
	LayoutKey(datasetHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DatasetKeyOpts identifies the save file version a dataset was read from.
type DatasetKeyOpts struct {
	Path    string `json:"path"`
	ModTime int64  `json:"mod_time"`
	Size    int64  `json:"size"`
}

// LayoutKeyOpts holds every layout parameter.
type LayoutKeyOpts struct {
	RootID       int64   `json:"root_id"`
	RootName     string  `json:"root_name"`
	BaseRadius   float64 `json:"base_radius"`
	LevelSpacing float64 `json:"level_spacing"`
	Iterations   int     `json:"iterations"`
	Repulsion    float64 `json:"repulsion"`
	Threshold    float64 `json:"threshold"`
	MinDistance  float64 `json:"min_distance"`
	Sectors      int     `json:"sectors"`
	Seed         uint64  `json:"seed"`
}

// ArtifactKeyOpts holds every render parameter of one output format.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Width       float64 `json:"width,omitempty"`
	Height      float64 `json:"height,omitempty"`
	Scale       float64 `json:"scale,omitempty"`
	Labels      bool    `json:"labels"`
	Legend      bool    `json:"legend"`
	Interactive bool    `json:"interactive"`
}

// DefaultKeyer hashes stage inputs into "stage:sha256" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// DatasetKey returns the key of an extracted dataset.
func (DefaultKeyer) DatasetKey(game, race int64, opts DatasetKeyOpts) string {
	return hashKey("dataset", game, race, opts)
}

// LayoutKey returns the key of a layout computed from a dataset.
func (DefaultKeyer) LayoutKey(datasetHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", datasetHash, opts)
}

// ArtifactKey returns the key of a rendered output.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

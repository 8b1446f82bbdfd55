package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pdftotext/2.0").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// DownloadDelay is the delay between consecutive downloads (default 1s).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	// DestDir is the directory downloaded PDFs are written to (contains metadata/).
	DestDir string `json:"dest_dir" yaml:"dest_dir"`
}

// ExtractionMode selects how text is pulled out of a PDF.
type ExtractionMode string

const (
	// ModeSmart runs every available backend and keeps the result with the
	// best Korean quality score.
	ModeSmart ExtractionMode = "smart"

	ModeTextLayer ExtractionMode = "textlayer"
	ModeLayout    ExtractionMode = "layout"
	ModePdfcpu    ExtractionMode = "pdfcpu"
	ModeRawScan   ExtractionMode = "rawscan"
	ModePoppler   ExtractionMode = "poppler"
)

// RepairConfig holds the Korean text recovery switches. All default to on;
// each maps to one stage of the repair pipeline.
type RepairConfig struct {
	// Enabled turns the whole repair pipeline on or off.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Normalize applies Unicode NFC normalization (composes decomposed jamo).
	Normalize bool `json:"normalize" yaml:"normalize"`

	// ReorderJamo swaps displaced vowel-before-consonant jamo pairs.
	ReorderJamo bool `json:"reorder_jamo" yaml:"reorder_jamo"`

	// StripInvisible removes surrogates, control and zero-width characters.
	StripInvisible bool `json:"strip_invisible" yaml:"strip_invisible"`

	// CollapseWhitespace squeezes space runs and blank-line runs.
	CollapseWhitespace bool `json:"collapse_whitespace" yaml:"collapse_whitespace"`
}

// DefaultRepairConfig returns the repair switches the converter ships with.
func DefaultRepairConfig() RepairConfig {
	return RepairConfig{
		Enabled:            true,
		Normalize:          true,
		ReorderJamo:        true,
		StripInvisible:     true,
		CollapseWhitespace: true,
	}
}

// ConversionConfig holds settings for the convert stage.
type ConversionConfig struct {
	// Mode selects the extraction backend, or "smart" for automatic selection.
	Mode ExtractionMode `json:"mode" yaml:"mode"`

	// OutputDir is where .txt files are written. Empty means next to the
	// first input file.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Merge writes all inputs into a single output file.
	Merge bool `json:"merge" yaml:"merge"`

	// PageSeparators inserts a "--- 페이지 N ---" line before each page.
	PageSeparators bool `json:"page_separators" yaml:"page_separators"`

	// Repair configures the Korean recovery pipeline.
	Repair RepairConfig `json:"repair" yaml:"repair"`
}

// IndexConfig holds settings for the conversion index.
type IndexConfig struct {
	// IndexDir is the directory holding the SQLite index (pdftotext.db).
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// DistConfig holds settings for the build/release pipeline.
type DistConfig struct {
	// Owner and Repo identify the GitHub repository releases are published to.
	Owner string `json:"owner" yaml:"owner"`
	Repo  string `json:"repo" yaml:"repo"`

	// DistDir is the staging directory for built artifacts (default "dist").
	DistDir string `json:"dist_dir" yaml:"dist_dir"`

	// Token authenticates release publication. Usually supplied via
	// GITHUB_TOKEN or .secrets/github-token rather than the config file.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Fetch      FetchConfig      `json:"fetch" yaml:"fetch"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion"`
	Index      IndexConfig      `json:"index" yaml:"index"`
	Dist       DistConfig       `json:"dist" yaml:"dist"`
}

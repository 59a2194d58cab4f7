// Package batch localizes many assets at once: file discovery, a bounded
// worker pool with one pipeline per worker, and result formatting.
package batch

import "runtime"

// Config holds batch processing settings.
type Config struct {
	// Workers is the number of parallel localizers. Each worker owns its
	// pipeline; assets never share a canvas.
	Workers int

	// File discovery settings
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Output settings
	Format     string // text, json or csv
	OutputFile string
	Quiet      bool
}

// DefaultConfig returns batch settings for local runs.
func DefaultConfig() *Config {
	return &Config{
		Workers: runtime.NumCPU(),
		Format:  "text",
	}
}

package api

// Config is the user-facing configuration of a rewrite run. It is read from
// a YAML file and overridden by command-line flags.
type Config struct {
	// StoreName is the default import injected when a file imports the
	// hooks without a default specifier.
	StoreName string `yaml:"store_name" json:"store_name"`
	// Extensions limits which files are visited when a directory is given.
	Extensions []string `yaml:"extensions,omitempty" json:"extensions,omitempty"`
	// Exclude lists directory names or glob patterns (matched against the
	// base name) that are skipped while walking directories.
	Exclude []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`
	// Workers is the number of files rewritten concurrently.
	Workers int `yaml:"workers,omitempty" json:"workers,omitempty"`
}

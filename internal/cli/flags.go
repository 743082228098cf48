package cli

import "ptc/internal/config"

// Flags holds command-line flags
type Flags struct {
	Verbose     bool
	Project     string
	Processors  int
	TestPath    string
	NameFilter  string
	TestCases   bool
	FailFast    bool
	OnlyFailed  bool
	OpenFaills  bool
	Changed     bool
	Uncommitted bool
	CreateDBs   bool
	BaseRef     string
	Paths       []string
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Processors:  f.Processors,
		NameFilter:  f.NameFilter,
		TestPath:    f.TestPath,
		TestCases:   f.TestCases,
		FailFast:    f.FailFast,
		OnlyFailed:  f.OnlyFailed,
		OpenFaills:  f.OpenFaills,
		Changed:     f.Changed,
		Uncommitted: f.Uncommitted,
		CreateDBs:   f.CreateDBs,
		BaseRef:     f.BaseRef,
		Paths:       append([]string(nil), f.Paths...),
	}
}

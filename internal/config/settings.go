package config

// Settings is the fully-resolved input for one sweep session, merged from
// flags, config file, and defaults before the core ever sees it. The core
// treats it as immutable.
type Settings struct {
	Pattern           string   // branch filter, regex or substring fallback
	IncludeRemote     bool     // also consider remote-tracking branches
	LocalOnly         bool     // overrides IncludeRemote
	DryRun            bool     // plan and report without deleting
	SkipConfirmation  bool     // no prompt before executing the plan
	Force             bool     // delete unmerged branches without escalation
	ProtectedBranches []string // literal or /regex/flags entries
	DefaultRemote     string   // remote for base detection and deletes
	CleanupMergedDays int      // staleness threshold, 0 disables
}

// WantRemote reports whether remote branches are in scope for this run.
func (s Settings) WantRemote() bool {
	return s.IncludeRemote && !s.LocalOnly
}

// Automatic reports whether the session runs without the interactive
// picker: any declarative filter or the confirmation skip selects the
// automatic pipeline.
func (s Settings) Automatic() bool {
	return s.Pattern != "" || s.CleanupMergedDays > 0 || s.SkipConfirmation
}

// Resolve merges the config file into settings fields the flags left at
// their zero values and returns the completed value.
func Resolve(s Settings, cfg Config) Settings {
	if len(s.ProtectedBranches) == 0 {
		s.ProtectedBranches = cfg.ProtectedBranches
	}
	if s.DefaultRemote == "" {
		s.DefaultRemote = cfg.DefaultRemote
	}
	if s.DefaultRemote == "" {
		s.DefaultRemote = "origin"
	}
	if !s.IncludeRemote {
		s.IncludeRemote = cfg.IncludeRemote
	}
	if s.CleanupMergedDays == 0 {
		s.CleanupMergedDays = cfg.CleanupMergedDays
	}
	return s
}

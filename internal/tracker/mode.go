package tracker

// LatencyMode selects the latency/accuracy tradeoff profile for a session.
type LatencyMode string

const (
	// ModeInstant optimizes for sub-200ms feedback: a narrow search window
	// and a high acceptance threshold, tajweed analysis off by default.
	ModeInstant LatencyMode = "instant"

	// ModeBalanced is the default middle ground.
	ModeBalanced LatencyMode = "balanced"

	// ModeAccurate tolerates lower per-word confidence by searching a wider
	// context window, tajweed analysis on by default.
	ModeAccurate LatencyMode = "accurate"
)

// IsValid reports whether m is a recognised latency mode.
func (m LatencyMode) IsValid() bool {
	switch m {
	case ModeInstant, ModeBalanced, ModeAccurate:
		return true
	}
	return false
}

// Policy is the tuning profile a latency mode maps to. Pure configuration;
// the tracker consults the policy of its current mode on every submission,
// so switching modes mid-session affects only subsequent submissions.
type Policy struct {
	// AcceptThreshold is the minimum (bonus-adjusted) similarity score for
	// a candidate to be accepted.
	AcceptThreshold float64

	// Lookahead is how many positions past the expected word are searched.
	Lookahead int

	// BackwardTolerance is how many positions before the cursor may be
	// re-matched as a backward correction.
	BackwardTolerance int

	// MissRecoveryAfter is the consecutive-miss count at which the search
	// window extends to the recovery bounds below, allowing the tracker to
	// re-acquire a reciter who skipped a phrase.
	MissRecoveryAfter int

	// RecoveryForward and RecoveryBackward bound the extended window.
	RecoveryForward  int
	RecoveryBackward int

	// TajweedDefault is whether tajweed analysis is enabled for sessions
	// that do not set it explicitly.
	TajweedDefault bool
}

// policies holds the per-mode tuning tables. The thresholds are plausible,
// tunable constants; they should be validated against native-speaker-labeled
// recitation samples before being treated as final.
var policies = map[LatencyMode]Policy{
	ModeInstant: {
		AcceptThreshold:   0.85,
		Lookahead:         2,
		BackwardTolerance: 0,
		MissRecoveryAfter: 2,
		RecoveryForward:   5,
		RecoveryBackward:  2,
		TajweedDefault:    false,
	},
	ModeBalanced: {
		AcceptThreshold:   0.75,
		Lookahead:         3,
		BackwardTolerance: 1,
		MissRecoveryAfter: 3,
		RecoveryForward:   5,
		RecoveryBackward:  2,
		TajweedDefault:    true,
	},
	ModeAccurate: {
		AcceptThreshold:   0.70,
		Lookahead:         4,
		BackwardTolerance: 2,
		MissRecoveryAfter: 3,
		RecoveryForward:   5,
		RecoveryBackward:  2,
		TajweedDefault:    true,
	},
}

// PolicyFor returns the tuning profile for mode. Unknown modes fall back to
// the balanced profile.
func PolicyFor(mode LatencyMode) Policy {
	if p, ok := policies[mode]; ok {
		return p
	}
	return policies[ModeBalanced]
}

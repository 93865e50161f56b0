package progression

// XPPerLevel is the XP span of one level.
const XPPerLevel = 100

// LevelFor maps cumulative XP to a level, starting at 1.
func LevelFor(xp int) int {
	return xp/XPPerLevel + 1
}

// XPThresholdForLevel is the cumulative XP needed to reach level+1. The
// client derives progress-bar spans from it.
func XPThresholdForLevel(level int) int {
	return level * XPPerLevel
}

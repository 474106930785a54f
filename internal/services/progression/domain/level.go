package domain

// XPPerLevel is the fixed XP width of every level.
const XPPerLevel = 100

// LevelForXP returns the level for a total XP amount.
// Level boundaries are exact multiples of XPPerLevel; level 1 starts at 0 XP.
func LevelForXP(totalXP int) int {
	if totalXP < 0 {
		return 1
	}
	return totalXP/XPPerLevel + 1
}

// XPForLevel returns the minimum total XP at which a level begins.
func XPForLevel(level int) int {
	if level < 1 {
		return 0
	}
	return (level - 1) * XPPerLevel
}

// XPToNextLevel returns how much XP is missing to reach the next level.
func XPToNextLevel(level, totalXP int) int {
	return level*XPPerLevel - totalXP
}

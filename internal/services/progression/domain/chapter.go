package domain

import (
	"fmt"
	"sort"
)

// Group identifies the directional group a chapter belongs to.
type Group string

const (
	// GroupNorth covers the opening chapters of the sequence.
	GroupNorth Group = "NORTH"
	// GroupEast covers the second arc of the sequence.
	GroupEast Group = "EAST"
	// GroupSouth covers the third arc of the sequence.
	GroupSouth Group = "SOUTH"
	// GroupWest covers the fourth arc of the sequence.
	GroupWest Group = "WEST"
	// GroupCenter covers the closing chapters of the sequence.
	GroupCenter Group = "CENTER"
)

// Reward constants for chapter completion.
const (
	// BaseChapterReward is the XP awarded for any first completion.
	BaseChapterReward = 50
	// GateBonus is the extra XP awarded for completing a gate chapter.
	GateBonus = 50
	// MilestoneBonus is the extra XP awarded for completing a milestone chapter.
	MilestoneBonus = 25
)

// ChapterCount is the number of chapters in the default catalog.
const ChapterCount = 27

// Chapter describes one entry of the static content catalog.
type Chapter struct {
	// Number is the chapter position, contiguous from 1.
	Number int
	// Title is the display title for the chapter.
	Title string
	// Group is the directional group the chapter belongs to.
	Group Group
	// Geometry names the geometric figure the chapter centers on.
	Geometry string
	// Element names the elemental theme of the chapter.
	Element string
	// Gate marks chapters carrying extra narrative weight and a +50 bonus.
	Gate bool
	// Milestone marks progress checkpoints carrying a +25 bonus.
	Milestone bool
	// BaseReward is the XP awarded on first completion before bonuses.
	BaseReward int
}

// Reward returns the total XP for a first completion of the chapter.
// Gate and milestone bonuses stack additively when both flags are set.
func (c Chapter) Reward() int {
	reward := c.BaseReward
	if c.Gate {
		reward += GateBonus
	}
	if c.Milestone {
		reward += MilestoneBonus
	}
	return reward
}

// Catalog is the validated, ordered set of chapters.
type Catalog struct {
	chapters []Chapter
	byNumber map[int]Chapter
}

// groupRange assigns a directional group to a contiguous span of chapters.
type groupRange struct {
	first int
	last  int
	group Group
}

// defaultGroupRanges lays out the five directional arcs of the sequence.
var defaultGroupRanges = []groupRange{
	{first: 1, last: 5, group: GroupNorth},
	{first: 6, last: 10, group: GroupEast},
	{first: 11, last: 15, group: GroupSouth},
	{first: 16, last: 20, group: GroupWest},
	{first: 21, last: 27, group: GroupCenter},
}

// GroupForNumber resolves the directional group for a chapter number using
// the range layout, honoring explicit overrides first.
func GroupForNumber(number int, overrides map[int]Group) (Group, error) {
	if group, ok := overrides[number]; ok {
		return group, nil
	}
	for _, r := range defaultGroupRanges {
		if number >= r.first && number <= r.last {
			return r.group, nil
		}
	}
	return "", fmt.Errorf("chapter %d is outside all group ranges", number)
}

// NewCatalog validates and indexes a chapter list.
//
// Chapter numbers must be contiguous from 1 with no gaps or duplicates, and
// every chapter must carry a group and a positive base reward.
func NewCatalog(chapters []Chapter) (Catalog, error) {
	if len(chapters) == 0 {
		return Catalog{}, fmt.Errorf("catalog requires at least one chapter")
	}

	ordered := make([]Chapter, len(chapters))
	copy(ordered, chapters)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Number < ordered[j].Number })

	byNumber := make(map[int]Chapter, len(ordered))
	for i, chapter := range ordered {
		want := i + 1
		if chapter.Number != want {
			return Catalog{}, fmt.Errorf("catalog chapter numbers must be contiguous: expected %d, got %d", want, chapter.Number)
		}
		if chapter.Group == "" {
			return Catalog{}, fmt.Errorf("chapter %d has no directional group", chapter.Number)
		}
		if chapter.BaseReward <= 0 {
			return Catalog{}, fmt.Errorf("chapter %d has non-positive base reward", chapter.Number)
		}
		byNumber[chapter.Number] = chapter
	}

	return Catalog{chapters: ordered, byNumber: byNumber}, nil
}

// Len returns the number of chapters in the catalog.
func (c Catalog) Len() int {
	return len(c.chapters)
}

// Chapter looks up a chapter by number.
func (c Catalog) Chapter(number int) (Chapter, bool) {
	chapter, ok := c.byNumber[number]
	return chapter, ok
}

// Chapters returns the ordered chapter list.
func (c Catalog) Chapters() []Chapter {
	out := make([]Chapter, len(c.chapters))
	copy(out, c.chapters)
	return out
}

// Gates returns the ordered subset of gate chapters.
func (c Catalog) Gates() []Chapter {
	var gates []Chapter
	for _, chapter := range c.chapters {
		if chapter.Gate {
			gates = append(gates, chapter)
		}
	}
	return gates
}

// Groups returns the directional groups in catalog order, de-duplicated.
func (c Catalog) Groups() []Group {
	var groups []Group
	seen := make(map[Group]bool)
	for _, chapter := range c.chapters {
		if !seen[chapter.Group] {
			seen[chapter.Group] = true
			groups = append(groups, chapter.Group)
		}
	}
	return groups
}

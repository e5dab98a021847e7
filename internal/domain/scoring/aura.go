package scoring

import (
	"fmt"

	"github.com/oursapp/ours-api/internal/domain"
)

// moodColors is the fixed display palette, one color per mood.
var moodColors = map[domain.Mood][3]uint8{
	domain.MoodJoy:        {255, 209, 102}, // #FFD166
	domain.MoodGratitude:  {244, 162, 97},  // #F4A261
	domain.MoodLove:       {231, 111, 81},  // #E76F51
	domain.MoodPeace:      {142, 202, 230}, // #8ECAE6
	domain.MoodSadness:    {92, 122, 234},  // #5C7AEA
	domain.MoodTension:    {181, 131, 141}, // #B5838D
	domain.MoodConfusion:  {154, 140, 152}, // #9A8C98
	domain.MoodExcitement: {255, 107, 107}, // #FF6B6B
}

// auraTable maps every ordered mood pair to its aura color. Built once at
// init so that AuraFor is a plain lookup, total over all 8x8 combinations.
var auraTable = buildAuraTable()

// AuraFor returns the deterministic display aura for a pair of moods as a
// hex color string. Unknown moods fall back to the neutral mood's aura so
// the function stays total even on bad input.
func AuraFor(moodA, moodB domain.Mood) string {
	if _, ok := moodColors[moodA]; !ok {
		moodA = NeutralMood
	}
	if _, ok := moodColors[moodB]; !ok {
		moodB = NeutralMood
	}
	return auraTable[moodPair{moodA, moodB}]
}

type moodPair struct {
	a, b domain.Mood
}

func buildAuraTable() map[moodPair]string {
	table := make(map[moodPair]string, len(domain.Moods)*len(domain.Moods))
	for _, a := range domain.Moods {
		for _, b := range domain.Moods {
			table[moodPair{a, b}] = blend(moodColors[a], moodColors[b])
		}
	}
	return table
}

// blend averages two palette colors component-wise.
func blend(x, y [3]uint8) string {
	return fmt.Sprintf("#%02X%02X%02X",
		(uint16(x[0])+uint16(y[0]))/2,
		(uint16(x[1])+uint16(y[1]))/2,
		(uint16(x[2])+uint16(y[2]))/2,
	)
}

package economy

// MaxLevel is the top of the level ladder; XP past the last threshold stays here.
const MaxLevel = 10

// levelThresholds[i] is the cumulative XP needed for level i+1.
var levelThresholds = [MaxLevel]int64{0, 100, 300, 600, 1000, 1500, 2100, 2800, 3600, 4500}

// XPPerCallMinute is awarded for every completed minute of conversation.
const XPPerCallMinute int64 = 10

// LevelForXP returns the 1-based index of the highest threshold not above xp.
func LevelForXP(xp int64) int {
	lvl := 1
	for i := len(levelThresholds) - 1; i >= 0; i-- {
		if xp >= levelThresholds[i] {
			lvl = i + 1
			break
		}
	}
	if lvl > MaxLevel {
		lvl = MaxLevel
	}
	return lvl
}

// LevelThreshold returns the XP at which level starts (levels outside 1..10 clamp).
func LevelThreshold(level int) int64 {
	if level < 1 {
		level = 1
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return levelThresholds[level-1]
}

// Progress describes the position inside the current level.
type Progress struct {
	Level       int   `json:"level"`
	XP          int64 `json:"xp"`
	IntoLevel   int64 `json:"into_level"`
	ToNextLevel int64 `json:"to_next_level"`
}

func ProgressFor(st State) Progress {
	p := Progress{Level: st.Level, XP: st.XP}
	if st.Level >= MaxLevel {
		return p
	}
	start := LevelThreshold(st.Level)
	next := LevelThreshold(st.Level + 1)
	p.IntoLevel = st.XP - start
	if p.IntoLevel < 0 {
		p.IntoLevel = 0
	}
	p.ToNextLevel = next - st.XP
	if p.ToNextLevel < 0 {
		p.ToNextLevel = 0
	}
	return p
}

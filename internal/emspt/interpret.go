package emspt

// Level is the qualitative band of a sten value.
type Level string

const (
	LevelLow  Level = "low"
	LevelMid  Level = "mid"
	LevelHigh Level = "high"
)

// NoDescription is used when a scale has no text for its level.
const NoDescription = "(описание не задано)"

// LevelForSten classifies 1..3 as low, 4..7 as mid and anything higher as
// high.
func LevelForSten(sten int) Level {
	switch {
	case sten <= 3:
		return LevelLow
	case sten <= 7:
		return LevelMid
	default:
		return LevelHigh
	}
}

// Interpretation is the textual reading of one sub-scale.
type Interpretation struct {
	Sten  int    `json:"sten"`
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Interpret builds readings for the scales of keys. Scales with sten 0
// are not computable and are left out.
func Interpret(keys KeyConfig, sten map[string]int, texts Interpretations) map[string]Interpretation {
	out := make(map[string]Interpretation, len(sten))
	for scale, v := range sten {
		if v == 0 || !keys.Has(scale) {
			continue
		}
		lvl := LevelForSten(v)
		text := texts[scale][lvl]
		if text == "" {
			text = NoDescription
		}
		out[scale] = Interpretation{Sten: v, Level: lvl, Text: text}
	}
	return out
}

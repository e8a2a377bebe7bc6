package emspt

// MaxSten is returned for totals outside every configured interval.
const MaxSten = 10

// Convert maps raw to a 1-based sten using the scale's intervals. It
// returns 0 when the scale has no intervals and MaxSten when none of them
// contains raw. The second result reports that saturation.
func (t StenTable) Convert(scale string, raw float64) (sten int, saturated bool) {
	ivs := t[scale]
	if len(ivs) == 0 {
		return 0, false
	}
	for i, iv := range ivs {
		if iv.Contains(raw) {
			return i + 1, false
		}
	}
	return MaxSten, true
}

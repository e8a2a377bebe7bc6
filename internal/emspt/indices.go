package emspt

import "math"

// Band labels used by the normative tables.
const (
	BandLow     = "низкий"
	BandMid     = "средний"
	BandHigh    = "высокий"
	BandUnknown = "—"
)

var bandOrder = []string{BandLow, BandMid, BandHigh}

func isBandLabel(s string) bool {
	for _, b := range bandOrder {
		if s == b {
			return true
		}
	}
	return false
}

// KveripoUndefined is reported when the protection sum is zero. It reads as
// "maximal vulnerability" but also stands for "ratio undefined"; consumers
// cannot tell the two apart from the value alone.
const KveripoUndefined = 999.0

// Indices are the composite risk/protection indices.
type Indices struct {
	SumRisk float64
	SumProt float64
	IRP     float64
	Kveripo float64
}

// ComputeIndices derives IRP and KVERIPO from the (corrected) totals.
// Scales listed in risk or protect but absent from s count as 0.
func ComputeIndices(s Scales, risk, protect []string) Indices {
	var ix Indices
	for _, name := range risk {
		ix.SumRisk += s.Get(name)
	}
	for _, name := range protect {
		ix.SumProt += s.Get(name)
	}
	if ix.SumProt > 0 {
		ix.Kveripo = round2(ix.SumRisk / ix.SumProt)
	} else {
		ix.Kveripo = KveripoUndefined
	}
	if den := ix.SumRisk + ix.SumProt; den > 0 {
		ix.IRP = round2(ix.SumRisk / den * 100)
	}
	return ix
}

// BandIRP labels irp using bands checked low, mid, high. When no band
// contains the value it falls back to low below every band, high above
// every band and mid otherwise; fellBack reports that case.
func BandIRP(irp float64, bands map[string]Interval) (label string, fellBack bool) {
	for _, name := range bandOrder {
		if iv, ok := bands[name]; ok && iv.Contains(irp) {
			return name, false
		}
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, iv := range bands {
		lo = math.Min(lo, iv.Low)
		hi = math.Max(hi, iv.High)
	}
	switch {
	case len(bands) > 0 && irp < lo:
		return BandLow, true
	case len(bands) > 0 && irp > hi:
		return BandHigh, true
	default:
		return BandMid, true
	}
}

// BandKVERIPO has only two bands; an undefined maximum yields BandUnknown.
func BandKVERIPO(kveripo float64, max *float64) string {
	switch {
	case max == nil:
		return BandUnknown
	case kveripo <= *max:
		return BandLow
	default:
		return BandHigh
	}
}

package session

import (
	"context"
	"math"

	"github.com/228Abobus228/SPTOVZ/internal/emspt"
)

var (
	irpLevels     = []string{emspt.BandLow, emspt.BandMid, emspt.BandHigh}
	kveripoLevels = []string{emspt.BandLow, emspt.BandHigh}
)

// Summary counts sessions and splits finished results by band, in percent
// of the results that carry a known band.
type Summary struct {
	Total               int                `json:"total"`
	Completed           int                `json:"completed"`
	Remaining           int                `json:"remaining"`
	IRPDistribution     map[string]float64 `json:"irp_distribution"`
	KveripoDistribution map[string]float64 `json:"kveripo_distribution"`
}

const summaryPage = 500

// Summary aggregates every session matching the form and impairment of
// opts. Finished, Limit and Offset are ignored.
func (s *Service) Summary(ctx context.Context, opts ListOpts) (Summary, error) {
	opts.Finished, opts.Limit, opts.Offset = nil, summaryPage, 0

	var (
		sum     Summary
		irp     = map[string]int{}
		kveripo = map[string]int{}
	)
	for {
		page, err := s.store.List(ctx, opts)
		if err != nil {
			return Summary{}, err
		}
		for _, sess := range page {
			sum.Total++
			if !sess.Finished() {
				sum.Remaining++
				continue
			}
			sum.Completed++
			if sess.Result != nil {
				irp[sess.Result.IRPInterval]++
				kveripo[sess.Result.KveripoInterval]++
			}
		}
		if len(page) < summaryPage {
			break
		}
		opts.Offset += len(page)
	}
	sum.IRPDistribution = distribution(irp, irpLevels)
	sum.KveripoDistribution = distribution(kveripo, kveripoLevels)
	return sum, nil
}

// distribution turns counts into percentages over levels, skipping
// anything else (such as the undefined KVERIPO band).
func distribution(counts map[string]int, levels []string) map[string]float64 {
	total := 0
	for _, l := range levels {
		total += counts[l]
	}
	if total == 0 {
		total = 1
	}
	out := make(map[string]float64, len(levels))
	for _, l := range levels {
		out[l] = math.Round(float64(counts[l])*100/float64(total)*100) / 100
	}
	return out
}

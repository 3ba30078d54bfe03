// Package score implements the leaderboard score engine: the theoretical
// popularity curve, the insertion interpolation, price-normalized real
// scores and the capacity pruning rule.
package score

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/hok11/hok-rank/internal/models"
)

// Typed input errors. Callers decide whether to re-prompt or abort;
// nothing here silently substitutes a zero.
var (
	ErrInvalidRank   = errors.New("rank must be >= 1")
	ErrNegativePrice = errors.New("price must be >= 0")
)

// Curve holds the theoretical-score constants. The pair changed between
// releases (288/88, then 282/82), so it is configuration, not a constant.
type Curve struct {
	C1 float64
	C2 float64
}

// DefaultCurve matches the latest data revision.
func DefaultCurve() Curve { return Curve{C1: 282, C2: 82} }

// leaderCeiling is the sentinel returned for non-positive ranks and used
// as the "previous neighbor" when interpolating above the list head.
const leaderCeiling = 200.0

// BaseScore is the expected score of a hypothetical item at position rank
// on the idealized popularity curve: C1/sqrt(rank) - C2, floored at 0.
// Non-positive ranks return the 200 ceiling.
func (c Curve) BaseScore(rank float64) float64 {
	if rank <= 0 {
		return leaderCeiling
	}
	return math.Max(c.C1/math.Sqrt(rank)-c.C2, 0)
}

// InsertionScore computes the score for an item being placed at position
// rank (1-based) within ranked, which must already be the filtered view:
// on-board, not preset, not discontinued, scores present, best first
// (models.RankedView produces it).
//
// Rank 1 takes the strongest of three floors: relative dominance over the
// old leader (top/0.6), the curve evaluated at 1.25, and the commercial
// floor price*(growth/100)*15. Mid-list insertions take the geometric mean
// of both neighbors. Tail insertions walk the theoretical curve down until
// it falls below the predecessor.
func (c Curve) InsertionScore(rank int, ranked []*models.Skin, realPrice, growth float64) (float64, error) {
	if rank < 1 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidRank, rank)
	}
	if realPrice < 0 {
		return 0, fmt.Errorf("%w: got %v", ErrNegativePrice, realPrice)
	}

	if rank == 1 {
		oldTop := 0.0
		if len(ranked) > 0 {
			oldTop = *ranked[0].Score
		}
		return math.Max(oldTop/0.6, math.Max(c.BaseScore(1.25), realPrice*(growth/100)*15)), nil
	}

	pIdx := rank - 2
	pScore := leaderCeiling
	if pIdx >= 0 {
		if pIdx < len(ranked) {
			pScore = *ranked[pIdx].Score
		} else {
			pScore = 0
		}
	}

	if rank-1 < len(ranked) {
		next := *ranked[rank-1].Score
		return math.Sqrt(pScore * next), nil
	}

	// Tail: no concrete neighbor below. The curve is decreasing and
	// bounded by 0, so with pScore <= 0 nothing ever drops below it;
	// return the floor instead of looping.
	if pScore <= 0 {
		return 0, nil
	}
	for t := float64(rank); ; t++ {
		if val := c.BaseScore(t); val < pScore {
			return val, nil
		}
	}
}

// RealScore normalizes a rank score by the actual/list price ratio,
// rounded to one decimal. Nil when unranked or either price is
// non-positive.
func RealScore(rankScore *float64, listPrice, realPrice float64) *float64 {
	if rankScore == nil || math.IsNaN(*rankScore) {
		return nil
	}
	if realPrice <= 0 || listPrice <= 0 {
		return nil
	}
	v := math.Round(*rankScore*(realPrice/listPrice)*10) / 10
	return &v
}

// Prune enforces the leaderboard capacity: among ranked skins sorted by
// score descending (nil last), everything beyond capacity is knocked off
// the board. Running it twice changes nothing.
func Prune(skins []*models.Skin, capacity int) {
	var active []*models.Skin
	for _, s := range skins {
		if s.Ranked() {
			active = append(active, s)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		a, b := active[i], active[j]
		if (a.Score == nil) != (b.Score == nil) {
			return b.Score == nil
		}
		if a.Score == nil {
			return false
		}
		return *a.Score > *b.Score
	})
	if len(active) <= capacity {
		return
	}
	for _, s := range active[capacity:] {
		s.OnLeaderboard = false
	}
}

// ResolveListPrice looks up the canonical list price for a quality code.
// Old data files carry keys as "3", "3.0" or floats, so the lookup
// tolerates all three before falling back to an approximate float match.
// A tier priced <= 0 with a parent resolves to the parent's price, one
// level only.
func ResolveListPrice(quality float64, table models.QualityConfig) float64 {
	key := models.TierKey(quality)
	if tier, ok := table[key]; ok {
		return tierPrice(tier, table)
	}
	for k, tier := range table {
		f, err := strconv.ParseFloat(k, 64)
		if err != nil {
			continue
		}
		if closeEnough(f, quality) {
			return tierPrice(tier, table)
		}
	}
	return 0.0
}

func tierPrice(tier models.QualityTier, table models.QualityConfig) float64 {
	if tier.Price <= 0 && tier.Parent != nil {
		if parent, ok := table[*tier.Parent]; ok {
			return parent.Price
		}
	}
	return tier.Price
}

func closeEnough(a, b float64) bool {
	const relTol = 1e-9
	return math.Abs(a-b) <= relTol*math.Max(math.Abs(a), math.Abs(b))
}

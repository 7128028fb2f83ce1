package analytics

import (
	"sort"
	"time"

	"github.com/sharath018/donor-backoffice-backend/internal/ledger"
	"github.com/shopspring/decimal"
)

var (
	topTierFloor = decimal.NewFromInt(1000)
	midTierFloor = decimal.NewFromInt(100)
)

// giverHistory is the reportable giving of one linked donor or email.
type giverHistory struct {
	ref      DonorRef
	years    map[int]bool
	last     time.Time
	lifetime decimal.Decimal
}

// histories groups gifts by giver using the linker's resolution order.
// Anonymous gifts are skipped.
func histories(gifts []ledger.Gift, linker *ledger.Linker, loc *time.Location) []*giverHistory {
	byKey := make(map[string]*giverHistory)
	var order []string
	for _, g := range gifts {
		key := linker.Key(g.DonorID, g.Email)
		if key == "" {
			continue
		}
		h, ok := byKey[key]
		if !ok {
			h = &giverHistory{ref: donorRef(linker, g.DonorID, g.Email), years: make(map[int]bool), lifetime: decimal.Zero}
			byKey[key] = h
			order = append(order, key)
		}
		at := g.CreatedAt.In(loc)
		h.years[at.Year()] = true
		if at.After(h.last) {
			h.last = at
		}
		h.lifetime = h.lifetime.Add(decimal.NewFromFloat(g.Amount))
	}
	out := make([]*giverHistory, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	return out
}

func donorRef(linker *ledger.Linker, donorID *uint, email string) DonorRef {
	d := linker.Resolve(donorID, email)
	if d == nil {
		return DonorRef{Name: ledger.NormalizeEmail(email), Email: ledger.NormalizeEmail(email)}
	}
	id := d.ID
	return DonorRef{DonorID: &id, Name: d.FullName(), Email: d.Email, Phone: d.Phone, Country: d.Country}
}

func (h *giverHistory) cohortDonor() CohortDonor {
	return CohortDonor{
		DonorRef:      h.ref,
		LastDonation:  h.last.Format(DateLayout),
		LifetimeTotal: money(h.lifetime),
	}
}

func (h *giverHistory) gaveBefore(year int) bool {
	for y := range h.years {
		if y < year {
			return true
		}
	}
	return false
}

// lybunt: gave in year-1, not in year.
func lybunt(hs []*giverHistory, year int) []CohortDonor {
	var picked []*giverHistory
	for _, h := range hs {
		if h.years[year-1] && !h.years[year] {
			picked = append(picked, h)
		}
	}
	return byLastDonation(picked, 0)
}

// sybunt: gave before year-1, not in year-1 or year. At most limit donors.
func sybunt(hs []*giverHistory, year, limit int) []CohortDonor {
	var picked []*giverHistory
	for _, h := range hs {
		if h.gaveBefore(year-1) && !h.years[year-1] && !h.years[year] {
			picked = append(picked, h)
		}
	}
	return byLastDonation(picked, limit)
}

func byLastDonation(hs []*giverHistory, limit int) []CohortDonor {
	sort.SliceStable(hs, func(i, j int) bool { return hs[i].last.After(hs[j].last) })
	if limit > 0 && len(hs) > limit {
		hs = hs[:limit]
	}
	out := make([]CohortDonor, len(hs))
	for i, h := range hs {
		out[i] = h.cohortDonor()
	}
	return out
}

// valueTiers buckets lifetime totals into top (>=1000), mid (>=100) and low.
func valueTiers(hs []*giverHistory) map[string][]CohortDonor {
	sorted := make([]*giverHistory, len(hs))
	copy(sorted, hs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].lifetime.GreaterThan(sorted[j].lifetime) })

	tiers := map[string][]CohortDonor{TierTop: {}, TierMid: {}, TierLow: {}}
	for _, h := range sorted {
		tier := TierLow
		switch {
		case h.lifetime.GreaterThanOrEqual(topTierFloor):
			tier = TierTop
		case h.lifetime.GreaterThanOrEqual(midTierFloor):
			tier = TierMid
		}
		tiers[tier] = append(tiers[tier], h.cohortDonor())
	}
	return tiers
}

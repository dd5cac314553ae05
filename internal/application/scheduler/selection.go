package scheduler

import (
	"context"
	"fmt"

	"github.com/andrescamacho/skirmish-economy-go/internal/application/common"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/economy"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/ports"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// workingList is a category together with the unit types still eligible for
// it during one idle decision
type workingList struct {
	cat   *build.Category
	types []shared.UnitTypeID
}

func (w *workingList) empty() bool { return len(w.types) == 0 }

func (w *workingList) filter(keep func(shared.UnitTypeID) bool) {
	kept := w.types[:0]
	for _, t := range w.types {
		if keep(t) {
			kept = append(kept, t)
		}
	}
	w.types = kept
}

// workingLists holds the per-decision copies of every active category
type workingLists []*workingList

func (ls workingLists) filter(keep func(shared.UnitTypeID) bool) {
	for _, l := range ls {
		l.filter(keep)
	}
}

// first returns the first non-empty list of the given kinds, searched kind by kind
func (ls workingLists) first(kinds ...build.CategoryKind) *workingList {
	for _, k := range kinds {
		for _, l := range ls {
			if l.cat.Kind() == k && !l.empty() {
				return l
			}
		}
	}
	return nil
}

// prefer applies the category preference to the lists that still have types
func (ls workingLists) prefer() *workingList {
	var cats []*build.Category
	byCat := make(map[*build.Category]*workingList)
	for _, l := range ls {
		if l.empty() {
			continue
		}
		cats = append(cats, l.cat)
		byCat[l.cat] = l
	}
	chosen := build.PreferCategory(cats)
	if chosen == nil {
		return nil
	}
	return byCat[chosen]
}

func (ls workingLists) availability() economy.Availability {
	return economy.Availability{
		Energy:        ls.first(build.GeothermalCategory, build.EnergyCategory) != nil,
		Metal:         ls.first(build.ExtractorCategory, build.MetalCategory) != nil,
		Extractor:     ls.first(build.ExtractorCategory) != nil,
		Constructor:   ls.first(build.ConstructorCategory) != nil,
		EnergyStorage: ls.first(build.EnergyStorageCategory) != nil,
		MetalStorage:  ls.first(build.MetalStorageCategory) != nil,
	}
}

// activeLists copies every category with at least one enabled type. Site-bound
// types stay only while the builder can reach a free site for them. Quota-free
// categories only keep types that can be started now; an under-quota extractor
// category only keeps the types whose nearest site is the nearest overall.
func (s *Scheduler) activeLists(b builder) workingLists {
	var lists workingLists
	for _, cat := range s.catalog.Categories() {
		types := s.catalog.EnabledTypes(cat)
		if len(types) == 0 {
			continue
		}
		l := &workingList{cat: cat, types: append([]shared.UnitTypeID(nil), types...)}
		l.filter(func(t shared.UnitTypeID) bool { return s.siteReachable(b, t) })
		if cat.Min() == 0 {
			l.filter(s.catalog.HasPrerequisite)
		}
		if cat.Kind() == build.ExtractorCategory && cat.UnderQuota() {
			l.types = s.nearestSiteTypes(b, l.types)
		}
		lists = append(lists, l)
	}
	return lists
}

func (s *Scheduler) nearestSiteTypes(b builder, types []shared.UnitTypeID) []shared.UnitTypeID {
	if s.registry == nil {
		return types
	}
	var kept []shared.UnitTypeID
	bestSite := -1
	bestDistance := 0.0
	for _, t := range types {
		site, ok := s.registry.FindSite(b.position(), t, b.def.MovementClass)
		if !ok {
			continue
		}
		d := b.position().Distance2D(site.Position())
		switch {
		case site.Index() == bestSite:
			kept = append(kept, t)
		case bestSite < 0 || d < bestDistance:
			bestSite, bestDistance = site.Index(), d
			kept = []shared.UnitTypeID{t}
		}
	}
	if len(kept) == 0 {
		// none of the types is site-bound; unreachable ones were filtered earlier
		return types
	}
	return kept
}

// siteReachable reports whether b could place t: always for types that need no
// resource site, otherwise only when a free site lies in b's terrain area.
func (s *Scheduler) siteReachable(b builder, t shared.UnitTypeID) bool {
	if s.registry == nil {
		return true
	}
	def, ok := s.catalog.Type(t)
	if !ok || !def.NeedsSite() {
		return true
	}
	_, found := s.registry.FindSite(b.position(), t, b.def.MovementClass)
	return found
}

// openOrders fills the ledger from the build lists until it holds one order
// per builder plus one, or the cap is reached.
func (s *Scheduler) openOrders(ctx context.Context, b builder, p pass, forecast economy.Forecast) error {
	logger := common.LoggerFromContext(ctx)

	lists := s.activeLists(b)
	if len(lists) == 0 {
		return nil
	}
	builders := len(s.roster.Builders())

	for s.ledger.Len() < s.cfg.LedgerCap && s.ledger.Len() < builders+1 {
		_, pending := s.ledger.Prerequisite()
		if pending {
			lists.filter(s.catalog.HasPrerequisite)
		}

		list := lists.prefer()
		if list == nil {
			logger.Log("ERROR", "[Scheduler] No build list has an eligible unit type", map[string]interface{}{
				"builder": b.id().String(),
			})
			break
		}
		if list.cat.UnderQuota() {
			startable := append([]shared.UnitTypeID(nil), list.types...)
			startable = keep(startable, s.catalog.HasPrerequisite)
			if len(startable) > 0 {
				list.types = startable
			}
		}

		cat := list.cat
		kind := cat.Kind().OrderKind()
		t := list.types[s.rng.Intn(len(list.types))]
		queue := s.ledger.QueueCounts()
		if !s.catalog.HasPrerequisite(t) && queue.Builder < s.cfg.PrerequisiteCap {
			if pre := s.catalog.Prerequisite(t, s.rng); pre != t {
				t, kind = pre, build.PrerequisiteOrder
			}
		}

		if !cat.UnderQuota() && !producerKind(cat.Kind()) {
			t, cat, kind = s.applyDemand(lists, t, cat, kind, p, forecast)
		}

		if !s.redirectIdlePrerequisite(b, t) {
			t, kind = s.considerNewBuilder(t, kind, p)
		}

		h, err := s.ledger.Create(t, cat, kind, p.frame)
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		if kind == build.PrerequisiteOrder && s.catalog.Finished(t) == 0 {
			if _, pending := s.ledger.Prerequisite(); !pending {
				if err := s.ledger.SetPrerequisite(h); err != nil {
					return fmt.Errorf("failed to mark prerequisite: %w", err)
				}
			}
		}
		logger.Log("DEBUG", fmt.Sprintf("[Scheduler] Queued %s order for type %d in %s", kind, t, cat), nil)

		forecast = forecast.AfterOrder(s.cfg.Tuning, p.snap, s.ledger.Accounting())
	}
	return nil
}

func keep(types []shared.UnitTypeID, pred func(shared.UnitTypeID) bool) []shared.UnitTypeID {
	out := types[:0]
	for _, t := range types {
		if pred(t) {
			out = append(out, t)
		}
	}
	return out
}

// producerKind reports categories that are never overridden by demand
func producerKind(k build.CategoryKind) bool {
	return k == build.EnergyCategory || k == build.MetalCategory || k == build.ExtractorCategory
}

// applyDemand lets a pressing resource need replace the category choice
func (s *Scheduler) applyDemand(lists workingLists, t shared.UnitTypeID, cat *build.Category, kind build.OrderKind, p pass, forecast economy.Forecast) (shared.UnitTypeID, *build.Category, build.OrderKind) {
	scores := economy.ComputeDemand(s.cfg.Tuning, economy.DemandInput{
		Snapshot:           p.snap,
		Forecast:           forecast,
		Accounting:         s.ledger.Accounting(),
		Queue:              s.ledger.QueueCounts(),
		Available:          lists.availability(),
		Candidate:          s.catalog.Candidate(t),
		EnergyToMetalRatio: s.catalog.EnergyToMetalRatio(),
	})
	demand, score := scores.Best()
	if score <= 0 {
		return t, cat, kind
	}

	var target *workingList
	switch demand {
	case economy.DemandEnergy:
		target, kind = lists.first(build.GeothermalCategory, build.EnergyCategory), build.EnergyOrder
	case economy.DemandMetal:
		target, kind = lists.first(build.ExtractorCategory, build.MetalCategory), build.MetalOrder
	case economy.DemandConstructor:
		target, kind = lists.first(build.ConstructorCategory), build.BuilderOrder
	case economy.DemandEnergyStorage:
		target, kind = lists.first(build.EnergyStorageCategory), build.EnergyStorageOrder
	case economy.DemandMetalStorage:
		target, kind = lists.first(build.MetalStorageCategory), build.MetalStorageOrder
	}
	if target == nil {
		return t, cat, kind
	}
	cat = target.cat
	t = target.types[s.rng.Intn(len(target.types))]

	// metal makers that eat energy wait while converters are already short
	if kind == build.MetalOrder && s.catalog.Profile(t).HighEnergyDemand && p.snap.Power.EtoMNeeded < 0 {
		if energy := lists.first(build.GeothermalCategory, build.EnergyCategory); energy != nil {
			cat, kind = energy.cat, build.EnergyOrder
			t = energy.types[s.rng.Intn(len(energy.types))]
		}
	}

	queue := s.ledger.QueueCounts()
	if !s.catalog.HasPrerequisite(t) && queue.Builder < s.cfg.PrerequisiteCap && float64(queue.Builder) <= 0.5*float64(queue.Total) {
		if pre := s.catalog.Prerequisite(t, s.rng); pre != t {
			t, kind = pre, build.PrerequisiteOrder
		}
	}
	return t, cat, kind
}

// redirectIdlePrerequisite looks for an idle finished builder able to start
// t's prerequisites and wakes it instead of queueing another builder.
func (s *Scheduler) redirectIdlePrerequisite(b builder, t shared.UnitTypeID) bool {
	for _, pre := range s.catalog.Prerequisites(t) {
		for _, m := range s.roster.OfType(pre) {
			if m.ID == b.id() || m.AIDisabled || !m.IsBuilder() {
				continue
			}
			if _, has := s.ledger.OrderOf(m.ID); has {
				continue
			}
			cmds := s.host.Units.Commands(m.ID)
			if len(cmds) == 0 || cmds[0].Kind == ports.CommandWait {
				s.rechecks.Schedule(m.ID, Now)
			}
			return true
		}
	}
	return false
}

// considerNewBuilder occasionally swaps t for a builder that can make it, as
// long as the economy can feed another builder.
func (s *Scheduler) considerNewBuilder(t shared.UnitTypeID, kind build.OrderKind, p pass) (shared.UnitTypeID, build.OrderKind) {
	queue := s.ledger.QueueCounts()
	if queue.Builder >= 3 || float64(queue.Builder) > 0.3*float64(queue.Total) {
		return t, kind
	}
	if _, pending := s.ledger.Prerequisite(); pending {
		return t, kind
	}
	if s.rng.Intn(s.cfg.NewBuilderChance) != 0 {
		return t, kind
	}
	candidate := s.catalog.PrerequisiteNewBuilder(t, s.rng)
	if candidate == t || s.catalog.Queued(candidate) > 0 {
		return t, kind
	}
	def, ok := s.catalog.Type(candidate)
	if !ok {
		return t, kind
	}
	speed := s.catalog.AverageConstructSpeed()
	if p.producers.Metal && 0.25*p.snap.Metal.Income <= def.MetalCost/speed {
		return t, kind
	}
	if p.producers.Energy && 0.25*p.snap.Energy.Income <= def.EnergyCost/speed {
		return t, kind
	}
	return candidate, build.BuilderOrder
}

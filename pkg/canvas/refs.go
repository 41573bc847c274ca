package canvas

import (
	"slices"
)

// ResolveReferences expands seed asset and group ids to every asset and
// group reachable from them: an asset's reference-typed properties lead to
// further assets and groups, and a group leads to its members. The walk
// runs to a fixed point, so reference cycles between assets terminate.
//
// Ids the lookups do not know are dropped. With a nil lookup, the seeds of
// that kind are kept as given and not expanded. Both results are sorted
// ascending and free of duplicates.
func ResolveReferences(seedAssets, seedGroups []int, assets AssetLookup, groups GroupLookup) ([]int, []int) {
	seenA := map[int]bool{}
	seenG := map[int]bool{}
	qa := slices.Clone(seedAssets)
	qg := slices.Clone(seedGroups)

	for len(qa) > 0 || len(qg) > 0 {
		for len(qa) > 0 {
			id := qa[len(qa)-1]
			qa = qa[:len(qa)-1]
			if id == 0 || seenA[id] {
				continue
			}
			if assets == nil {
				seenA[id] = true
				continue
			}
			a, ok := assets.Asset(id)
			if !ok {
				continue
			}
			seenA[id] = true
			qa = append(qa, a.Properties.AssetRefs()...)
			qg = append(qg, a.Properties.GroupRefs()...)
		}
		for len(qg) > 0 {
			id := qg[len(qg)-1]
			qg = qg[:len(qg)-1]
			if id == 0 || seenG[id] {
				continue
			}
			if groups == nil {
				seenG[id] = true
				continue
			}
			g, ok := groups.Group(id)
			if !ok {
				continue
			}
			seenG[id] = true
			qa = append(qa, g.Members...)
		}
	}
	return sortedKeys(seenA), sortedKeys(seenG)
}

func sortedKeys(m map[int]bool) []int {
	if len(m) == 0 {
		return nil
	}
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

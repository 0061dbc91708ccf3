package hittr

import "sort"

// buildGroupHitLists flattens the hit check table into one list of other
// groups per group. A group is listed iff it has at least one configured
// hit check entry. Configured order comes first, then the remaining keys in
// sorted order.
func buildGroupHitLists(checks map[string]map[string]HitCheckGenerator, order map[string][]string) map[string][]string {
	lists := make(map[string][]string, len(checks))
	for group, others := range checks {
		if len(others) == 0 {
			continue
		}

		list := make([]string, 0, len(others))
		seen := make(map[string]bool, len(others))
		for _, other := range order[group] {
			if _, ok := others[other]; !ok || seen[other] {
				continue
			}
			seen[other] = true
			list = append(list, other)
		}

		rest := make([]string, 0, len(others)-len(list))
		for other := range others {
			if !seen[other] {
				rest = append(rest, other)
			}
		}
		sort.Strings(rest)

		lists[group] = append(list, rest...)
	}
	return lists
}

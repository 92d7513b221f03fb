package similartext

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// DistanceThreshold is the maximum Levenshtein distance between a name and
// a candidate for the candidate to be suggested at all.
const DistanceThreshold = 2

// distance returns the Levenshtein distance between the two strings.
func distance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			min := prev[j] + 1
			if cur[j-1]+1 < min {
				min = cur[j-1] + 1
			}
			if prev[j-1]+cost < min {
				min = prev[j-1] + cost
			}
			cur[j] = min
		}
		prev, cur = cur, prev
	}

	return prev[len(b)]
}

// Find returns a string with suggestions of names similar to src, or an
// empty string if none of the names is close enough.
func Find(names []string, src string) string {
	if len(names) == 0 || src == "" {
		return ""
	}

	minDist := -1
	var matches []string
	for _, name := range names {
		dist := distance(strings.ToLower(name), strings.ToLower(src))
		switch {
		case minDist == -1 || dist < minDist:
			minDist = dist
			matches = append(matches[:0], name)
		case dist == minDist:
			matches = append(matches, name)
		}
	}

	if minDist > DistanceThreshold {
		return ""
	}

	return fmt.Sprintf(", maybe you mean %s?", strings.Join(matches, " or "))
}

// FindFromMap does the same as Find but taking the keys of a map as the
// names to suggest from.
func FindFromMap(m interface{}, src string) string {
	rv := reflect.ValueOf(m)
	if rv.Kind() != reflect.Map {
		panic("similartext: FindFromMap expects a map")
	}

	var names []string
	for _, k := range rv.MapKeys() {
		names = append(names, k.String())
	}
	sort.Strings(names)

	return Find(names, src)
}

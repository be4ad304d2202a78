package ml

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// MinTestPerClass is the class size from which a class is guaranteed at
// least one row in the held-out split.
const MinTestPerClass = 4

// ClassCounts tallies labels.
func ClassCounts(y []int) map[int]int {
	counts := make(map[int]int, 2)
	for _, label := range y {
		counts[label]++
	}
	return counts
}

// StratifiedSplit partitions row indices into train and test sets, holding
// out round(testFraction*len(y)) rows with class proportions preserved. Every
// class keeps at least one training row, and a class with MinTestPerClass or
// more rows always appears in the test set. The same seed yields the same
// split. Returned indices are sorted.
func StratifiedSplit(y []int, testFraction float64, seed int64) (train, test []int, err error) {
	n := len(y)
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("test fraction must be in (0, 1), got %v", testFraction)
	}
	if n < 2 {
		return nil, nil, fmt.Errorf("%w: need at least 2 rows to split, got %d", ErrEmptyInput, n)
	}

	groups := make(map[int][]int)
	for i, label := range y {
		groups[label] = append(groups[label], i)
	}
	labels := make([]int, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	nTest := int(math.Round(testFraction * float64(n)))
	if nTest < 1 {
		nTest = 1
	}
	if nTest > n-len(labels) {
		nTest = n - len(labels)
	}
	if nTest < 1 {
		return nil, nil, fmt.Errorf("cannot hold out rows from %d samples across %d classes", n, len(labels))
	}

	alloc := allocate(labels, groups, nTest, n)

	rng := rand.New(rand.NewSource(seed))
	for _, label := range labels {
		idx := append([]int(nil), groups[label]...)
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		test = append(test, idx[:alloc[label]]...)
		train = append(train, idx[alloc[label]:]...)
	}

	sort.Ints(train)
	sort.Ints(test)
	return train, test, nil
}

// allocate distributes nTest test rows across classes by largest remainder,
// then enforces the per-class floor and ceiling.
func allocate(labels []int, groups map[int][]int, nTest, n int) map[int]int {
	alloc := make(map[int]int, len(labels))
	type remainder struct {
		label int
		frac  float64
		size  int
	}
	rems := make([]remainder, 0, len(labels))

	assigned := 0
	for _, label := range labels {
		exact := float64(nTest) * float64(len(groups[label])) / float64(n)
		alloc[label] = int(math.Floor(exact))
		assigned += alloc[label]
		rems = append(rems, remainder{label: label, frac: exact - math.Floor(exact), size: len(groups[label])})
	}

	sort.SliceStable(rems, func(i, j int) bool {
		if rems[i].frac != rems[j].frac {
			return rems[i].frac > rems[j].frac
		}
		return rems[i].size > rems[j].size
	})
	for i := 0; assigned < nTest; i = (i + 1) % len(rems) {
		alloc[rems[i].label]++
		assigned++
	}

	ceiling := func(label int) int { return len(groups[label]) - 1 }
	floor := func(label int) int {
		if len(groups[label]) >= MinTestPerClass {
			return 1
		}
		return 0
	}

	// Move rows from classes above their floor to classes outside bounds.
	for _, label := range labels {
		for alloc[label] > ceiling(label) {
			alloc[label]--
			if donee, ok := pick(labels, alloc, func(l int) bool { return alloc[l] < ceiling(l) }); ok {
				alloc[donee]++
			}
		}
		for alloc[label] < floor(label) {
			donor, ok := pick(labels, alloc, func(l int) bool { return l != label && alloc[l] > floor(l) })
			if !ok {
				break
			}
			alloc[donor]--
			alloc[label]++
		}
	}

	return alloc
}

// pick returns the matching label with the largest allocation.
func pick(labels []int, alloc map[int]int, match func(int) bool) (int, bool) {
	best, found := 0, false
	for _, label := range labels {
		if !match(label) {
			continue
		}
		if !found || alloc[label] > alloc[best] {
			best, found = label, true
		}
	}
	return best, found
}

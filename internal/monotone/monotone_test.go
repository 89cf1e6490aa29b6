package monotone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAll_NonStrict(t *testing.T) {
	got := All(false, []Range{{0, 2}, {0, 2}})
	assert.Equal(t, [][]int{{0, 0}, {0, 1}, {1, 1}}, got)
}

func TestAll_Strict(t *testing.T) {
	got := All(true, []Range{{0, 2}, {0, 2}})
	assert.Equal(t, [][]int{{0, 1}}, got)
}

func TestAll_EmptyConstraints(t *testing.T) {
	got := All(false, nil)
	assert.Equal(t, [][]int{{}}, got)
}

func TestAll_EmptyRange(t *testing.T) {
	assert.Empty(t, All(false, []Range{{0, 1}, {2, 2}}))
}

func TestAll_DisjointRanges(t *testing.T) {
	got := All(false, []Range{{1, 3}, {0, 2}})
	assert.Equal(t, [][]int{{1, 1}}, got)
}

func TestSequences_StopsEarly(t *testing.T) {
	var seen int
	for range Sequences(false, []Range{{0, 5}, {0, 5}, {0, 5}}) {
		seen++
		if seen == 3 {
			break
		}
	}
	assert.Equal(t, 3, seen)
}

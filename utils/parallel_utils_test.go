package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMap(t *testing.T) {
	{ // Bucket sizes differ by at most one and cover every pair index
		getHisto := func(K, Np int) (histo map[int]int) {
			pm := NewPartitionMap(Np, K)
			histo = make(map[int]int)
			for np := 0; np < pm.ParallelDegree; np++ {
				histo[pm.GetBucketDimension(np)]++
			}
			return
		}
		getTotal := func(histo map[int]int) (total int) {
			for key, count := range histo {
				total += key * count
			}
			return
		}
		assert.Equal(t, map[int]int{0: 6, 1: 2}, getHisto(2, 8))
		assert.Equal(t, map[int]int{3: 1, 4: 3}, getHisto(15, 4))
		for n := 16; n < 2000; n++ {
			var (
				keys  []float64
				histo = getHisto(n, 8)
			)
			for key := range histo {
				keys = append(keys, float64(key))
			}
			if len(keys) == 2 {
				assert.Equal(t, 1., math.Abs(keys[0]-keys[1]))
			}
			assert.Equal(t, n, getTotal(histo))
		}
	}
	{ // Empty buckets are dropped, degenerate degree is clamped
		pm := NewPartitionMap(4, 2)
		assert.Equal(t, [][2]int{{0, 1}, {1, 2}}, pm.Buckets())
		pm = NewPartitionMap(0, 3)
		assert.Equal(t, [][2]int{{0, 3}}, pm.Buckets())
	}
}

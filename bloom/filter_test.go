package bloom_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/sitemapper/bloom"
	"github.com/stretchr/testify/assert"
)

func TestFilter(t *testing.T) {
	t.Parallel()

	t.Run("reports added URLs", func(t *testing.T) {
		t.Parallel()

		f := bloom.NewFilter(1000, 0.01)
		assert.False(t, f.Test("https://example.com/cart"))

		f.Add("https://example.com/cart")

		assert.True(t, f.Test("https://example.com/cart"))
		assert.False(t, f.Test("https://example.com/checkout"))
	})

	t.Run("never misses an added URL", func(t *testing.T) {
		t.Parallel()

		f := bloom.NewFilter(100, 0.01)
		for i := range 1000 {
			f.Add(fmt.Sprintf("https://example.com/p/%d", i))
		}
		for i := range 1000 {
			assert.True(t, f.Test(fmt.Sprintf("https://example.com/p/%d", i)))
		}
	})

	t.Run("keeps false positives near the configured rate", func(t *testing.T) {
		t.Parallel()

		f := bloom.NewFilter(5000, 0.01)
		for i := range 5000 {
			f.Add(fmt.Sprintf("https://example.com/added/%d", i))
		}

		falsePositives := 0
		for i := range 5000 {
			if f.Test(fmt.Sprintf("https://example.com/other/%d", i)) {
				falsePositives++
			}
		}

		assert.Less(t, float64(falsePositives)/5000, 0.03)
	})
}

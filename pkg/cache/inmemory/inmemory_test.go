package inmemory_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/folio/pkg/cache"
	"github.com/papercomputeco/folio/pkg/cache/inmemory"
)

var _ = Describe("Cache", func() {
	var (
		ctx context.Context
		now time.Time
		c   *inmemory.Cache
	)

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		c = inmemory.New(3, inmemory.WithClock(func() time.Time { return now }))
	})

	It("returns stored values", func() {
		Expect(c.Set(ctx, "a", []byte("1"), time.Hour)).To(Succeed())

		v, ok := c.Get(ctx, "a")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal([]byte("1")))
	})

	It("misses unknown keys", func() {
		_, ok := c.Get(ctx, "missing")
		Expect(ok).To(BeFalse())
	})

	It("expires entries after their ttl", func() {
		Expect(c.Set(ctx, "a", []byte("1"), time.Minute)).To(Succeed())

		now = now.Add(59 * time.Second)
		_, ok := c.Get(ctx, "a")
		Expect(ok).To(BeTrue())

		now = now.Add(time.Second)
		_, ok = c.Get(ctx, "a")
		Expect(ok).To(BeFalse())
		Expect(c.Len()).To(Equal(0))
	})

	It("keeps entries without ttl", func() {
		Expect(c.Set(ctx, "a", []byte("1"), 0)).To(Succeed())
		now = now.Add(365 * 24 * time.Hour)

		_, ok := c.Get(ctx, "a")
		Expect(ok).To(BeTrue())
	})

	It("overwrites values and ttl", func() {
		Expect(c.Set(ctx, "a", []byte("1"), time.Minute)).To(Succeed())
		Expect(c.Set(ctx, "a", []byte("2"), time.Hour)).To(Succeed())
		now = now.Add(30 * time.Minute)

		v, ok := c.Get(ctx, "a")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal([]byte("2")))
		Expect(c.Len()).To(Equal(1))
	})

	It("evicts the least recently used entry", func() {
		for _, k := range []string{"a", "b", "c"} {
			Expect(c.Set(ctx, k, []byte(k), time.Hour)).To(Succeed())
		}
		_, _ = c.Get(ctx, "a")
		Expect(c.Set(ctx, "d", []byte("d"), time.Hour)).To(Succeed())

		_, ok := c.Get(ctx, "b")
		Expect(ok).To(BeFalse())
		for _, k := range []string{"a", "c", "d"} {
			_, ok := c.Get(ctx, k)
			Expect(ok).To(BeTrue(), k)
		}
	})

	It("isolates stored bytes from callers", func() {
		value := []byte("abc")
		Expect(c.Set(ctx, "a", value, time.Hour)).To(Succeed())
		value[0] = 'x'

		v, _ := c.Get(ctx, "a")
		v[1] = 'y'

		again, _ := c.Get(ctx, "a")
		Expect(string(again)).To(Equal("abc"))
	})

	It("is safe for concurrent use", func() {
		c = inmemory.New(100)
		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				defer GinkgoRecover()
				for j := range 100 {
					key := string(rune('a' + (i+j)%26))
					Expect(c.Set(ctx, key, []byte{byte(j)}, time.Hour)).To(Succeed())
					c.Get(ctx, key)
				}
			}(i)
		}
		wg.Wait()
		Expect(c.Len()).To(BeNumerically("<=", 26))
	})
})

var _ = Describe("Nop", func() {
	It("never stores", func() {
		var c cache.Cache = cache.Nop{}
		Expect(c.Set(context.Background(), "a", []byte("1"), time.Hour)).To(Succeed())
		_, ok := c.Get(context.Background(), "a")
		Expect(ok).To(BeFalse())
	})
})

package richness_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/phenogrid/internal/ent/pheno"
	"github.com/gnames/phenogrid/internal/ent/ranges"
	"github.com/gnames/phenogrid/internal/ent/richness"
	"github.com/gnames/phenogrid/pkg/ent/grid"
)

var _ = Describe("Monthly", func() {
	var g grid.Grid

	BeforeEach(func() {
		var err error
		g, err = grid.New(0, 2, 0, 2, 1, "")
		Expect(err).To(BeNil())
	})

	It("sums masks of flowering species for every month", func() {
		winter := pheno.NewSpecies("Winter", "Winter", time.November, time.February)
		spring := pheno.NewSpecies("Spring", "Spring", time.February, time.April)
		masks := []ranges.Mask{
			ranges.NewMask(winter, g, []int{1, 2}),
			ranges.NewMask(spring, g, []int{2, 3}),
		}
		res, flowering := richness.Monthly(g, masks)
		Expect(flowering).To(Equal([12]int{1, 2, 1, 1, 0, 0, 0, 0, 0, 0, 1, 1}))

		got := make(map[richness.Key]int)
		for _, r := range res {
			got[r.Key()] = r.Richness
		}
		Expect(got).To(HaveLen(13))
		Expect(got[richness.Key{Cell: 2, Month: 2}]).To(Equal(2))
		Expect(got[richness.Key{Cell: 1, Month: 2}]).To(Equal(1))
		Expect(got[richness.Key{Cell: 3, Month: 2}]).To(Equal(1))
		Expect(got[richness.Key{Cell: 1, Month: 12}]).To(Equal(1))
		Expect(got[richness.Key{Cell: 3, Month: 4}]).To(Equal(1))
		Expect(got).ToNot(HaveKey(richness.Key{Cell: 1, Month: 3}))
		Expect(got).ToNot(HaveKey(richness.Key{Cell: 4, Month: 2}))
	})

	It("returns nothing without masks", func() {
		res, flowering := richness.Monthly(g, nil)
		Expect(res).To(BeEmpty())
		Expect(flowering).To(Equal([12]int{}))
	})

	It("sorts records", func() {
		rs := []richness.Record{{Cell: 2, Month: 1}, {Cell: 1, Month: 5}, {Cell: 1, Month: 2}}
		richness.Sort(rs)
		Expect(rs[0].Key()).To(Equal(richness.Key{Cell: 1, Month: 2}))
		Expect(rs[2].Key()).To(Equal(richness.Key{Cell: 2, Month: 1}))
	})
})

package sciname_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/phenogrid/internal/ent/sciname"
)

var _ = Describe("Normalizer", func() {
	n := sciname.New()

	It("removes authorship", func() {
		Expect(n.Canonical("Acer rubrum L.")).To(Equal("Acer rubrum"))
	})

	It("treats underscores as spaces", func() {
		Expect(n.Canonical("Acer_rubrum")).To(Equal("Acer rubrum"))
	})

	It("keeps unparseable names", func() {
		Expect(n.Canonical("  ")).To(Equal(""))
	})

	It("makes stable identifiers", func() {
		id := sciname.ID("Acer rubrum")
		Expect(id).To(Equal(sciname.ID(n.Canonical("Acer_rubrum"))))
		Expect(id).To(HaveLen(36))
		Expect(id).ToNot(Equal(sciname.ID("Acer saccharum")))
	})
})

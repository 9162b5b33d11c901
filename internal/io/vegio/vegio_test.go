package vegio_test

import (
	"math"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/phenogrid/internal/ent/veg"
	"github.com/gnames/phenogrid/internal/io/vegio"
)

var _ = Describe("Vegio", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "phenogrid-veg")
		Expect(err).To(BeNil())
		write := func(name, data string) {
			err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0644)
			Expect(err).To(BeNil())
		}
		write("veg_2010.csv", "cell,NDVI_03,EVI_03,junk\n5,0.40,0.2,1\n6,NA,0.3,1\n")
		write("veg_2011.csv", "cell,NDVI_03,NDVI_15\n5,0.60,abc\n")
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("takes years from file names", func() {
		Expect(vegio.Year("modis_2015_ndvi.csv", 1)).To(Equal(2015))
		Expect(vegio.Year("ndvi.csv", 3)).To(Equal(3))
	})

	It("loads readings and counts problems", func() {
		rs, st, err := vegio.New(dir).Load()
		Expect(err).To(BeNil())
		Expect(st.BadKeys).To(Equal(1))
		Expect(st.BadValues).To(Equal(1))
		Expect(st.Values).To(Equal(4))

		var nan int
		for _, r := range rs {
			if math.IsNaN(r.Value) {
				nan++
			}
		}
		Expect(nan).To(Equal(1))
	})

	It("feeds aggregation", func() {
		rs, _, err := vegio.New(dir).Load()
		Expect(err).To(BeNil())
		recs, st := veg.Aggregate(rs, "NDVI", 2)
		Expect(recs).To(HaveLen(1))
		Expect(recs[0].Cell).To(Equal(5))
		Expect(recs[0].Month).To(Equal(3))
		Expect(recs[0].Mean).To(BeNumerically("~", 0.5, 1e-9))
		Expect(recs[0].StdDev).To(BeNumerically("~", 0.1414, 1e-4))
		Expect(st.Missing).To(Equal(1))
		Expect(st.OtherTags).To(Equal(2))
	})

	It("fails on a missing directory", func() {
		_, _, err := vegio.New(filepath.Join(dir, "none")).Load()
		Expect(err).ToNot(BeNil())
	})
})

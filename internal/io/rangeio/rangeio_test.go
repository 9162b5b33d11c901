package rangeio_test

import (
	"os"
	"path/filepath"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/phenogrid/internal/ent/ranges"
	"github.com/gnames/phenogrid/internal/ent/sciname"
	"github.com/gnames/phenogrid/internal/io/rangeio"
	"github.com/gnames/phenogrid/pkg/ent/grid"
)

type rangeShape struct {
	geom.Polygon
	Name string
}

var _ = Describe("Rangeio", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "phenogrid-range")
		Expect(err).To(BeNil())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	touch := func(path string) {
		Expect(os.MkdirAll(filepath.Dir(path), 0755)).To(Succeed())
		Expect(os.WriteFile(path, nil, 0644)).To(Succeed())
	}

	Describe("Provider", func() {
		It("matches names by canonical form", func() {
			touch(filepath.Join(dir, "Acer_rubrum.shp"))
			touch(filepath.Join(dir, "Salix nigra", "Salix nigra.shp"))
			touch(filepath.Join(dir, "Rosa_acicularis.shp"))
			matches := filepath.Join(dir, "matches.csv")
			data := "species,downloaded\n" +
				"Acer rubrum L.,yes\n" +
				"Salix nigra,TRUE\n" +
				"Rosa acicularis,no\n"
			Expect(os.WriteFile(matches, []byte(data), 0644)).To(Succeed())

			p := rangeio.NewProvider(dir, matches, sciname.New())
			ms, err := p.Ranges([]string{
				"Acer_rubrum", "Salix nigra", "Rosa acicularis", "Pinus ponderosa",
			})
			Expect(err).To(BeNil())
			Expect(ms).To(HaveLen(4))
			Expect(ms[0]).To(Equal(ranges.Match{
				Species: "Acer_rubrum",
				Found:   true,
				Path:    filepath.Join(dir, "Acer_rubrum.shp"),
			}))
			Expect(ms[1].Found).To(BeTrue())
			Expect(ms[1].Path).To(Equal(
				filepath.Join(dir, "Salix nigra", "Salix nigra.shp"),
			))
			Expect(ms[2].Found).To(BeFalse())
			Expect(ms[3].Found).To(BeFalse())
		})

		It("fails without a match file", func() {
			p := rangeio.NewProvider(dir, filepath.Join(dir, "none.csv"), sciname.New())
			_, err := p.Ranges([]string{"Acer rubrum"})
			Expect(err).ToNot(BeNil())
		})
	})

	Describe("Reader", func() {
		It("decodes polygons", func() {
			path := filepath.Join(dir, "square.shp")
			enc, err := shp.NewEncoder(path, rangeShape{})
			Expect(err).To(BeNil())
			sq := geom.Polygon{{
				{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}, {X: 0, Y: 0},
			}}
			Expect(enc.Encode(rangeShape{Polygon: sq, Name: "sq"})).To(Succeed())
			enc.Close()

			g, err := grid.New(0, 4, 0, 4, 1, "")
			Expect(err).To(BeNil())
			polys, err := rangeio.NewReader().Polygons(path, g)
			Expect(err).To(BeNil())
			Expect(polys).To(HaveLen(1))
			Expect(polys[0].Area()).To(BeNumerically("~", 4, 1e-9))

			r := ranges.NewRasterizer(g, rangeio.NewReader(), nil, 1)
			m := r.Rasterize(polys)
			var n int
			for _, v := range m.Elements {
				if v > 0 {
					n++
				}
			}
			Expect(n).To(Equal(4))
		})

		It("fails on a missing file", func() {
			g, _ := grid.New(0, 4, 0, 4, 1, "")
			_, err := rangeio.NewReader().Polygons(filepath.Join(dir, "none.shp"), g)
			Expect(err).ToNot(BeNil())
		})
	})
})

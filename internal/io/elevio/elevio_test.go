package elevio_test

import (
	"os"
	"path/filepath"

	"github.com/ctessum/cdf"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/phenogrid/internal/ent/elev"
	"github.com/gnames/phenogrid/internal/io/elevio"
	"github.com/gnames/phenogrid/pkg/ent/grid"
)

func writeVar(f *cdf.File, name string, data []float32) {
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	_, err := f.Writer(name, start, end).Write(data)
	Expect(err).To(BeNil())
}

// writeRaster creates a 4 x 3 raster with ascending latitudes. Values are
// 10*row + col, where row 0 is the southern row.
func writeRaster(path string) {
	w, err := os.Create(path)
	Expect(err).To(BeNil())
	defer w.Close()

	h := cdf.NewHeader([]string{"lat", "lon"}, []int{3, 4})
	h.AddVariable("lon", []string{"lon"}, []float32{0})
	h.AddVariable("lat", []string{"lat"}, []float32{0})
	h.AddVariable("z", []string{"lat", "lon"}, []float32{0})
	h.AddAttribute("z", "_FillValue", []float32{-9999})
	h.Define()

	f, err := cdf.Create(w, h)
	Expect(err).To(BeNil())
	writeVar(f, "lon", []float32{0.5, 1.5, 2.5, 3.5})
	writeVar(f, "lat", []float32{0.5, 1.5, 2.5})
	z := make([]float32, 12)
	for row := range 3 {
		for col := range 4 {
			z[row*4+col] = float32(10*row + col)
		}
	}
	z[0] = -9999
	writeVar(f, "z", z)
	Expect(cdf.UpdateNumRecs(w)).To(Succeed())
}

var _ = Describe("Elevio", func() {
	var dir, path string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "phenogrid-elev")
		Expect(err).To(BeNil())
		path = filepath.Join(dir, "elevation.nc")
		writeRaster(path)
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("reads a raster north-up", func() {
		r, err := elevio.New(path, "lon", "lat", "z").Load()
		Expect(err).To(BeNil())
		Expect(r.NCols).To(Equal(4))
		Expect(r.NRows).To(Equal(3))
		Expect(r.XMin).To(BeNumerically("~", 0, 1e-6))
		Expect(r.YMax).To(BeNumerically("~", 3, 1e-6))
		Expect(r.XRes).To(BeNumerically("~", 1, 1e-6))
		Expect(r.NoData).To(BeNumerically("~", -9999, 1e-6))
		Expect(r.At(0, 1)).To(BeNumerically("~", 21, 1e-6))
		Expect(r.At(2, 3)).To(BeNumerically("~", 3, 1e-6))
		Expect(r.At(2, 0)).To(BeNumerically("~", -9999, 1e-6))
	})

	It("feeds resampling", func() {
		r, err := elevio.New(path, "lon", "lat", "z").Load()
		Expect(err).To(BeNil())
		g, err := grid.New(0, 4, 0, 3, 1, "")
		Expect(err).To(BeNil())
		recs, st := elev.Resample(r, g, 1)
		Expect(recs).To(HaveLen(12))
		Expect(st.Filled).To(Equal(1))
		Expect(recs[8].Elevation).To(Equal(0.0))
	})

	It("fails on unknown variables", func() {
		_, err := elevio.New(path, "x", "y", "z").Load()
		Expect(err).ToNot(BeNil())
	})
})

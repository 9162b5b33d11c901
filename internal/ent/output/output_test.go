package output_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/phenogrid/internal/ent/merge"
	"github.com/gnames/phenogrid/internal/ent/output"
)

var _ = Describe("Dataset", func() {
	d := output.Dataset{Birds: []string{"Calypte anna", "Pica nuttalli"}}

	It("builds a header", func() {
		Expect(d.Header()).To(Equal([]string{
			"cell", "month", "plant_richness", "bird_richness",
			"calypte_anna", "pica_nuttalli", "veg_mean", "veg_sd", "elevation",
		}))
	})

	It("formats rows", func() {
		r := merge.Row{
			Cell: 7, Month: 4, PlantRichness: 2, BirdRichness: 1,
			Birds:   map[string]bool{"Pica nuttalli": true},
			VegMean: 0.5, VegSD: 0.1414, Elevation: 1200,
		}
		Expect(d.Fields(r)).To(Equal([]string{
			"7", "4", "2", "1", "0", "1", "0.5", "0.1414", "1200",
		}))
	})

	It("keeps bird column names unique", func() {
		d := output.Dataset{Birds: []string{
			"Setophaga petechia", "setophaga_petechia", "Elevation", "--",
		}}
		Expect(d.BirdColumns()).To(Equal([]string{
			"setophaga_petechia", "setophaga_petechia_2", "elevation_2", "sp",
		}))
		Expect(d.Header()).To(HaveLen(11))
	})
})

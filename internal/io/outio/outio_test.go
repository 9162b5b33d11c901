package outio_test

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/phenogrid/internal/ent/merge"
	"github.com/gnames/phenogrid/internal/ent/output"
	"github.com/gnames/phenogrid/internal/io/outio"
)

func dataset() output.Dataset {
	return output.Dataset{
		Birds: []string{"Calypte anna", "Setophaga petechia"},
		Rows: []merge.Row{
			{Cell: 3, Month: 4, PlantRichness: 2, BirdRichness: 1,
				Birds:   map[string]bool{"Calypte anna": true},
				VegMean: 0.5, VegSD: 0.25, Elevation: 1200},
			{Cell: 3, Month: 5, PlantRichness: 1,
				VegMean: 0.4, VegSD: 0, Elevation: 1200},
		},
	}
}

var _ = Describe("Outio", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "phenogrid-out")
		Expect(err).To(BeNil())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("rejects unknown formats", func() {
		_, err := outio.NewFile(filepath.Join(dir, "out"), "xml")
		Expect(err).ToNot(BeNil())
	})

	It("writes CSV", func() {
		path := filepath.Join(dir, "out.csv")
		w, err := outio.NewFile(path, "csv")
		Expect(err).To(BeNil())
		Expect(w.Write(dataset())).To(Succeed())

		bs, err := os.ReadFile(path)
		Expect(err).To(BeNil())
		lines := strings.Split(strings.TrimSpace(string(bs)), "\n")
		Expect(lines).To(HaveLen(3))
		Expect(lines[0]).To(Equal("cell,month,plant_richness,bird_richness," +
			"calypte_anna,setophaga_petechia,veg_mean,veg_sd,elevation"))
		Expect(lines[1]).To(Equal("3,4,2,1,1,0,0.5,0.25,1200"))
	})

	It("writes TSV", func() {
		path := filepath.Join(dir, "out.tsv")
		w, err := outio.NewFile(path, "tsv")
		Expect(err).To(BeNil())
		Expect(w.Write(dataset())).To(Succeed())
		bs, _ := os.ReadFile(path)
		Expect(string(bs)).To(ContainSubstring("3\t5\t1\t0\t0\t0\t0.4\t0\t1200"))
	})

	It("writes JSON", func() {
		path := filepath.Join(dir, "out.json")
		w, err := outio.NewFile(path, "pretty")
		Expect(err).To(BeNil())
		Expect(w.Write(dataset())).To(Succeed())
		bs, _ := os.ReadFile(path)
		var rows []map[string]any
		Expect(json.Unmarshal(bs, &rows)).To(Succeed())
		Expect(rows).To(HaveLen(2))
		Expect(rows[0]["birds"]).To(HaveKeyWithValue("Calypte anna", true))
	})

	It("writes SQLite", func() {
		path := filepath.Join(dir, "out.db")
		w := outio.NewSQLite(path)
		Expect(w.Write(dataset())).To(Succeed())
		// a second run recreates the database
		Expect(w.Write(dataset())).To(Succeed())

		db, err := sql.Open("sqlite", path)
		Expect(err).To(BeNil())
		defer db.Close()
		var n int
		Expect(db.QueryRow("SELECT count(*) FROM unified_rows").Scan(&n)).To(Succeed())
		Expect(n).To(Equal(2))
		var sp string
		Expect(db.QueryRow("SELECT species FROM bird_presence").Scan(&sp)).To(Succeed())
		Expect(sp).To(Equal("Calypte anna"))
	})
})

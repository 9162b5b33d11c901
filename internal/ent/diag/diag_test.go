package diag_test

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/gnames/phenogrid/internal/ent/diag"
)

var _ = Describe("Diag", func() {
	It("counts dropped records", func() {
		d := diag.New()
		d.Dropped("observations", diag.ReasonOutOfDomain, 3)
		d.Dropped("observations", diag.ReasonOutOfDomain, 2)
		d.Dropped("observations", diag.ReasonParse, 0)
		d.Rows("merge", 42)
		d.Duration("merge", 2*time.Second)

		exp := `
# HELP phenogrid_dropped_total Number of records dropped by stage and reason
# TYPE phenogrid_dropped_total counter
phenogrid_dropped_total{reason="out_of_domain",stage="observations"} 5
`
		err := testutil.GatherAndCompare(d.Registry(), strings.NewReader(exp),
			"phenogrid_dropped_total")
		Expect(err).To(BeNil())
		n, err := testutil.GatherAndCount(d.Registry(), "phenogrid_rows")
		Expect(err).To(BeNil())
		Expect(n).To(Equal(1))
	})

	It("writes metrics to a file", func() {
		dir, err := os.MkdirTemp("", "phenogrid-diag")
		Expect(err).To(BeNil())
		defer os.RemoveAll(dir)

		d := diag.New()
		d.Rows("merge", 7)
		path := filepath.Join(dir, "phenogrid.prom")
		Expect(d.WriteFile(path)).To(Succeed())
		bs, err := os.ReadFile(path)
		Expect(err).To(BeNil())
		Expect(string(bs)).To(ContainSubstring(`phenogrid_rows{stage="merge"} 7`))
	})
})

package obsio_test

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	_ "modernc.org/sqlite"

	"github.com/gnames/phenogrid/internal/io/obsio"
)

var _ = Describe("Obsio", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "phenogrid-obs")
		Expect(err).To(BeNil())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("parses dates", func() {
		for _, s := range []string{
			"2020-04-15", "2020-04-15 10:30:00", "2020-04-15T10:30:00Z",
			"2020/04/15", "04/15/2020",
		} {
			d, err := obsio.ParseDate(s)
			Expect(err).To(BeNil())
			Expect(d.Month()).To(Equal(time.April))
			Expect(d.Day()).To(Equal(15))
		}
		_, err := obsio.ParseDate("15 April")
		Expect(err).ToNot(BeNil())
	})

	Describe("CSV", func() {
		It("reads observations with aliased columns", func() {
			path := filepath.Join(dir, "obs.csv")
			data := "lat,lng,Species,observation_date\n" +
				"40.1,-110.2,Calypte anna,2020-04-15\n" +
				"40.1,-110.2,Calypte anna,someday\n" +
				"north,-110.2,Calypte anna,2020-04-15\n" +
				"41,-111,,2020-05-01\n" +
				"41\n"
			Expect(os.WriteFile(path, []byte(data), 0644)).To(Succeed())

			recs, bad, err := obsio.NewCSV(path).Observations()
			Expect(err).To(BeNil())
			Expect(bad).To(Equal(4))
			Expect(recs).To(HaveLen(1))
			Expect(recs[0].Species).To(Equal("Calypte anna"))
			Expect(recs[0].Lon).To(Equal(-110.2))
			Expect(recs[0].Lat).To(Equal(40.1))
		})

		It("requires known columns", func() {
			path := filepath.Join(dir, "obs.csv")
			Expect(os.WriteFile(path, []byte("a,b\n1,2\n"), 0644)).To(Succeed())
			_, _, err := obsio.NewCSV(path).Observations()
			Expect(err).ToNot(BeNil())
		})
	})

	Describe("DB", func() {
		It("reads observations from a table", func() {
			db, err := sql.Open("sqlite", filepath.Join(dir, "obs.db"))
			Expect(err).To(BeNil())
			defer db.Close()
			_, err = db.Exec(`CREATE TABLE observations (
				species TEXT, obs_date TEXT, longitude REAL, latitude REAL)`)
			Expect(err).To(BeNil())
			_, err = db.Exec(`INSERT INTO observations VALUES
				('Setophaga petechia', '2019-06-02', -120.5, 38.25),
				('Setophaga petechia', NULL, -120.5, 38.25),
				(NULL, '2019-06-02', -120.5, 38.25)`)
			Expect(err).To(BeNil())

			recs, bad, err := obsio.NewDB(db, "observations").Observations()
			Expect(err).To(BeNil())
			Expect(bad).To(Equal(2))
			Expect(recs).To(HaveLen(1))
			Expect(recs[0].Date.Month()).To(Equal(time.June))
			Expect(recs[0].Lon).To(Equal(-120.5))
		})
	})
})

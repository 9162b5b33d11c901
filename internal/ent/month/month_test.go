package month_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/gnames/phenogrid/internal/ent/month"
)

var _ = Describe("Month", func() {
	DescribeTable("Parse",
		func(s string, exp time.Month, ok bool) {
			m, err := month.Parse(s)
			if !ok {
				Expect(err).To(Equal(month.ErrBadMonth))
				return
			}
			Expect(err).To(BeNil())
			Expect(m).To(Equal(exp))
		},
		Entry("full name", "November", time.November, true),
		Entry("upper case", "FEBRUARY", time.February, true),
		Entry("abbreviation", "mar", time.March, true),
		Entry("abbreviation with dot", "Sept.", time.September, true),
		Entry("number", " 7 ", time.July, true),
		Entry("empty", "", time.Month(0), false),
		Entry("zero", "0", time.Month(0), false),
		Entry("thirteen", "13", time.Month(0), false),
		Entry("garbage", "Smarch", time.Month(0), false),
	)

	It("normalizes month counters", func() {
		m, err := month.Normalize(13)
		Expect(err).To(BeNil())
		Expect(m).To(Equal(time.January))
		m, _ = month.Normalize(24)
		Expect(m).To(Equal(time.December))
		_, err = month.Normalize(0)
		Expect(err).To(Equal(month.ErrBadMonth))
		m, err = month.ParseCounter("15")
		Expect(err).To(BeNil())
		Expect(m).To(Equal(time.March))
		m, _ = month.ParseCounter("Oct")
		Expect(m).To(Equal(time.October))
	})

	It("lists all months", func() {
		ms := month.All()
		Expect(ms).To(HaveLen(12))
		Expect(ms[0]).To(Equal(time.January))
		Expect(ms[11]).To(Equal(time.December))
	})
})

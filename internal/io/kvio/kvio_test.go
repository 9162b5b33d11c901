package kvio_test

import (
	"os"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/phenogrid/internal/io/kvio"
)

var _ = Describe("Kvio", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "phenogrid-kv")
		Expect(err).To(BeNil())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("stores and returns values", func() {
		kv, err := kvio.New(dir, false)
		Expect(err).To(BeNil())
		Expect(kv.Open()).To(Succeed())
		Expect(kv.SetValue([]byte("a"), []byte("1"))).To(Succeed())
		val, err := kv.GetValue([]byte("a"))
		Expect(err).To(BeNil())
		Expect(string(val)).To(Equal("1"))

		val, err = kv.GetValue([]byte("b"))
		Expect(err).To(BeNil())
		Expect(val).To(BeNil())
		Expect(kv.Close()).To(Succeed())
	})

	It("keeps values between sessions unless fresh", func() {
		kv, _ := kvio.New(dir, false)
		Expect(kv.Open()).To(Succeed())
		Expect(kv.SetValue([]byte("a"), []byte("1"))).To(Succeed())
		Expect(kv.Close()).To(Succeed())

		kv, _ = kvio.New(dir, false)
		Expect(kv.Open()).To(Succeed())
		val, _ := kv.GetValue([]byte("a"))
		Expect(string(val)).To(Equal("1"))
		Expect(kv.Close()).To(Succeed())

		kv, _ = kvio.New(dir, true)
		Expect(kv.Open()).To(Succeed())
		val, _ = kv.GetValue([]byte("a"))
		Expect(val).To(BeNil())
		Expect(kv.Close()).To(Succeed())
	})

	It("fails when closed", func() {
		kv, _ := kvio.New(dir, false)
		_, err := kv.GetValue([]byte("a"))
		Expect(err).ToNot(BeNil())
	})
})

package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Naming", func() {
	It("should accept dot-separated CamelCase names", func() {
		Expect(func() { NameMustBeValid("Retimer") }).NotTo(Panic())
		Expect(func() { NameMustBeValid("TB.Retimer.WPipeline") }).NotTo(Panic())
	})

	It("should accept bracket indices", func() {
		Expect(func() { NameMustBeValid("Retimer.WPipeline[2]") }).NotTo(Panic())
		Expect(func() { NameMustBeValid("Mesh[0][1].Port[3]") }).NotTo(Panic())
	})

	It("should panic if the name is empty", func() {
		Expect(func() { NameMustBeValid("") }).To(Panic())
	})

	It("should panic if an element is empty", func() {
		Expect(func() { NameMustBeValid("Retimer..WPipeline") }).To(Panic())
	})

	It("should panic if an element contains an underscore", func() {
		Expect(func() { NameMustBeValid("Retimer_0") }).To(Panic())
	})

	It("should panic if an element contains a dash", func() {
		Expect(func() { NameMustBeValid("Retimer-0") }).To(Panic())
	})

	It("should panic if an element is not capitalized", func() {
		Expect(func() { NameMustBeValid("retimer") }).To(Panic())
	})

	It("should require paired square brackets", func() {
		Expect(func() { NameMustBeValid("Retimer[0") }).To(Panic())
		Expect(func() { NameMustBeValid("Retimer0]") }).To(Panic())
	})

	It("should require integer indices", func() {
		Expect(func() { NameMustBeValid("Retimer[x]") }).To(Panic())
	})

	It("should build hierarchical names", func() {
		Expect(BuildName("", "Retimer")).To(Equal("Retimer"))
		Expect(BuildName("TB", "Retimer")).To(Equal("TB.Retimer"))
		Expect(BuildNameWithIndex("TB", "Checker", 3)).
			To(Equal("TB.Checker[3]"))
	})
})

package mealprepcmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	mealprepcmder "github.com/papercomputeco/mealprep/cmd/mealprep"
)

var _ = Describe("NewMealprepCmd", func() {
	It("registers every subcommand", func() {
		cmd := mealprepcmder.NewMealprepCmd()
		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("chat", "export", "plans", "serve", "config", "version"))
	})

	It("has persistent --debug and --config-dir flags", func() {
		cmd := mealprepcmder.NewMealprepCmd()
		debug := cmd.PersistentFlags().Lookup("debug")
		Expect(debug).NotTo(BeNil())
		Expect(debug.Shorthand).To(Equal("d"))
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
	})
})

package versioncmder_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	versioncmder "github.com/papercomputeco/mealprep/cmd/version"
	"github.com/papercomputeco/mealprep/pkg/utils"
)

var _ = Describe("version", func() {
	var out *bytes.Buffer

	BeforeEach(func() {
		version, sha, built := utils.Version, utils.Sha, utils.Buildtime
		utils.Version, utils.Sha, utils.Buildtime = "v1.2.0", "0123456789abcdef", "2026-10-01T12:00:00Z"
		DeferCleanup(func() {
			utils.Version, utils.Sha, utils.Buildtime = version, sha, built
		})
		out = &bytes.Buffer{}
	})

	run := func(args ...string) error {
		cmd := versioncmder.NewVersionCmd()
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	It("prints version, commit and build time", func() {
		Expect(run()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Version:"))
		Expect(out.String()).To(ContainSubstring("v1.2.0"))
		Expect(out.String()).To(ContainSubstring("0123456789abcdef"))
		Expect(out.String()).To(ContainSubstring("2026-10-01T12:00:00Z"))
	})

	It("prints a single line with --short", func() {
		Expect(run("--short")).To(Succeed())
		Expect(out.String()).To(Equal("v1.2.0 (0123456)\n"))
	})

	It("rejects arguments", func() {
		Expect(run("extra")).NotTo(Succeed())
	})
})

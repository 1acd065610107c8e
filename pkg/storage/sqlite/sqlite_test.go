package sqlite_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/mealprep/pkg/storage"
	"github.com/papercomputeco/mealprep/pkg/storage/sqlite"
	testutils "github.com/papercomputeco/mealprep/pkg/utils/test"
)

var _ = Describe("Driver", func() {
	testutils.DriverConformance(func() storage.Driver {
		d, err := sqlite.NewDriver(":memory:")
		Expect(err).NotTo(HaveOccurred())
		return d
	})

	Describe("NewDriver", func() {
		It("creates a driver with file database", func() {
			tmpDir := GinkgoT().TempDir()
			dbPath := filepath.Join(tmpDir, "test.db")

			s, err := sqlite.NewDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()

			// Verify file was created
			_, err = os.Stat(dbPath)
			Expect(err).NotTo(HaveOccurred())
		})

		It("keeps data across reopen", func() {
			ctx := context.Background()
			dbPath := filepath.Join(GinkgoT().TempDir(), "plans.db")

			s, err := sqlite.NewDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.SavePlan(ctx, &storage.Plan{SessionID: "s", Markdown: "# Kept"})).To(Succeed())
			Expect(s.Close()).To(Succeed())

			s, err = sqlite.NewDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()

			p, err := s.LatestPlan(ctx, "s")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Markdown).To(Equal("# Kept"))
		})
	})
})

package postgres_test

import (
	"context"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/mealprep/pkg/storage"
	"github.com/papercomputeco/mealprep/pkg/storage/postgres"
	testutils "github.com/papercomputeco/mealprep/pkg/utils/test"
)

// connStr returns the PostgreSQL connection string from environment or skips the test.
func connStr() string {
	dsn := os.Getenv("MEALPREP_TEST_POSTGRES_DSN")
	if dsn == "" {
		Skip("MEALPREP_TEST_POSTGRES_DSN not set, skipping PostgreSQL tests")
	}
	return dsn
}

var _ = Describe("Driver", func() {
	testutils.DriverConformance(func() storage.Driver {
		ctx := context.Background()
		d, err := postgres.NewDriver(ctx, connStr())
		Expect(err).NotTo(HaveOccurred())

		_, err = d.DB().ExecContext(ctx, "TRUNCATE messages, plans RESTART IDENTITY")
		Expect(err).NotTo(HaveOccurred())
		return d
	})
})

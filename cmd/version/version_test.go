package versioncmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	versioncmder "github.com/papercomputeco/folio/cmd/version"
	"github.com/papercomputeco/folio/pkg/utils"
	testutils "github.com/papercomputeco/folio/pkg/utils/test"
)

var _ = Describe("NewVersionCmd", func() {
	It("prints the build metadata", func() {
		out, err := testutils.RunCommand(versioncmder.NewVersionCmd())
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring(utils.Version))
		Expect(out).To(ContainSubstring("Built at"))
	})

	It("rejects arguments", func() {
		_, err := testutils.RunCommand(versioncmder.NewVersionCmd(), "extra")
		Expect(err).To(HaveOccurred())
	})
})

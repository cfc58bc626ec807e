package diag_test

import (
	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"

	"github.com/patchbay/enginecore/diag"
)

var _ = Describe("WriteIssueTable", func() {
	var (
		mockCtrl *gomock.Controller
		w        *MockWriter
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		w = NewMockWriter(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("writes at least one line for a non-empty issue list", func() {
		w.EXPECT().Write(gomock.Any()).Return(0, nil).MinTimes(1)

		diag.WriteIssueTable(w, "errors", []diag.Issue{
			{Code: "MODEL_DUPLICATE_ID", EntityID: "n1", Message: "duplicate node id"},
		})
	})

	It("still renders a placeholder row when there are no issues", func() {
		w.EXPECT().Write(gomock.Any()).Return(0, nil).MinTimes(1)

		diag.WriteIssueTable(w, "errors", nil)
	})
})

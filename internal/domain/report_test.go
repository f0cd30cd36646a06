package domain

import (
	"testing"
	"time"
)

func TestFinalize_SummaryFromItems(t *testing.T) {
	r := RunReport{
		StartedAt:  time.Date(2023, 5, 1, 12, 0, 0, 0, time.FixedZone("X", 8*3600)),
		FinishedAt: time.Date(2023, 5, 1, 12, 1, 0, 0, time.FixedZone("X", 8*3600)),
		Items: []ItemResult{
			{Index: 1, Status: StatusCopied},
			{Index: 2, Status: StatusMissing},
			{Index: 3, Status: StatusCopied},
			{Index: 4, Status: StatusFailed},
			{Index: 5, Status: StatusPlanned},
		},
	}
	r.Finalize()

	want := ReportSummary{Copied: 2, Planned: 1, Missing: 1, Failed: 1}
	if r.Summary != want {
		t.Fatalf("summary 不符合预期：got=%+v want=%+v", r.Summary, want)
	}
	if r.Summary.Succeeded() != 3 || r.Summary.FailedTotal() != 2 {
		t.Fatalf("汇总口径错误：succeeded=%d failed=%d", r.Summary.Succeeded(), r.Summary.FailedTotal())
	}
	if r.StartedAt.Location() != time.UTC || r.FinishedAt.Location() != time.UTC {
		t.Fatalf("时间未统一为 UTC")
	}
}

func TestFinalize_KeepsDocumentOrder(t *testing.T) {
	r := RunReport{Items: []ItemResult{
		{Index: 1, Src: "b.jpg", Status: StatusMissing},
		{Index: 2, Src: "a.jpg", Status: StatusCopied},
	}}
	r.Finalize()

	if r.Items[0].Src != "b.jpg" || r.Items[1].Src != "a.jpg" {
		t.Fatalf("items 顺序被改变：%+v", r.Items)
	}
}

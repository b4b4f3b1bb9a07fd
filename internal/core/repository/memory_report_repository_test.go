package repository

import (
	"testing"
	"time"

	"zxtrack/internal/core/model"
)

func TestReportLatestByIMEI(t *testing.T) {
	repo := NewInMemoryReportRepository()
	base := time.Date(2021, 7, 30, 12, 0, 0, 0, time.UTC)

	older := model.NewReport("111", base, 52.0, 13.0, "GPS_POSITIONING")
	newer := model.NewReport("111", base.Add(time.Hour), 52.1, 13.1, "WIFI_POSITIONING")
	other := model.NewReport("222", base.Add(2*time.Hour), 48.0, 11.0, "GPS_POSITIONING")
	for _, r := range []*model.Report{older, newer, other} {
		if err := repo.Store(r); err != nil {
			t.Fatalf("Store: %v", err)
		}
	}

	latest, err := repo.FindLatestByIMEI("111")
	if err != nil {
		t.Fatalf("FindLatestByIMEI: %v", err)
	}
	if latest == nil || latest.ID != newer.ID {
		t.Errorf("latest = %+v, want report %s", latest, newer.ID)
	}

	all, err := repo.FindByIMEI("111")
	if err != nil {
		t.Fatalf("FindByIMEI: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d reports, want 2", len(all))
	}

	none, err := repo.FindLatestByIMEI("333")
	if err != nil {
		t.Fatalf("FindLatestByIMEI: %v", err)
	}
	if none != nil {
		t.Errorf("unexpected report %+v for unseen device", none)
	}
}

package repository

import (
	"sync"
	"time"

	"zxtrack/internal/core/model"
)

type inMemoryReportRepository struct {
	reports map[string]*model.Report
	mutex   sync.RWMutex
}

func NewInMemoryReportRepository() ReportRepository {
	return &inMemoryReportRepository{
		reports: make(map[string]*model.Report),
	}
}

func (r *inMemoryReportRepository) Store(report *model.Report) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.reports[report.ID] = report
	return nil
}

func (r *inMemoryReportRepository) FindByIMEI(imei string) ([]*model.Report, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var result []*model.Report
	for _, report := range r.reports {
		if report.IMEI == imei {
			result = append(result, report)
		}
	}
	return result, nil
}

func (r *inMemoryReportRepository) FindLatestByIMEI(imei string) (*model.Report, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var latest *model.Report
	var latestTime time.Time

	for _, report := range r.reports {
		if report.IMEI == imei {
			if latest == nil || report.DevTime.After(latestTime) {
				latest = report
				latestTime = report.DevTime
			}
		}
	}
	return latest, nil
}

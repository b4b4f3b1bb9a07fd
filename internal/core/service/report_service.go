package service

import (
	"zxtrack/internal/core/model"
	"zxtrack/internal/core/repository"
)

type ReportService interface {
	GetReports(imei string) ([]*model.Report, error)
	GetLatestReport(imei string) (*model.Report, error)
}

type reportService struct {
	reportRepo repository.ReportRepository
}

func NewReportService(reportRepo repository.ReportRepository) ReportService {
	return &reportService{
		reportRepo: reportRepo,
	}
}

func (s *reportService) GetReports(imei string) ([]*model.Report, error) {
	return s.reportRepo.FindByIMEI(imei)
}

func (s *reportService) GetLatestReport(imei string) (*model.Report, error) {
	return s.reportRepo.FindLatestByIMEI(imei)
}

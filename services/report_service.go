package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"tradie-match-server/apperror"
	"tradie-match-server/logger"
	"tradie-match-server/models"
)

// Report reasons.
var ReportReasons = []string{
	"inappropriate_content",
	"harassment",
	"fake_profile",
	"no_show",
	"poor_workmanship",
	"payment_issue",
	"other",
}

type ReportRequest struct {
	ReportedID string                 `json:"reported_id"`
	JobID      string                 `json:"job_id"`
	Reason     string                 `json:"reason" binding:"required"`
	Details    map[string]interface{} `json:"details"`
}

type ReportService struct {
	reports  ReportRepository
	jobs     JobRepository
	profiles ProfileRepository
	log      logger.Logger
}

func NewReportService(reports ReportRepository, jobs JobRepository, profiles ProfileRepository, log logger.Logger) *ReportService {
	return &ReportService{reports: reports, jobs: jobs, profiles: profiles, log: log}
}

// Submit files a report about a user, or a dispute about an archived job
// when JobID is set. A dispute is always against the job's counterpart.
func (s *ReportService) Submit(ctx context.Context, reporterID string, req ReportRequest) (*models.Report, error) {
	reason := strings.TrimSpace(req.Reason)
	if !knownReason(reason) {
		return nil, apperror.NewValidation("Please choose a reason")
	}

	report := &models.Report{
		ID:         uuid.NewString(),
		ReporterID: reporterID,
		Reason:     reason,
		Status:     models.ReportStatusOpen,
	}
	if len(req.Details) > 0 {
		report.Details = datatypes.JSONMap(req.Details)
	}

	if req.JobID != "" {
		job, err := s.jobs.FindByID(ctx, req.JobID)
		if err != nil {
			return nil, err
		}
		if !job.IsParty(reporterID) {
			return nil, apperror.NewNotFound("Job", req.JobID)
		}
		if !job.Archived {
			return nil, apperror.NewConflict("Only finished jobs can be disputed", req.JobID)
		}
		counterpart, _ := job.Counterpart(reporterID)
		jobID := job.ID
		report.JobID = &jobID
		report.InvoiceID = job.InvoiceID
		report.ReportedID = counterpart
	} else {
		if req.ReportedID == "" {
			return nil, apperror.NewValidation("Please choose who to report")
		}
		if req.ReportedID == reporterID {
			return nil, apperror.NewValidation("You cannot report yourself")
		}
		if _, err := s.profiles.FindByID(ctx, req.ReportedID); err != nil {
			return nil, err
		}
		report.ReportedID = req.ReportedID
	}

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, translate(err, "create report")
	}
	s.log.Info("🚩 Report filed",
		zap.String("report_id", report.ID),
		zap.String("reporter_id", reporterID),
		zap.String("reported_id", report.ReportedID),
		zap.String("reason", reason))
	return report, nil
}

func (s *ReportService) Mine(ctx context.Context, reporterID string) ([]models.Report, error) {
	reports, err := s.reports.ListByReporter(ctx, reporterID)
	if err != nil {
		return nil, translate(err, "list reports")
	}
	return reports, nil
}

func knownReason(reason string) bool {
	for _, r := range ReportReasons {
		if r == reason {
			return true
		}
	}
	return false
}

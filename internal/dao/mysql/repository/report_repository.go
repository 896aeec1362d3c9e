package repository

import (
	"context"

	"spark_chat_server/internal/model"

	"gorm.io/gorm"
)

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository 创建 ReportRepository 实例
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *model.UserReport) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return wrapDBErrorf(err, "创建举报 reporter_id=%s reported_id=%s", report.ReporterId, report.ReportedId)
	}
	return nil
}

func (r *reportRepository) CountByReportedId(ctx context.Context, reportedId string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.UserReport{}).
		Where("reported_id = ?", reportedId).
		Count(&count).Error
	if err != nil {
		return 0, wrapDBErrorf(err, "统计举报 reported_id=%s", reportedId)
	}
	return count, nil
}

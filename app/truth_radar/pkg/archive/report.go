package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
)

// ReportEntry 举报原文与回执
type ReportEntry struct {
	Report  *model.MisinformationReport `json:"report"`
	Receipt *model.ReportReceipt        `json:"receipt"`
}

// SaveReport 保存举报
func (s *Store) SaveReport(ctx context.Context, report *model.MisinformationReport, receipt *model.ReportReceipt) error {
	rb, err := json.Marshal(report)
	if err != nil {
		return err
	}
	cb, err := json.Marshal(receipt)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.Rebind(`
		INSERT INTO reports (id, category, urgency, status, report, receipt, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		receipt.ReportID, receipt.Category, receipt.Urgency, receipt.Status,
		string(rb), string(cb), receipt.SubmittedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

// GetReport 按举报编号读取
func (s *Store) GetReport(ctx context.Context, id string) (*ReportEntry, error) {
	var rb, cb string
	err := s.db.QueryRowContext(ctx, s.Rebind(`SELECT report, receipt FROM reports WHERE id = ?`), id).Scan(&rb, &cb)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	entry := &ReportEntry{Report: &model.MisinformationReport{}, Receipt: &model.ReportReceipt{}}
	if err := json.Unmarshal([]byte(rb), entry.Report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	if err := json.Unmarshal([]byte(cb), entry.Receipt); err != nil {
		return nil, fmt.Errorf("failed to decode receipt: %w", err)
	}
	return entry, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"PaperScope/db"
	"PaperScope/internal/models"
)

var _ db.HistoryStorage = (*SQLiteDB)(nil)

// Save 写入一条历史记录，随后把该类型超出保留上限的最旧记录删掉
func (d *SQLiteDB) Save(ctx context.Context, record *models.HistoryRecord) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("历史记录缺少 id")
	}
	if !models.ValidHistoryType(record.Type) {
		return fmt.Errorf("未知的历史类型: %s", record.Type)
	}

	params, err := json.Marshal(record.Params)
	if err != nil {
		return fmt.Errorf("序列化请求参数失败: %w", err)
	}
	summary, err := json.Marshal(record.ResultSummary)
	if err != nil {
		return fmt.Errorf("序列化结果概要失败: %w", err)
	}
	papers, err := json.Marshal(record.Papers)
	if err != nil {
		return fmt.Errorf("序列化论文列表失败: %w", err)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO history (id, type, timestamp, params, result_summary, papers) VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID, record.Type, record.Timestamp.UTC().Format(time.RFC3339), string(params), string(summary), string(papers))
	if err != nil {
		return fmt.Errorf("写入历史记录失败: %w", err)
	}

	// 按类型淘汰最旧的超额记录
	_, err = tx.ExecContext(ctx,
		`DELETE FROM history WHERE type = ? AND id NOT IN (
			SELECT id FROM history WHERE type = ? ORDER BY timestamp DESC, id DESC LIMIT ?
		)`,
		record.Type, record.Type, HistoryKeepPerType)
	if err != nil {
		return fmt.Errorf("清理历史记录失败: %w", err)
	}

	return tx.Commit()
}

// List 按时间倒序返回历史记录，recordType 为空时不限类型
func (d *SQLiteDB) List(ctx context.Context, recordType string, limit int) ([]*models.HistoryRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, type, timestamp, params, result_summary, papers FROM history`
	args := []interface{}{}
	if recordType != "" {
		query += ` WHERE type = ?`
		args = append(args, recordType)
	}
	query += ` ORDER BY timestamp DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询历史记录失败: %w", err)
	}
	defer rows.Close()

	var records []*models.HistoryRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Get 按 id 取单条记录
func (d *SQLiteDB) Get(ctx context.Context, id string) (*models.HistoryRecord, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, type, timestamp, params, result_summary, papers FROM history WHERE id = ?`, id)

	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, db.ErrNotFound
	}
	return r, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*models.HistoryRecord, error) {
	var (
		r         models.HistoryRecord
		timestamp string
		params    sql.NullString
		summary   sql.NullString
		papers    sql.NullString
	)

	if err := row.Scan(&r.ID, &r.Type, &timestamp, &params, &summary, &papers); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("读取历史记录失败: %w", err)
	}

	if t, err := time.Parse(time.RFC3339, timestamp); err == nil {
		r.Timestamp = t
	}
	if params.Valid && params.String != "" {
		json.Unmarshal([]byte(params.String), &r.Params)
	}
	if summary.Valid && summary.String != "" {
		json.Unmarshal([]byte(summary.String), &r.ResultSummary)
	}
	if papers.Valid && papers.String != "" {
		json.Unmarshal([]byte(papers.String), &r.Papers)
	}

	return &r, nil
}

package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// HistoryKeepPerType 每种历史类型最多保留的记录数
const HistoryKeepPerType = 100

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("无法创建目录，请检查权限问题: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("无法打开数据库，请检查权限问题: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("无法连接到数据库: %w", err)
	}

	sqlDB := &SQLiteDB{db: db}

	if err := sqlDB.initTable(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("数据库创建失败: %w", err)
	}

	return sqlDB, nil
}

func (d *SQLiteDB) Close() error { return d.db.Close() }

func (d *SQLiteDB) initTable() error {
	schema := `
CREATE TABLE IF NOT EXISTS history (
  id TEXT PRIMARY KEY,
  type TEXT NOT NULL,
  timestamp DATETIME NOT NULL,
  params TEXT,                   -- 请求参数（JSON）
  result_summary TEXT,           -- 结果概要（JSON）
  papers TEXT                    -- 论文列表快照（JSON）
);

CREATE INDEX IF NOT EXISTS idx_history_type_time ON history(type, timestamp);
	`

	_, err := d.db.Exec(schema)

	return err
}

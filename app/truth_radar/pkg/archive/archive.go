// Package archive 分析结果与举报的持久化，支持 postgres 与 sqlite
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/config"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/logger"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
)

var (
	ErrNotFound = errors.New("archive: record not found")
	ErrDisabled = errors.New("archive: database not configured")
)

// Store 归档存储
type Store struct {
	db      *sql.DB
	dialect string
	now     func() time.Time
}

// Open 按配置打开数据库并初始化表结构
func Open(ctx context.Context, cfg config.DBConfig) (*Store, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Driver {
	case "postgres":
		connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
		db, err = sql.Open("postgres", connStr)
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = "truth_radar.db"
		}
		db, err = sql.Open("sqlite", path)
		if err == nil {
			// sqlite 单写者
			db.SetMaxOpenConns(1)
		}
	case "":
		return nil, ErrDisabled
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db, dialect: cfg.Driver, now: time.Now}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logger.Log.Infof("归档数据库已就绪: %s", cfg.Driver)
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DB 供同库的其他仓储复用连接
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Rebind 把 ? 占位符改写为当前方言的形式
func (s *Store) Rebind(query string) string {
	if s.dialect != "postgres" {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (s *Store) initSchema(ctx context.Context) error {
	// created_at 统一存毫秒时间戳，两种方言行为一致
	queries := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id TEXT PRIMARY KEY,
			content_preview TEXT,
			language TEXT,
			analysis_level TEXT,
			user_type TEXT,
			risk_score INTEGER,
			credibility_score INTEGER,
			threat_level TEXT,
			result TEXT,
			created_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses (created_at)`,
		`CREATE TABLE IF NOT EXISTS analysis_tactics (
			analysis_id TEXT NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
			tactic TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			category TEXT,
			urgency TEXT,
			status TEXT,
			report TEXT,
			receipt TEXT,
			created_at BIGINT NOT NULL
		)`,
	}
	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query %s: %w", query, err)
		}
	}
	return nil
}

// Preview 截取内容预览
func Preview(text string) string {
	r := []rune(text)
	if len(r) <= 200 {
		return text
	}
	return string(r[:200]) + "..."
}

// NewRecord 由请求与结果生成归档记录
func NewRecord(req *model.AnalysisRequest, res *model.AnalysisResult) *model.AnalysisRecord {
	return &model.AnalysisRecord{
		ID:             res.ID,
		ContentPreview: Preview(req.Text),
		Language:       req.Language,
		Level:          req.Level,
		UserType:       req.UserType,
		RiskScore:      res.RiskScore,
		Credibility:    res.CredibilityScore,
		ThreatLevel:    res.ThreatLevel,
		Result:         res,
		CreatedAt:      res.Timestamp,
	}
}

// SaveAnalysis 写入一次分析及其手法
func (s *Store) SaveAnalysis(ctx context.Context, rec *model.AnalysisRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	var payload []byte
	if rec.Result != nil {
		b, err := json.Marshal(rec.Result)
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		payload = b
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.Rebind(`
		INSERT INTO analyses (id, content_preview, language, analysis_level, user_type,
			risk_score, credibility_score, threat_level, result, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		rec.ID, rec.ContentPreview, rec.Language, string(rec.Level), string(rec.UserType),
		rec.RiskScore, rec.Credibility, string(rec.ThreatLevel), string(payload), rec.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}

	if rec.Result != nil {
		for _, tactic := range rec.Result.ManipulationTactics {
			_, err = tx.ExecContext(ctx, s.Rebind(`INSERT INTO analysis_tactics (analysis_id, tactic) VALUES (?, ?)`),
				rec.ID, tactic)
			if err != nil {
				return fmt.Errorf("failed to insert tactic: %w", err)
			}
		}
	}
	return tx.Commit()
}

const analysisColumns = `id, content_preview, language, analysis_level, user_type,
	risk_score, credibility_score, threat_level, result, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner, withResult bool) (*model.AnalysisRecord, error) {
	var (
		rec                          model.AnalysisRecord
		level, userType, threat, raw string
		createdAt                    int64
	)
	err := row.Scan(&rec.ID, &rec.ContentPreview, &rec.Language, &level, &userType,
		&rec.RiskScore, &rec.Credibility, &threat, &raw, &createdAt)
	if err != nil {
		return nil, err
	}
	rec.Level = model.AnalysisLevel(level)
	rec.UserType = model.UserType(userType)
	rec.ThreatLevel = model.ThreatLevel(threat)
	rec.CreatedAt = time.UnixMilli(createdAt).UTC()
	if withResult && raw != "" {
		var res model.AnalysisResult
		if err := json.Unmarshal([]byte(raw), &res); err != nil {
			return nil, fmt.Errorf("failed to decode result: %w", err)
		}
		rec.Result = &res
	}
	return &rec, nil
}

// GetAnalysis 按 ID 读取完整记录
func (s *Store) GetAnalysis(ctx context.Context, id string) (*model.AnalysisRecord, error) {
	row := s.db.QueryRowContext(ctx, s.Rebind(`SELECT `+analysisColumns+` FROM analyses WHERE id = ?`), id)
	rec, err := scanRecord(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// ListRecent 最近的分析，userType 为空时不过滤；列表不携带完整结果
func (s *Store) ListRecent(ctx context.Context, limit int, userType model.UserType) ([]*model.AnalysisRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := `SELECT ` + analysisColumns + ` FROM analyses`
	args := []any{}
	if userType != "" {
		query += ` WHERE user_type = ?`
		args = append(args, string(userType))
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, s.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.AnalysisRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows, false)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Statistics 汇总统计，"今日" 按 UTC 计算
func (s *Store) Statistics(ctx context.Context) (*model.Statistics, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var st model.Statistics
	err := s.db.QueryRowContext(ctx, s.Rebind(`
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN risk_score > 70 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN threat_level = 'HIGH' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN user_type = 'authority' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN risk_score BETWEEN 40 AND 70 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN risk_score < 40 THEN 1 ELSE 0 END), 0)
		FROM analyses`), today.UnixMilli()).Scan(
		&st.TotalAnalyses, &st.AnalyzedToday, &st.FlaggedContent, &st.HighRiskContent,
		&st.AuthorityReports, &st.Distribution.Medium, &st.Distribution.Low)
	if err != nil {
		return nil, fmt.Errorf("failed to query statistics: %w", err)
	}
	st.Distribution.High = st.FlaggedContent
	return &st, nil
}

// TacticCount 手法出现次数
type TacticCount struct {
	Tactic string `json:"tactic"`
	Count  int    `json:"count"`
}

// TopTactics 出现最多的手法
func (s *Store) TopTactics(ctx context.Context, limit int) ([]TacticCount, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, s.Rebind(`
		SELECT tactic, COUNT(*) AS n FROM analysis_tactics
		GROUP BY tactic ORDER BY n DESC, tactic LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []TacticCount{}
	for rows.Next() {
		var tc TacticCount
		if err := rows.Scan(&tc.Tactic, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// PurgeBefore 删除早于 t 的分析，返回删除条数
func (s *Store) PurgeBefore(ctx context.Context, t time.Time) (int64, error) {
	cutoff := t.UnixMilli()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.Rebind(`
		DELETE FROM analysis_tactics WHERE analysis_id IN
			(SELECT id FROM analyses WHERE created_at < ?)`), cutoff); err != nil {
		return 0, fmt.Errorf("failed to purge tactics: %w", err)
	}
	res, err := tx.ExecContext(ctx, s.Rebind(`DELETE FROM analyses WHERE created_at < ?`), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge analyses: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, tx.Commit()
}

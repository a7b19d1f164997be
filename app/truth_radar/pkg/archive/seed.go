package archive

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/logger"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/model"
)

type demoItem struct {
	id      string
	text    string
	user    model.UserType
	risk    int
	cred    int
	threat  model.ThreatLevel
	tactics []string
	age     time.Duration
}

var demoItems = []demoItem{
	{
		id:      "demo-0001",
		text:    "BREAKING: Doctors don't want you to know this secret cure! Share immediately before it gets deleted!!!",
		user:    model.UserPublic,
		risk:    90,
		cred:    8,
		threat:  model.ThreatHigh,
		tactics: []string{"urgency_tactics", "authority_undermining", "emotional_manipulation"},
		age:     2 * time.Hour,
	},
	{
		id:      "demo-0002",
		text:    "Forwarded message: new policy changes will affect pensions from next month, everyone is talking about it.",
		user:    model.UserAuthority,
		risk:    55,
		cred:    36,
		threat:  model.ThreatMedium,
		tactics: []string{"false_consensus"},
		age:     26 * time.Hour,
	},
	{
		id:     "demo-0003",
		text:   "The committee published a peer-reviewed study on rainfall patterns across the region.",
		user:   model.UserPublic,
		risk:   0,
		cred:   80,
		threat: model.ThreatLow,
		age:    72 * time.Hour,
	},
}

// SeedDemo 写入演示数据，已存在的条目跳过，可重复调用
func (s *Store) SeedDemo(ctx context.Context) (int, error) {
	now := s.now()
	inserted := 0
	for _, d := range demoItems {
		var id string
		err := s.db.QueryRowContext(ctx, s.Rebind(`SELECT id FROM analyses WHERE id = ?`), d.id).Scan(&id)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return inserted, err
		}

		res := model.NewAnalysisResult()
		res.ID = d.id
		res.Timestamp = now.Add(-d.age)
		res.RiskScore = d.risk
		res.CredibilityScore = d.cred
		res.ThreatLevel = d.threat
		res.AddTactics(d.tactics...)
		req := &model.AnalysisRequest{Text: d.text, UserType: d.user}
		req.Normalize()
		if err := s.SaveAnalysis(ctx, NewRecord(req, res)); err != nil {
			return inserted, err
		}
		inserted++
	}
	if inserted > 0 {
		logger.Log.Infof("已写入 %d 条演示数据", inserted)
	}
	return inserted, nil
}

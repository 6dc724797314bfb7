// Package journal 命令运行记录
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/injoyai/awatcher/logger"
	"github.com/injoyai/awatcher/store/sqlstore"
	"xorm.io/xorm"
)

type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// RunModel 一次命令运行
type RunModel struct {
	ID        int64  `json:"-" xorm:"pk autoincr"`
	RunID     string `json:"id" xorm:"unique"`
	Command   string `json:"command" xorm:"index"`
	Args      string `json:"args"`
	Status    Status `json:"status"`
	Count     int    `json:"count"` //处理的记录数
	Error     string `json:"error,omitempty" xorm:"text"`
	StartedAt int64  `json:"startedAt"`
	EndedAt   int64  `json:"endedAt"`
}

func (this *RunModel) TableName() string {
	return "run"
}

// Duration 运行时长,未结束为0
func (this *RunModel) Duration() time.Duration {
	if this.EndedAt == 0 {
		return 0
	}
	return time.Duration(this.EndedAt-this.StartedAt) * time.Millisecond
}

func Dial(driver, dsn string) (*Journal, error) {
	db, err := sqlstore.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	return New(db)
}

func New(db *xorm.Engine) (*Journal, error) {
	if err := db.Sync2(new(RunModel)); err != nil {
		return nil, err
	}
	return &Journal{db: db}, nil
}

type Journal struct {
	db *xorm.Engine
}

func (this *Journal) Close() error {
	if this == nil {
		return nil
	}
	return this.db.Close()
}

// Run 记录开始,执行fn,记录结果,返回fn的结果
// 记录本身失败不影响fn的结果
func (this *Journal) Run(ctx context.Context, command, args string, fn func(ctx context.Context) (int, error)) (int, error) {
	if this == nil {
		return fn(ctx)
	}

	run := &RunModel{
		RunID:     uuid.New().String(),
		Command:   command,
		Args:      args,
		Status:    StatusRunning,
		StartedAt: time.Now().UnixMilli(),
	}
	_, journalErr := this.db.Insert(run)
	if journalErr != nil {
		logger.PrintErr(fmt.Errorf("记录运行[%s]失败: %w", command, journalErr))
	}

	count, err := fn(ctx)

	if journalErr == nil {
		run.Count = count
		run.Status = StatusSuccess
		run.EndedAt = time.Now().UnixMilli()
		if err != nil {
			run.Status = StatusFailed
			run.Error = err.Error()
		}
		if _, e := this.db.Where("RunID=?", run.RunID).Cols("Status,Count,Error,EndedAt").Update(run); e != nil {
			logger.PrintErr(fmt.Errorf("更新运行记录[%s]失败: %w", run.RunID, e))
		}
	}

	return count, err
}

// Recent 最近的运行记录,新的在前
func (this *Journal) Recent(ctx context.Context, limit int) ([]*RunModel, error) {
	ls := []*RunModel(nil)
	err := this.db.Context(ctx).Desc("ID").Limit(limit).Find(&ls)
	return ls, err
}

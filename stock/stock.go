// Package stock 股票文档模型,一只股票一条记录,内嵌日线,小时线和复权因子三个序列
package stock

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound 股票不存在
var ErrNotFound = errors.New("stock not found")

// Series 内嵌序列的字段名
type Series string

const (
	DayLine      Series = "dayLine"
	HourLine     Series = "hourLine"
	AdjustFactor Series = "adjustFactor"
)

func (this Series) String() string { return string(this) }

// Name 日志里的中文名
func (this Series) Name() string {
	switch this {
	case DayLine:
		return "日K线"
	case HourLine:
		return "小时K线"
	case AdjustFactor:
		return "复权因子"
	}
	return string(this)
}

// Stock 股票
type Stock struct {
	ID              string   `bson:"-" json:"id,omitempty"`
	Code            string   `bson:"code" json:"code"`                           //代码,例sh.600000
	Name            string   `bson:"name" json:"name"`                           //名称
	Market          string   `bson:"market" json:"market"`                       //市场,sh/sz
	IsFocused       bool     `bson:"isFocused" json:"isFocused"`                 //关注
	IsHourFocused   bool     `bson:"isHourFocused" json:"isHourFocused"`         //小时线关注
	IsStar          bool     `bson:"isStar" json:"isStar"`                       //星标
	FocusedDays     int      `bson:"focusedDays" json:"focusedDays"`             //关注天数
	HourFocusedDays int      `bson:"hourFocusedDays" json:"hourFocusedDays"`     //小时线关注天数
	DayLine         []Candle `bson:"dayLine,omitempty" json:"dayLine"`           //日K线
	HourLine        []Candle `bson:"hourLine,omitempty" json:"hourLine"`         //小时K线
	AdjustFactor    []Factor `bson:"adjustFactor,omitempty" json:"adjustFactor"` //复权因子
}

// Candle K线
type Candle struct {
	Time   time.Time `bson:"time" json:"time"` //日线只有日期,小时线带时分
	Open   float64   `bson:"open" json:"open"`
	High   float64   `bson:"high" json:"high"`
	Low    float64   `bson:"low" json:"low"`
	Close  float64   `bson:"close" json:"close"`
	Volume float64   `bson:"volume" json:"volume"` //成交量,股
	Amount float64   `bson:"amount" json:"amount"` //成交额,元
}

func (this Candle) At() time.Time { return this.Time }

// Factor 一条复权因子记录
type Factor struct {
	Time             time.Time `bson:"time" json:"time"`
	ForeAdjustFactor float64   `bson:"foreAdjustFactor" json:"foreAdjustFactor"` //前复权因子
	BackAdjustFactor float64   `bson:"backAdjustFactor" json:"backAdjustFactor"` //后复权因子
	AdjustFactor     float64   `bson:"adjustFactor" json:"adjustFactor"`         //本次复权因子
}

func (this Factor) At() time.Time { return this.Time }

// Point 序列里的一个点,以时间为唯一键
type Point interface {
	Candle | Factor
	At() time.Time
}

// Last 序列最后一个点的时间,序列为空返回false
func (this *Stock) Last(s Series) (time.Time, bool) {
	switch s {
	case DayLine:
		return last(this.DayLine)
	case HourLine:
		return last(this.HourLine)
	case AdjustFactor:
		return last(this.AdjustFactor)
	}
	return time.Time{}, false
}

func last[T Point](ls []T) (time.Time, bool) {
	if len(ls) == 0 {
		return time.Time{}, false
	}
	return ls[len(ls)-1].At(), true
}

// Repository 股票存储,各实现需保证同一序列里时间唯一,且追加保持顺序
type Repository interface {
	// SetupIndexes 初始化索引
	SetupIndexes(ctx context.Context) error

	// Save 保存基本信息,已存在只更新基本字段,不动序列;不存在则新建并带上空序列
	Save(ctx context.Context, s *Stock) (string, error)

	// Find 获取完整的股票记录
	Find(ctx context.Context, code string) (*Stock, error)

	// FindLast 获取股票记录,指定序列只带最后一个点
	FindLast(ctx context.Context, code string, s Series) (*Stock, error)

	// Exists 股票是否存在
	Exists(ctx context.Context, code string) (bool, error)

	// Codes 全部股票代码,按写入顺序
	Codes(ctx context.Context) ([]string, error)

	// MergeDayLine 合并一个日K线,相同时间的替换,否则追加到末尾
	MergeDayLine(ctx context.Context, code string, c Candle) error
	MergeHourLine(ctx context.Context, code string, c Candle) error
	MergeAdjustFactor(ctx context.Context, code string, f Factor) error

	// ReplaceDayLine 整体替换日K线序列
	ReplaceDayLine(ctx context.Context, code string, cs []Candle) error
	ReplaceHourLine(ctx context.Context, code string, cs []Candle) error
	ReplaceAdjustFactor(ctx context.Context, code string, fs []Factor) error

	// LatestTradingDate 全部股票里最新的日K线时间
	LatestTradingDate(ctx context.Context) (time.Time, error)
}

// Date 只保留日期
func Date(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

package sqlstore

import (
	"time"

	"github.com/injoyai/awatcher/stock"
)

const (
	tableStock        = "stock"
	tableDayLine      = "day_line"
	tableHourLine     = "hour_line"
	tableAdjustFactor = "adjust_factor"
)

// StockModel 股票基本信息
type StockModel struct {
	ID              int64  `xorm:"pk autoincr"`
	Code            string `xorm:"unique"` //代码,例sh.600000
	Name            string `xorm:"index"`
	Market          string `xorm:"index"`
	IsFocused       bool
	IsHourFocused   bool
	IsStar          bool
	FocusedDays     int
	HourFocusedDays int
	InDate          int64 `xorm:"created"`
	EditDate        int64 `xorm:"updated"`
}

func (this *StockModel) TableName() string { return tableStock }

// stockCols 基本信息更新时修改的字段
const stockCols = "Name,Market,IsFocused,IsHourFocused,IsStar,FocusedDays,HourFocusedDays"

func newStockModel(s *stock.Stock) *StockModel {
	return &StockModel{
		Code:            s.Code,
		Name:            s.Name,
		Market:          s.Market,
		IsFocused:       s.IsFocused,
		IsHourFocused:   s.IsHourFocused,
		IsStar:          s.IsStar,
		FocusedDays:     s.FocusedDays,
		HourFocusedDays: s.HourFocusedDays,
	}
}

func (this *StockModel) Stock() *stock.Stock {
	return &stock.Stock{
		Code:            this.Code,
		Name:            this.Name,
		Market:          this.Market,
		IsFocused:       this.IsFocused,
		IsHourFocused:   this.IsHourFocused,
		IsStar:          this.IsStar,
		FocusedDays:     this.FocusedDays,
		HourFocusedDays: this.HourFocusedDays,
		DayLine:         []stock.Candle{},
		HourLine:        []stock.Candle{},
		AdjustFactor:    []stock.Factor{},
	}
}

// CandleModel K线,Seq是序列里的顺序
type CandleModel struct {
	ID     int64  `xorm:"pk autoincr"`
	Code   string `xorm:"unique(code_time)"`
	Time   int64  `xorm:"unique(code_time) index"` //时间戳,秒
	Seq    int64
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	Amount float64
}

const candleCols = "Open,High,Low,Close,Volume,Amount"

func newCandleModel(code string, c stock.Candle) *CandleModel {
	return &CandleModel{
		Code:   code,
		Time:   c.Time.Unix(),
		Open:   c.Open,
		High:   c.High,
		Low:    c.Low,
		Close:  c.Close,
		Volume: c.Volume,
		Amount: c.Amount,
	}
}

func (this *CandleModel) Candle() stock.Candle {
	return stock.Candle{
		Time:   time.Unix(this.Time, 0).UTC(),
		Open:   this.Open,
		High:   this.High,
		Low:    this.Low,
		Close:  this.Close,
		Volume: this.Volume,
		Amount: this.Amount,
	}
}

// DayLineModel 日K线表
type DayLineModel struct {
	CandleModel `xorm:"extends"`
}

func (this *DayLineModel) TableName() string { return tableDayLine }

// HourLineModel 小时K线表
type HourLineModel struct {
	CandleModel `xorm:"extends"`
}

func (this *HourLineModel) TableName() string { return tableHourLine }

// FactorModel 复权因子
type FactorModel struct {
	ID               int64  `xorm:"pk autoincr"`
	Code             string `xorm:"unique(code_time)"`
	Time             int64  `xorm:"unique(code_time)"`
	Seq              int64
	ForeAdjustFactor float64
	BackAdjustFactor float64
	AdjustFactor     float64
}

func (this *FactorModel) TableName() string { return tableAdjustFactor }

const factorCols = "ForeAdjustFactor,BackAdjustFactor,AdjustFactor"

func newFactorModel(code string, f stock.Factor) *FactorModel {
	return &FactorModel{
		Code:             code,
		Time:             f.Time.Unix(),
		ForeAdjustFactor: f.ForeAdjustFactor,
		BackAdjustFactor: f.BackAdjustFactor,
		AdjustFactor:     f.AdjustFactor,
	}
}

func (this *FactorModel) Factor() stock.Factor {
	return stock.Factor{
		Time:             time.Unix(this.Time, 0).UTC(),
		ForeAdjustFactor: this.ForeAdjustFactor,
		BackAdjustFactor: this.BackAdjustFactor,
		AdjustFactor:     this.AdjustFactor,
	}
}

// seqModel 只查询顺序号
type seqModel struct {
	Seq int64
}

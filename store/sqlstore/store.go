package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/injoyai/awatcher/stock"
	"xorm.io/xorm"
)

// insertBatch 批量插入时每次的条数
const insertBatch = 500

var _ stock.Repository = (*Store)(nil)

// Dial 连接数据库并同步表结构
func Dial(driver, dsn string) (*Store, error) {
	db, err := Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	return New(db)
}

func New(db *xorm.Engine) (*Store, error) {
	s := &Store{db: db}
	if err := s.SetupIndexes(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

/*
Store 股票存储
每个序列一张表,(Code,Time)唯一,Seq记录在序列里的顺序
替换保持Seq,追加取最大Seq+1,整体替换从1开始重写
*/
type Store struct {
	db *xorm.Engine
}

// SetupIndexes 同步表结构,索引由字段标签生成
func (this *Store) SetupIndexes(ctx context.Context) error {
	return this.db.Sync2(new(StockModel), new(DayLineModel), new(HourLineModel), new(FactorModel))
}

func (this *Store) Close() error {
	return this.db.Close()
}

// Save 存在只更新基本字段,不存在新增,在一个事务里完成
func (this *Store) Save(ctx context.Context, s *stock.Stock) (string, error) {
	var id int64
	err := NewSessionFunc(this.db, func(session *xorm.Session) error {
		session.Context(ctx)
		m := newStockModel(s)
		old := new(StockModel)
		has, err := session.Where("Code=?", s.Code).Get(old)
		if err != nil {
			return err
		}
		if has {
			id = old.ID
			_, err = session.Where("ID=?", old.ID).Cols(stockCols).Update(m)
			return err
		}
		if _, err = session.Insert(m); err != nil {
			return err
		}
		id = m.ID
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("保存股票[%s]失败: %w", s.Code, err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (this *Store) getStock(ctx context.Context, code string) (*stock.Stock, error) {
	m := new(StockModel)
	has, err := this.db.Context(ctx).Where("Code=?", code).Get(m)
	if err != nil {
		return nil, err
	} else if !has {
		return nil, stock.ErrNotFound
	}
	s := m.Stock()
	s.ID = strconv.FormatInt(m.ID, 10)
	return s, nil
}

func (this *Store) Find(ctx context.Context, code string) (*stock.Stock, error) {
	s, err := this.getStock(ctx, code)
	if err != nil {
		return nil, err
	}
	for _, series := range []stock.Series{stock.DayLine, stock.HourLine, stock.AdjustFactor} {
		if err = this.loadSeries(ctx, s, series, 0); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// FindLast 只加载指定序列的最后一条
func (this *Store) FindLast(ctx context.Context, code string, series stock.Series) (*stock.Stock, error) {
	s, err := this.getStock(ctx, code)
	if err != nil {
		return nil, err
	}
	if err = this.loadSeries(ctx, s, series, 1); err != nil {
		return nil, err
	}
	return s, nil
}

// loadSeries 加载序列,last大于0时只加载最后last条
func (this *Store) loadSeries(ctx context.Context, s *stock.Stock, series stock.Series, last int) error {
	session := this.db.Context(ctx).Table(tableName(series)).Where("Code=?", s.Code)
	if last > 0 {
		session = session.Desc("Seq").Limit(last)
	} else {
		session = session.Asc("Seq")
	}

	switch series {
	case stock.DayLine, stock.HourLine:
		ls := []*CandleModel(nil)
		if err := session.Find(&ls); err != nil {
			return err
		}
		cs := make([]stock.Candle, len(ls))
		for i, v := range ls {
			cs[i] = v.Candle()
		}
		if last > 0 {
			reverse(cs)
		}
		if series == stock.DayLine {
			s.DayLine = cs
		} else {
			s.HourLine = cs
		}

	case stock.AdjustFactor:
		ls := []*FactorModel(nil)
		if err := session.Find(&ls); err != nil {
			return err
		}
		fs := make([]stock.Factor, len(ls))
		for i, v := range ls {
			fs[i] = v.Factor()
		}
		if last > 0 {
			reverse(fs)
		}
		s.AdjustFactor = fs

	default:
		return fmt.Errorf("未知的序列: %s", series)
	}
	return nil
}

func (this *Store) Exists(ctx context.Context, code string) (bool, error) {
	return this.db.Context(ctx).Table(tableStock).Where("Code=?", code).Exist()
}

func (this *Store) Codes(ctx context.Context) ([]string, error) {
	codes := []string(nil)
	err := this.db.Context(ctx).Table(tableStock).Cols("Code").Asc("ID").Find(&codes)
	return codes, err
}

func (this *Store) MergeDayLine(ctx context.Context, code string, c stock.Candle) error {
	m := newCandleModel(code, c)
	return this.merge(ctx, code, stock.DayLine, m.Time, candleCols, m, &m.Seq)
}

func (this *Store) MergeHourLine(ctx context.Context, code string, c stock.Candle) error {
	m := newCandleModel(code, c)
	return this.merge(ctx, code, stock.HourLine, m.Time, candleCols, m, &m.Seq)
}

func (this *Store) MergeAdjustFactor(ctx context.Context, code string, f stock.Factor) error {
	m := newFactorModel(code, f)
	return this.merge(ctx, code, stock.AdjustFactor, m.Time, factorCols, m, &m.Seq)
}

// merge 相同时间的更新数值字段,顺序不变;否则以最大Seq+1追加
func (this *Store) merge(ctx context.Context, code string, series stock.Series, unix int64, cols string, bean any, seq *int64) error {
	table := tableName(series)
	err := NewSessionFunc(this.db, func(session *xorm.Session) error {
		session.Context(ctx)

		if has, err := session.Table(tableStock).Where("Code=?", code).Exist(); err != nil {
			return err
		} else if !has {
			return stock.ErrNotFound
		}

		has, err := session.Table(table).Where("Code=? and Time=?", code, unix).Exist()
		if err != nil {
			return err
		}
		if has {
			_, err = session.Table(table).Where("Code=? and Time=?", code, unix).Cols(cols).Update(bean)
			return err
		}

		last := new(seqModel)
		if _, err = session.Table(table).Where("Code=?", code).Desc("Seq").Get(last); err != nil {
			return err
		}
		*seq = last.Seq + 1
		_, err = session.Table(table).Insert(bean)
		return err
	})
	if err != nil && !errors.Is(err, stock.ErrNotFound) {
		return fmt.Errorf("合并%s[%s %s]失败: %w", series.Name(), code, time.Unix(unix, 0).UTC().Format(time.DateTime), err)
	}
	return err
}

func (this *Store) ReplaceDayLine(ctx context.Context, code string, cs []stock.Candle) error {
	rows := make([]*CandleModel, len(cs))
	for i, c := range cs {
		rows[i] = newCandleModel(code, c)
		rows[i].Seq = int64(i + 1)
	}
	return replace(ctx, this, code, stock.DayLine, rows)
}

func (this *Store) ReplaceHourLine(ctx context.Context, code string, cs []stock.Candle) error {
	rows := make([]*CandleModel, len(cs))
	for i, c := range cs {
		rows[i] = newCandleModel(code, c)
		rows[i].Seq = int64(i + 1)
	}
	return replace(ctx, this, code, stock.HourLine, rows)
}

func (this *Store) ReplaceAdjustFactor(ctx context.Context, code string, fs []stock.Factor) error {
	rows := make([]*FactorModel, len(fs))
	for i, f := range fs {
		rows[i] = newFactorModel(code, f)
		rows[i].Seq = int64(i + 1)
	}
	return replace(ctx, this, code, stock.AdjustFactor, rows)
}

// replace 删除原有序列后按顺序插入,在一个事务里完成
func replace[T any](ctx context.Context, this *Store, code string, series stock.Series, rows []T) error {
	table := tableName(series)
	err := NewSessionFunc(this.db, func(session *xorm.Session) error {
		session.Context(ctx)

		if has, err := session.Table(tableStock).Where("Code=?", code).Exist(); err != nil {
			return err
		} else if !has {
			return stock.ErrNotFound
		}

		if _, err := session.Exec("DELETE FROM "+table+" WHERE Code=?", code); err != nil {
			return err
		}
		for i := 0; i < len(rows); i += insertBatch {
			end := i + insertBatch
			if end > len(rows) {
				end = len(rows)
			}
			if _, err := session.Table(table).Insert(rows[i:end]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, stock.ErrNotFound) {
		return fmt.Errorf("替换%s[%s]失败: %w", series.Name(), code, err)
	}
	return err
}

func (this *Store) LatestTradingDate(ctx context.Context) (time.Time, error) {
	m := new(CandleModel)
	has, err := this.db.Context(ctx).Table(tableDayLine).Desc("Time").Get(m)
	if err != nil {
		return time.Time{}, err
	} else if !has {
		return time.Time{}, stock.ErrNotFound
	}
	return time.Unix(m.Time, 0).UTC(), nil
}

func tableName(series stock.Series) string {
	switch series {
	case stock.DayLine:
		return tableDayLine
	case stock.HourLine:
		return tableHourLine
	case stock.AdjustFactor:
		return tableAdjustFactor
	}
	return ""
}

func reverse[T any](ls []T) {
	for i, j := 0, len(ls)-1; i < j; i, j = i+1, j-1 {
		ls[i], ls[j] = ls[j], ls[i]
	}
}

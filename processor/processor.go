// Package processor 决定每只股票的拉取区间,调用行情接口,合并到存储
package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/injoyai/awatcher/logger"
	"github.com/injoyai/awatcher/protocol"
	"github.com/injoyai/awatcher/stock"
)

// Source 行情数据来源,start,end为零值表示未指定
type Source interface {
	StockList(ctx context.Context) ([]*stock.Stock, error)
	DailyKData(ctx context.Context, code string, start, end time.Time) ([]stock.Candle, error)
	HourlyKData(ctx context.Context, code string, start, end time.Time) ([]stock.Candle, error)
	AdjustFactors(ctx context.Context, code string, start, end time.Time) ([]stock.Factor, error)
}

type Options struct {
	// ContinueOnError 全部股票模式下,单只股票失败后记录并继续,默认直接中止
	ContinueOnError bool
}

func New(repo stock.Repository, src Source, op ...Options) *Processor {
	p := &Processor{
		repo: repo,
		src:  src,
		now:  time.Now,
	}
	if len(op) > 0 {
		p.Options = op[0]
	}
	return p
}

type Processor struct {
	Options
	repo stock.Repository
	src  Source
	now  func() time.Time
}

// today 交易所时区的今天
func (this *Processor) today() time.Time {
	return stock.Date(this.now().In(protocol.Location))
}

// StockList 获取股票列表并保存基本信息
func (this *Processor) StockList(ctx context.Context) (int, error) {
	ls, err := this.src.StockList(ctx)
	if err != nil {
		return 0, err
	}
	for _, v := range ls {
		if _, err = this.repo.Save(ctx, v); err != nil {
			return 0, err
		}
	}
	logger.Infof("成功处理并保存 %d 只股票的基本信息", len(ls))
	return len(ls), nil
}

func (this *Processor) DayLine(ctx context.Context, code string, start, end time.Time) (int, error) {
	return process(ctx, this, job[stock.Candle]{
		series:  stock.DayLine,
		fetch:   this.src.DailyKData,
		merge:   this.repo.MergeDayLine,
		replace: this.repo.ReplaceDayLine,
		last:    func(s *stock.Stock) []stock.Candle { return s.DayLine },
	}, code, start, end)
}

func (this *Processor) HourLine(ctx context.Context, code string, start, end time.Time) (int, error) {
	return process(ctx, this, job[stock.Candle]{
		series:  stock.HourLine,
		fetch:   this.src.HourlyKData,
		merge:   this.repo.MergeHourLine,
		replace: this.repo.ReplaceHourLine,
		last:    func(s *stock.Stock) []stock.Candle { return s.HourLine },
	}, code, start, end)
}

func (this *Processor) AdjustFactor(ctx context.Context, code string, start, end time.Time) (int, error) {
	return process(ctx, this, job[stock.Factor]{
		series:  stock.AdjustFactor,
		fetch:   this.src.AdjustFactors,
		merge:   this.repo.MergeAdjustFactor,
		replace: this.repo.ReplaceAdjustFactor,
		last:    func(s *stock.Stock) []stock.Factor { return s.AdjustFactor },
	}, code, start, end)
}

func (this *Processor) DayLineAll(ctx context.Context, start, end time.Time) (int, error) {
	return this.all(ctx, stock.DayLine, start, end, this.DayLine)
}

func (this *Processor) HourLineAll(ctx context.Context, start, end time.Time) (int, error) {
	return this.all(ctx, stock.HourLine, start, end, this.HourLine)
}

func (this *Processor) AdjustFactorAll(ctx context.Context, start, end time.Time) (int, error) {
	return this.all(ctx, stock.AdjustFactor, start, end, this.AdjustFactor)
}

// all 按顺序处理全部股票,默认第一个错误中止
func (this *Processor) all(ctx context.Context, s stock.Series, start, end time.Time, fn func(ctx context.Context, code string, start, end time.Time) (int, error)) (int, error) {
	codes, err := this.repo.Codes(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	errs := []error(nil)
	for i, code := range codes {
		if err = ctx.Err(); err != nil {
			return total, err
		}
		n, err := fn(ctx, code, start, end)
		total += n
		if err != nil {
			if !this.ContinueOnError {
				return total, err
			}
			logger.Errorf("[%d/%d] 处理股票 %s %s失败,继续下一只: %v", i+1, len(codes), code, s.Name(), err)
			errs = append(errs, err)
		}
	}
	logger.Infof("全部股票%s处理完成,共 %d 只, %d 条记录, %d 只失败", s.Name(), len(codes), total, len(errs))
	return total, errors.Join(errs...)
}

type job[T stock.Point] struct {
	series  stock.Series
	fetch   func(ctx context.Context, code string, start, end time.Time) ([]T, error)
	merge   func(ctx context.Context, code string, p T) error
	replace func(ctx context.Context, code string, ps []T) error
	last    func(s *stock.Stock) []T
}

/*
process 处理一只股票的一个序列
1. 股票不存在,记录并返回0
2. 未指定开始日期且序列不为空,从最后一条的日期开始(包含)
3. 未指定结束日期,默认今天
4. 开始日期大于结束日期,已是最新
5. 拉取数据
6. 再次确认股票存在
7. 有开始日期逐条合并,否则整体替换
8. 返回已保存的条数,失败时也是
*/
func process[T stock.Point](ctx context.Context, this *Processor, j job[T], code string, start, end time.Time) (int, error) {
	s, err := this.repo.FindLast(ctx, code, j.series)
	if errors.Is(err, stock.ErrNotFound) {
		logger.Warnf("股票 %s 不存在,无法保存%s数据", code, j.series.Name())
		return 0, nil
	} else if err != nil {
		return 0, err
	}

	if start.IsZero() {
		if ls := j.last(s); len(ls) > 0 {
			start = stock.Date(ls[len(ls)-1].At())
			logger.Debugf("股票 %s 从最后一条%s数据日期 %s 开始获取", code, j.series.Name(), start.Format(time.DateOnly))
		}
	}

	if end.IsZero() {
		end = this.today()
	}

	if !start.IsZero() && stock.Date(start).After(stock.Date(end)) {
		logger.Infof("股票 %s 的%s数据已是最新,无需更新", code, j.series.Name())
		return 0, nil
	}

	ls, err := j.fetch(ctx, code, start, end)
	if err != nil {
		return 0, err
	}

	if exist, err := this.repo.Exists(ctx, code); err != nil {
		return 0, err
	} else if !exist {
		logger.Warnf("股票 %s 不存在,无法保存%s数据", code, j.series.Name())
		return 0, nil
	}

	//已保存的条数,合并中途失败时之前的仍然有效
	saved := 0
	if !start.IsZero() {
		for _, v := range ls {
			if err = j.merge(ctx, code, v); err != nil {
				break
			}
			saved++
		}
	} else if len(ls) > 0 {
		if err = j.replace(ctx, code, ls); err == nil {
			saved = len(ls)
			logger.Infof("批量更新股票 %s 的%s数据,共 %d 条记录", code, j.series.Name(), len(ls))
		}
	}
	if errors.Is(err, stock.ErrNotFound) {
		logger.Warnf("股票 %s 不存在,无法保存%s数据", code, j.series.Name())
		return saved, nil
	} else if err != nil {
		return saved, fmt.Errorf("保存股票 %s %s数据失败,已保存 %d 条: %w", code, j.series.Name(), saved, err)
	}

	logger.Infof("成功处理并保存股票 %s 的 %d 条%s数据", code, len(ls), j.series.Name())
	return len(ls), nil
}

// Package market 行情数据客户端,首次使用时连接行情服务器,Logout断开
package market

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/injoyai/awatcher/config"
	"github.com/injoyai/awatcher/extend"
	"github.com/injoyai/awatcher/logger"
	"github.com/injoyai/awatcher/protocol"
	"github.com/injoyai/awatcher/stock"
	"github.com/injoyai/awatcher/tdx"
)

const (
	// DefaultStartDate 日线,小时线默认开始日期
	DefaultStartDate = "1990-01-01"

	// DefaultFactorDays 复权因子默认获取最近的天数
	DefaultFactorDays = 365

	// IndexCode 交易日历使用上证指数
	IndexCode = "sh000001"
)

type Option func(c *Client)

func WithHosts(hosts []string) Option {
	return func(c *Client) { c.hosts = hosts }
}

func WithTimeout(t time.Duration) Option {
	return func(c *Client) { c.timeout = t }
}

func WithDebug(b bool) Option {
	return func(c *Client) { c.debug = b }
}

func WithRedial(b bool) Option {
	return func(c *Client) { c.redial = b }
}

// WithDefaultStart 未指定开始日期时日线,小时线从该日期开始
func WithDefaultStart(t time.Time) Option {
	return func(c *Client) { c.defaultStart = t }
}

// WithFactorDays 未指定日期时复权因子获取最近的天数
func WithFactorDays(n int) Option {
	return func(c *Client) { c.factorDays = n }
}

// WithTHS 自定义复权数据来源
func WithTHS(ths *extend.THS) Option {
	return func(c *Client) { c.ths = ths }
}

// NewWithConfig 按配置创建客户端
func NewWithConfig(p config.Provider, u config.DataUpdate) (*Client, error) {
	op := []Option{
		WithHosts(p.Hosts),
		WithDebug(p.Debug),
		WithRedial(p.Redial),
	}
	if p.TimeoutSeconds > 0 {
		op = append(op, WithTimeout(time.Duration(p.TimeoutSeconds)*time.Second))
	}
	if u.AdjustFactorDays > 0 {
		op = append(op, WithFactorDays(u.AdjustFactorDays))
	}
	if u.DefaultStartDate != "" {
		t, err := time.Parse(time.DateOnly, u.DefaultStartDate)
		if err != nil {
			return nil, fmt.Errorf("data_update.default_start_date格式错误: %w", err)
		}
		op = append(op, WithDefaultStart(t))
	}
	return New(op...), nil
}

func New(op ...Option) *Client {
	start, _ := time.Parse(time.DateOnly, DefaultStartDate)
	c := &Client{
		timeout:      5 * time.Second,
		defaultStart: start,
		factorDays:   DefaultFactorDays,
		now:          time.Now,
	}
	for _, v := range op {
		v(c)
	}
	if c.ths == nil {
		c.ths = extend.NewTHS(c.timeout * 2)
	}
	return c
}

// Client 行情客户端,连接在第一次读取时建立,整个进程复用
type Client struct {
	hosts        []string
	timeout      time.Duration
	debug        bool
	redial       bool
	defaultStart time.Time
	factorDays   int
	ths          *extend.THS
	now          func() time.Time

	mu sync.Mutex
	c  *tdx.Client
}

// session 获取连接,未连接则连接
func (this *Client) session() (*tdx.Client, error) {
	this.mu.Lock()
	defer this.mu.Unlock()
	if this.c != nil {
		return this.c, nil
	}
	logger.Infof("正在连接行情服务器...")
	c, err := tdx.Dial(this.hosts, tdx.WithDebug(this.debug), tdx.WithRedial(this.redial))
	if err != nil {
		return nil, fmt.Errorf("连接行情服务器失败: %w", err)
	}
	c.SetTimeout(this.timeout)
	this.c = c
	logger.Infof("行情服务器连接成功")
	return c, nil
}

// Logout 断开连接,未连接或重复调用无影响
func (this *Client) Logout() {
	this.mu.Lock()
	defer this.mu.Unlock()
	if this.c == nil {
		return
	}
	this.c.Close()
	this.c = nil
	logger.Infof("行情服务器已断开")
}

// today 交易所时区的今天
func (this *Client) today() time.Time {
	return stock.Date(this.now().In(protocol.Location))
}

// StockList 沪深全部A股
func (this *Client) StockList(ctx context.Context) ([]*stock.Stock, error) {
	c, err := this.session()
	if err != nil {
		return nil, err
	}
	logger.Infof("正在获取股票列表...")
	ls, err := c.GetStockAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取股票列表失败: %w", err)
	}
	result := toStocks(ls)
	logger.Infof("成功获取 %d 只股票的基本信息", len(result))
	return result, nil
}

// DailyKData 日K线,日期在[start,end]内,按时间正序,零值使用默认
func (this *Client) DailyKData(ctx context.Context, code string, start, end time.Time) ([]stock.Candle, error) {
	start, end = this.window(start, end)
	ls, err := this.klines(ctx, (*tdx.Client).GetKlineDayUntil, code, start)
	if err != nil {
		return nil, fmt.Errorf("获取股票[%s]日K线失败: %w", code, err)
	}
	result := toCandles(code, ls, start, end)
	logger.Infof("成功获取股票 %s 的 %d 条日K线数据(%s 至 %s)", code, len(result), start.Format(time.DateOnly), end.Format(time.DateOnly))
	return result, nil
}

// HourlyKData 60分钟K线,日期在[start,end]内
func (this *Client) HourlyKData(ctx context.Context, code string, start, end time.Time) ([]stock.Candle, error) {
	start, end = this.window(start, end)
	ls, err := this.klines(ctx, (*tdx.Client).GetKlineHourUntil, code, start)
	if err != nil {
		return nil, fmt.Errorf("获取股票[%s]小时K线失败: %w", code, err)
	}
	result := toCandles(code, ls, start, end)
	logger.Infof("成功获取股票 %s 的 %d 条小时K线数据(%s 至 %s)", code, len(result), start.Format(time.DateOnly), end.Format(time.DateOnly))
	return result, nil
}

// AdjustFactors 复权因子,未指定开始日期时取最近factorDays天
// 返回窗口内第一个交易日和因子发生变化的交易日
func (this *Client) AdjustFactors(ctx context.Context, code string, start, end time.Time) ([]stock.Factor, error) {
	if start.IsZero() {
		start = this.today().AddDate(0, 0, -this.factorDays)
	}
	start, end = this.window(start, end)

	ls, err := this.klines(ctx, (*tdx.Client).GetKlineDayUntil, code, start)
	if err != nil {
		return nil, fmt.Errorf("获取股票[%s]复权因子失败: %w", code, err)
	}
	raw := []extend.DayClose(nil)
	for _, v := range toCandles(code, ls, start, end) {
		raw = append(raw, extend.DayClose{Date: v.Time, Close: v.Close})
	}
	if len(raw) == 0 {
		return nil, nil
	}

	wire := WireCode(code)
	qfq, err := this.ths.GetDayKline(ctx, wire, extend.THS_QFQ)
	if err != nil {
		return nil, fmt.Errorf("获取股票[%s]前复权数据失败: %w", code, err)
	}
	hfq, err := this.ths.GetDayKline(ctx, wire, extend.THS_HFQ)
	if err != nil {
		return nil, fmt.Errorf("获取股票[%s]后复权数据失败: %w", code, err)
	}

	result := toFactors(extend.ChangedFactors(extend.CalcFactors(raw, qfq, hfq)))
	logger.Infof("成功获取股票 %s 的 %d 条复权因子数据", code, len(result))
	return result, nil
}

// IndexDays 全部交易日,来自上证指数的日K线
func (this *Client) IndexDays(ctx context.Context) ([]time.Time, error) {
	c, err := this.session()
	if err != nil {
		return nil, err
	}
	resp, err := c.GetIndexDayAll(ctx, IndexCode)
	if err != nil {
		return nil, fmt.Errorf("获取交易日失败: %w", err)
	}
	days := make([]time.Time, 0, len(resp.List))
	for _, v := range resp.List {
		if v.TimeErr == nil {
			days = append(days, stock.Date(v.Time))
		}
	}
	return days, nil
}

// window 补全默认的开始和结束日期
func (this *Client) window(start, end time.Time) (time.Time, time.Time) {
	if start.IsZero() {
		start = this.defaultStart
	}
	if end.IsZero() {
		end = this.today()
	}
	return stock.Date(start), stock.Date(end)
}

// untilFunc tdx.Client按周期分页拉取K线的方法
type untilFunc func(c *tdx.Client, ctx context.Context, code string, f func(k *protocol.Kline) bool) (*protocol.KlineResp, error)

// klines 从最新往前拉取,直到start之前
func (this *Client) klines(ctx context.Context, fetch untilFunc, code string, start time.Time) ([]*protocol.Kline, error) {
	c, err := this.session()
	if err != nil {
		return nil, err
	}
	resp, err := fetch(c, ctx, WireCode(code), func(k *protocol.Kline) bool {
		return k.TimeErr == nil && k.Time.Before(start)
	})
	if err != nil {
		return nil, err
	}
	return resp.List, nil
}

// WireCode 存储的代码转行情服务器的代码,sh.600000转sh600000
func WireCode(code string) string {
	return strings.ReplaceAll(code, ".", "")
}

// StoreCode 行情服务器的代码转存储的代码,sh600000转sh.600000
func StoreCode(code string) string {
	if len(code) == 8 {
		return code[:2] + "." + code[2:]
	}
	return code
}

func toStocks(ls []*protocol.Code) []*stock.Stock {
	result := make([]*stock.Stock, 0, len(ls))
	for _, v := range ls {
		result = append(result, &stock.Stock{
			Code:   StoreCode(v.FullCode()),
			Name:   v.Name,
			Market: v.Exchange.String(),
		})
	}
	return result
}

// toCandles 筛选日期在[start,end]的K线,时间解析失败的记录日志并丢弃
func toCandles(code string, ls []*protocol.Kline, start, end time.Time) []stock.Candle {
	result := []stock.Candle(nil)
	for _, v := range ls {
		if v.TimeErr != nil {
			logger.Warnf("股票[%s]K线时间解析失败,已丢弃: %v", code, v.TimeErr)
			continue
		}
		if d := stock.Date(v.Time); d.Before(start) || d.After(end) {
			continue
		}
		result = append(result, stock.Candle{
			Time:   v.Time,
			Open:   v.Open.Float64(),
			High:   v.High.Float64(),
			Low:    v.Low.Float64(),
			Close:  v.Close.Float64(),
			Volume: float64(v.Volume * 100), //手转股
			Amount: v.Amount.Float64(),
		})
	}
	return result
}

func toFactors(fs []*extend.THSFactor) []stock.Factor {
	result := make([]stock.Factor, 0, len(fs))
	for _, v := range fs {
		result = append(result, stock.Factor{
			Time:             v.Date,
			ForeAdjustFactor: v.QFactor,
			BackAdjustFactor: v.HFactor,
			AdjustFactor:     v.HFactor,
		})
	}
	return result
}

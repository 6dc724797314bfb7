package processor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/injoyai/awatcher/stock"
	"github.com/injoyai/awatcher/store/sqlstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	Code       string
	Start, End time.Time
}

// fakeSource 按代码返回固定数据,并记录调用
type fakeSource struct {
	stocks  []*stock.Stock
	candles map[string][]stock.Candle
	factors map[string][]stock.Factor
	errs    map[string]error
	calls   []call
}

func (this *fakeSource) StockList(ctx context.Context) ([]*stock.Stock, error) {
	return this.stocks, nil
}

func (this *fakeSource) candle(code string, start, end time.Time) ([]stock.Candle, error) {
	this.calls = append(this.calls, call{Code: code, Start: start, End: end})
	if err := this.errs[code]; err != nil {
		return nil, err
	}
	return this.candles[code], nil
}

func (this *fakeSource) DailyKData(ctx context.Context, code string, start, end time.Time) ([]stock.Candle, error) {
	return this.candle(code, start, end)
}

func (this *fakeSource) HourlyKData(ctx context.Context, code string, start, end time.Time) ([]stock.Candle, error) {
	return this.candle(code, start, end)
}

func (this *fakeSource) AdjustFactors(ctx context.Context, code string, start, end time.Time) ([]stock.Factor, error) {
	this.calls = append(this.calls, call{Code: code, Start: start, End: end})
	if err := this.errs[code]; err != nil {
		return nil, err
	}
	return this.factors[code], nil
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func newTest(t *testing.T, src *fakeSource, codes ...string) (*Processor, *sqlstore.Store) {
	repo, err := sqlstore.Dial(sqlstore.DriverSqlite, filepath.Join(t.TempDir(), "stock.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	for _, code := range codes {
		_, err = repo.Save(context.Background(), &stock.Stock{Code: code})
		require.NoError(t, err)
	}
	p := New(repo, src)
	//北京时间2024-01-10
	p.now = func() time.Time { return time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC) }
	return p, repo
}

func TestProcessor_StockList(t *testing.T) {
	src := &fakeSource{stocks: []*stock.Stock{
		{Code: "sh.600000", Name: "浦发银行", Market: "sh"},
		{Code: "sz.000001", Name: "平安银行", Market: "sz"},
	}}
	p, repo := newTest(t, src)
	ctx := context.Background()

	n, err := p.StockList(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, repo.MergeDayLine(ctx, "sh.600000", stock.Candle{Time: day(1), Close: 10}))
	n, err = p.StockList(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	s, err := repo.Find(ctx, "sh.600000")
	require.NoError(t, err)
	assert.Len(t, s.DayLine, 1)
}

// 已有一条日线,不指定日期,从最后一条开始,相同时间替换,新的追加
func TestProcessor_DayLineResume(t *testing.T) {
	src := &fakeSource{candles: map[string][]stock.Candle{
		"X001": {{Time: day(1), Close: 10.5}, {Time: day(2), Close: 11.0}},
	}}
	p, repo := newTest(t, src, "X001")
	ctx := context.Background()
	require.NoError(t, repo.MergeDayLine(ctx, "X001", stock.Candle{Time: day(1), Close: 10.0}))

	n, err := p.DayLine(ctx, "X001", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, src.calls, 1)
	assert.Equal(t, day(1), src.calls[0].Start)
	assert.Equal(t, day(10), src.calls[0].End)

	s, err := repo.Find(ctx, "X001")
	require.NoError(t, err)
	require.Len(t, s.DayLine, 2)
	assert.True(t, s.DayLine[0].Time.Equal(day(1)))
	assert.Equal(t, 10.5, s.DayLine[0].Close)
	assert.True(t, s.DayLine[1].Time.Equal(day(2)))
	assert.Equal(t, 11.0, s.DayLine[1].Close)
}

// 空序列,不指定开始日期,整体替换
func TestProcessor_DayLineFull(t *testing.T) {
	ls := make([]stock.Candle, 500)
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range ls {
		ls[i] = stock.Candle{Time: start.AddDate(0, 0, i), Close: float64(i)}
	}
	src := &fakeSource{candles: map[string][]stock.Candle{"X002": ls}}
	p, repo := newTest(t, src, "X002")
	ctx := context.Background()

	n, err := p.DayLine(ctx, "X002", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 500, n)
	require.Len(t, src.calls, 1)
	assert.True(t, src.calls[0].Start.IsZero())

	s, err := repo.Find(ctx, "X002")
	require.NoError(t, err)
	require.Len(t, s.DayLine, 500)
	for i := range ls {
		assert.True(t, ls[i].Time.Equal(s.DayLine[i].Time))
	}
}

func TestProcessor_UpToDate(t *testing.T) {
	src := &fakeSource{}
	p, repo := newTest(t, src, "X003")
	ctx := context.Background()
	require.NoError(t, repo.MergeHourLine(ctx, "X003", stock.Candle{Time: day(5).Add(15 * time.Hour)}))

	n, err := p.HourLine(ctx, "X003", time.Time{}, day(4))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, src.calls)

	//开始日期等于结束日期需要拉取
	n, err = p.HourLine(ctx, "X003", time.Time{}, day(5))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, src.calls, 1)
}

func TestProcessor_NotFound(t *testing.T) {
	src := &fakeSource{}
	p, _ := newTest(t, src)
	n, err := p.AdjustFactor(context.Background(), "X404", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, src.calls)
}

// 指定开始日期逐条合并,不影响之前的数据
func TestProcessor_AdjustFactorMerge(t *testing.T) {
	src := &fakeSource{factors: map[string][]stock.Factor{
		"X004": {{Time: day(3), ForeAdjustFactor: 0.5, BackAdjustFactor: 2, AdjustFactor: 2}},
	}}
	p, repo := newTest(t, src, "X004")
	ctx := context.Background()
	require.NoError(t, repo.MergeAdjustFactor(ctx, "X004", stock.Factor{Time: day(1), ForeAdjustFactor: 1, BackAdjustFactor: 1, AdjustFactor: 1}))

	n, err := p.AdjustFactor(ctx, "X004", day(2), day(3))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, call{Code: "X004", Start: day(2), End: day(3)}, src.calls[0])

	s, err := repo.Find(ctx, "X004")
	require.NoError(t, err)
	require.Len(t, s.AdjustFactor, 2)
	assert.Equal(t, 2.0, s.AdjustFactor[1].AdjustFactor)
}

func TestProcessor_All(t *testing.T) {
	errProvider := errors.New("provider error")
	newSrc := func() *fakeSource {
		return &fakeSource{
			candles: map[string][]stock.Candle{
				"A": {{Time: day(1)}},
				"C": {{Time: day(1)}, {Time: day(2)}},
			},
			errs: map[string]error{"B": errProvider},
		}
	}

	//默认第一个错误中止
	src := newSrc()
	p, _ := newTest(t, src, "A", "B", "C")
	n, err := p.DayLineAll(context.Background(), time.Time{}, time.Time{})
	assert.ErrorIs(t, err, errProvider)
	assert.Equal(t, 1, n)
	assert.Len(t, src.calls, 2)

	//继续处理
	src = newSrc()
	p, repo := newTest(t, src, "A", "B", "C")
	p.ContinueOnError = true
	n, err = p.DayLineAll(context.Background(), time.Time{}, time.Time{})
	assert.ErrorIs(t, err, errProvider)
	assert.Equal(t, 3, n)
	assert.Len(t, src.calls, 3)

	s, err := repo.Find(context.Background(), "C")
	require.NoError(t, err)
	assert.Len(t, s.DayLine, 2)
}

// failRepo 第after次合并日线后返回错误
type failRepo struct {
	stock.Repository
	after int
	calls int
}

func (this *failRepo) MergeDayLine(ctx context.Context, code string, c stock.Candle) error {
	this.calls++
	if this.calls > this.after {
		return errors.New("write failed")
	}
	return this.Repository.MergeDayLine(ctx, code, c)
}

// 合并中途失败,返回已保存的条数
func TestProcessor_MergePartial(t *testing.T) {
	src := &fakeSource{candles: map[string][]stock.Candle{
		"X003": {{Time: day(2), Close: 1}, {Time: day(3), Close: 2}, {Time: day(4), Close: 3}},
	}}
	_, repo := newTest(t, src, "X003")
	ctx := context.Background()
	require.NoError(t, repo.MergeDayLine(ctx, "X003", stock.Candle{Time: day(1), Close: 1}))

	p := New(&failRepo{Repository: repo, after: 2}, src)
	p.now = func() time.Time { return time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC) }

	n, err := p.DayLine(ctx, "X003", day(2), time.Time{})
	assert.Error(t, err)
	assert.Equal(t, 2, n)

	s, err := repo.Find(ctx, "X003")
	require.NoError(t, err)
	assert.Len(t, s.DayLine, 3)
}

package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/injoyai/awatcher/stock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	s, err := Dial(DriverSqlite, filepath.Join(t.TempDir(), "database", "stock.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestOpen(t *testing.T) {
	_, err := Open("postgres", "x")
	assert.Error(t, err)
}

func TestStore_Save(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Save(ctx, &stock.Stock{Code: "sh.600000", Name: "浦发银行", Market: "sh"})
	require.NoError(t, err)
	require.NoError(t, s.MergeDayLine(ctx, "sh.600000", stock.Candle{Time: day(1), Close: 10}))
	require.NoError(t, s.MergeHourLine(ctx, "sh.600000", stock.Candle{Time: day(1).Add(10*time.Hour + 30*time.Minute), Close: 10}))
	require.NoError(t, s.MergeAdjustFactor(ctx, "sh.600000", stock.Factor{Time: day(1), ForeAdjustFactor: 0.5, BackAdjustFactor: 2, AdjustFactor: 2}))

	//更新基本信息,序列不变
	id2, err := s.Save(ctx, &stock.Stock{Code: "sh.600000", Name: "浦发", Market: "sh", IsStar: true, FocusedDays: 5})
	require.NoError(t, err)
	assert.Equal(t, id, id2)

	got, err := s.Find(ctx, "sh.600000")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "浦发", got.Name)
	assert.True(t, got.IsStar)
	assert.Equal(t, 5, got.FocusedDays)
	assert.Len(t, got.DayLine, 1)
	assert.Len(t, got.HourLine, 1)
	require.Len(t, got.AdjustFactor, 1)
	assert.Equal(t, 2.0, got.AdjustFactor[0].BackAdjustFactor)

	//新股票带空序列
	_, err = s.Save(ctx, &stock.Stock{Code: "sz.000001", Name: "平安银行", Market: "sz"})
	require.NoError(t, err)
	got, err = s.Find(ctx, "sz.000001")
	require.NoError(t, err)
	assert.NotNil(t, got.DayLine)
	assert.Empty(t, got.DayLine)

	codes, err := s.Codes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sh.600000", "sz.000001"}, codes)
}

func TestStore_Merge(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.Save(ctx, &stock.Stock{Code: "sz.000001"})
	require.NoError(t, err)

	//乱序合并,重复合并
	ls := []stock.Candle{
		{Time: day(3), Close: 3},
		{Time: day(1), Close: 1},
		{Time: day(3), Close: 3},
		{Time: day(2), Close: 2},
		{Time: day(1), Close: 1.5},
	}
	for _, v := range ls {
		require.NoError(t, s.MergeDayLine(ctx, "sz.000001", v))
	}

	got, err := s.Find(ctx, "sz.000001")
	require.NoError(t, err)
	require.Len(t, got.DayLine, 3)
	//顺序是首次写入的顺序,替换不改变位置
	assert.True(t, got.DayLine[0].Time.Equal(day(3)))
	assert.True(t, got.DayLine[1].Time.Equal(day(1)))
	assert.Equal(t, 1.5, got.DayLine[1].Close)
	assert.True(t, got.DayLine[2].Time.Equal(day(2)))

	last, err := s.FindLast(ctx, "sz.000001", stock.DayLine)
	require.NoError(t, err)
	require.Len(t, last.DayLine, 1)
	assert.True(t, last.DayLine[0].Time.Equal(day(2)))
	assert.Empty(t, last.HourLine)

	assert.ErrorIs(t, s.MergeDayLine(ctx, "sh.900000", ls[0]), stock.ErrNotFound)
}

func TestStore_Replace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.Save(ctx, &stock.Stock{Code: "sz.000001"})
	require.NoError(t, err)

	_, err = s.LatestTradingDate(ctx)
	assert.ErrorIs(t, err, stock.ErrNotFound)

	require.NoError(t, s.MergeDayLine(ctx, "sz.000001", stock.Candle{Time: day(9), Close: 9}))

	ls := make([]stock.Candle, 0, 600)
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 600; i++ {
		ls = append(ls, stock.Candle{Time: start.AddDate(0, 0, i), Close: float64(i)})
	}
	require.NoError(t, s.ReplaceDayLine(ctx, "sz.000001", ls))

	got, err := s.Find(ctx, "sz.000001")
	require.NoError(t, err)
	require.Len(t, got.DayLine, 600)
	for i := range ls {
		assert.True(t, ls[i].Time.Equal(got.DayLine[i].Time))
		assert.Equal(t, ls[i].Close, got.DayLine[i].Close)
	}

	latest, err := s.LatestTradingDate(ctx)
	require.NoError(t, err)
	assert.True(t, latest.Equal(ls[599].Time))

	//替换后合并接着追加
	require.NoError(t, s.MergeDayLine(ctx, "sz.000001", stock.Candle{Time: start.AddDate(0, 0, 600)}))
	last, err := s.FindLast(ctx, "sz.000001", stock.DayLine)
	require.NoError(t, err)
	assert.True(t, last.DayLine[0].Time.Equal(start.AddDate(0, 0, 600)))

	require.NoError(t, s.ReplaceAdjustFactor(ctx, "sz.000001", nil))
	assert.ErrorIs(t, s.ReplaceHourLine(ctx, "sh.900000", ls), stock.ErrNotFound)

	exist, err := s.Exists(ctx, "sz.000001")
	require.NoError(t, err)
	assert.True(t, exist)
	exist, err = s.Exists(ctx, "sh.900000")
	require.NoError(t, err)
	assert.False(t, exist)
}

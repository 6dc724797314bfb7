package market

import (
	"errors"
	"testing"
	"time"

	"github.com/injoyai/awatcher/config"
	"github.com/injoyai/awatcher/extend"
	"github.com/injoyai/awatcher/protocol"
	"github.com/injoyai/awatcher/stock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestCode(t *testing.T) {
	assert.Equal(t, "sh600000", WireCode("sh.600000"))
	assert.Equal(t, "sz000001", WireCode("sz000001"))
	assert.Equal(t, "sh.600000", StoreCode("sh600000"))
	assert.Equal(t, "600000", StoreCode("600000"))
}

func TestToStocks(t *testing.T) {
	ls := toStocks([]*protocol.Code{
		{Exchange: protocol.ExchangeSH, Code: "600000", Name: "浦发银行"},
		{Exchange: protocol.ExchangeSZ, Code: "000001", Name: "平安银行"},
	})
	require.Len(t, ls, 2)
	assert.Equal(t, &stock.Stock{Code: "sh.600000", Name: "浦发银行", Market: "sh"}, ls[0])
	assert.Equal(t, "sz.000001", ls[1].Code)
	assert.Equal(t, "sz", ls[1].Market)
	assert.False(t, ls[1].IsFocused)
}

func TestToCandles(t *testing.T) {
	h := func(d, hour, minute int) time.Time {
		return time.Date(2024, 1, d, hour, minute, 0, 0, time.UTC)
	}
	ls := []*protocol.Kline{
		{Time: h(1, 15, 0), Close: 9000},
		{Time: h(2, 10, 30), Open: 10000, High: 10500, Low: 9900, Close: 10200, Volume: 12, Amount: 1234500},
		{TimeErr: errors.New("invalid")},
		{Time: h(3, 15, 0), Close: 10300},
		{Time: h(4, 10, 30), Close: 10400},
	}
	cs := toCandles("sh.600000", ls, date(2024, 1, 2), date(2024, 1, 3))
	require.Len(t, cs, 2)
	assert.Equal(t, stock.Candle{
		Time:   h(2, 10, 30),
		Open:   10,
		High:   10.5,
		Low:    9.9,
		Close:  10.2,
		Volume: 1200,
		Amount: 1234.5,
	}, cs[0])
	assert.Equal(t, h(3, 15, 0), cs[1].Time)
}

func TestToFactors(t *testing.T) {
	fs := toFactors([]*extend.THSFactor{{Date: date(2024, 1, 2), QFactor: 0.9, HFactor: 2}})
	assert.Equal(t, []stock.Factor{{Time: date(2024, 1, 2), ForeAdjustFactor: 0.9, BackAdjustFactor: 2, AdjustFactor: 2}}, fs)
}

func TestClient_Window(t *testing.T) {
	c := New()
	//北京时间1月6日凌晨
	c.now = func() time.Time { return time.Date(2024, 1, 5, 17, 0, 0, 0, time.UTC) }

	start, end := c.window(time.Time{}, time.Time{})
	assert.Equal(t, date(1990, 1, 1), start)
	assert.Equal(t, date(2024, 1, 6), end)

	start, end = c.window(time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), date(2024, 1, 3))
	assert.Equal(t, date(2024, 1, 2), start)
	assert.Equal(t, date(2024, 1, 3), end)
}

func TestNewWithConfig(t *testing.T) {
	c, err := NewWithConfig(config.Provider{TimeoutSeconds: 3}, config.DataUpdate{DefaultStartDate: "2000-01-01", AdjustFactorDays: 30})
	require.NoError(t, err)
	assert.Equal(t, date(2000, 1, 1), c.defaultStart)
	assert.Equal(t, 30, c.factorDays)
	assert.Equal(t, 3*time.Second, c.timeout)

	_, err = NewWithConfig(config.Provider{}, config.DataUpdate{DefaultStartDate: "2000/01/01"})
	assert.Error(t, err)

	//未连接时退出无影响
	c.Logout()
	c.Logout()
}

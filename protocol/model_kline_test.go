package protocol

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 平安银行2024-10-16起的10条日K线
const dayKlines = "0a0078da340198b8018404bc055ee8b3e949ad2b094f79da34010af801a002cc0260dec949859ded4e7ada34016882028e04e603b8f91e4a111f394f7dda3401e401c20200f604f84d2b4ad4d0444f7eda3401721eaa0268d87bc549ee80e34e7fda34011e288601c601d08db849230ed54e80da3401727c32da013023584999a0784e81da3401147c0ad001d0fa86498d989a4e84da34015e6800d60278c28e491ca6a14e85da340154d001b801da01403e924989d6a54e"

func TestKline_Frame(t *testing.T) {
	f, err := MKline.Frame(TypeKlineDay, "sz000001", 0, 10)
	require.NoError(t, err)
	f.MsgID = 0
	assert.Equal(t, "0c00000000011c001c002d050000303030303031090001000000"+"0a00"+"00000000000000000000", f.Bytes().HEX())

	_, err = MKline.Frame(TypeKlineDay, "sz000001", 0, KlineMaxCount+1)
	assert.Error(t, err)
}

func TestKline_Decode(t *testing.T) {
	bs, err := hex.DecodeString(dayKlines)
	require.NoError(t, err)

	resp, err := MKline.Decode(bs, KlineCache{Type: TypeKlineDay, Kind: KindStock})
	require.NoError(t, err)
	require.Len(t, resp.List, 10)

	first := resp.List[0]
	assert.NoError(t, first.TimeErr)
	assert.Equal(t, time.Date(2024, 10, 16, 0, 0, 0, 0, time.UTC), first.Time)
	assert.Equal(t, Price(11800), first.Open)
	assert.Equal(t, Price(12060), first.Close)
	assert.Equal(t, Price(12180), first.High)
	assert.Equal(t, Price(11770), first.Low)
	assert.Greater(t, first.Volume, int64(0))
	assert.Greater(t, first.Amount, Price(0))

	last := resp.List[9]
	assert.Equal(t, time.Date(2024, 10, 29, 0, 0, 0, 0, time.UTC), last.Time)
	assert.Equal(t, Price(11620), last.Open)
	assert.Equal(t, Price(11540), last.Close)
	assert.Equal(t, resp.List[8].Close, last.Last)
}

func TestKline_DecodeShort(t *testing.T) {
	bs, err := hex.DecodeString(dayKlines)
	require.NoError(t, err)
	_, err = MKline.Decode(bs[:40], KlineCache{Type: TypeKlineDay})
	assert.Error(t, err)
}

func TestFixKlineTime(t *testing.T) {
	now := time.Date(2024, 1, 2, 14, 0, 0, 0, Location)
	ks := []*Kline{
		{Time: time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC)},
		{Time: time.Date(2024, 1, 2, 13, 0, 0, 0, time.UTC)},
		{Time: time.Date(2024, 1, 2, 14, 0, 0, 0, time.UTC)},
	}
	ks = FixKlineTime(ks, now)
	assert.Equal(t, time.Date(2024, 1, 2, 11, 30, 0, 0, time.UTC), ks[1].Time)

	//非当天的数据不处理
	ks[1].Time = time.Date(2024, 1, 2, 13, 0, 0, 0, time.UTC)
	ks = FixKlineTime(ks, time.Date(2024, 1, 3, 14, 0, 0, 0, Location))
	assert.Equal(t, time.Date(2024, 1, 2, 13, 0, 0, 0, time.UTC), ks[1].Time)
}

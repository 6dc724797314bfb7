package protocol

import (
	"errors"
	"fmt"
	"time"

	"github.com/injoyai/conv"
)

// KlineMaxCount 单次请求K线的最大数量
const KlineMaxCount = 800

type KlineResp struct {
	Count uint16
	List  []*Kline
}

type Kline struct {
	Last      Price     //昨日收盘价,列表上一条的收盘价,第一条为0
	Open      Price     //开盘价
	High      Price     //最高价
	Low       Price     //最低价
	Close     Price     //收盘价,如果是当天,则是最新价
	Volume    int64     //成交量,单位手
	Amount    Price     //成交额
	Time      time.Time //时间,解析失败时为零值
	TimeErr   error     //时间解析错误
	UpCount   int       //上涨数量,指数有效
	DownCount int       //下跌数量,指数有效
}

func (this *Kline) String() string {
	return fmt.Sprintf("%s 开盘价：%.3f 最高价：%.3f 最低价：%.3f 收盘价：%.3f 成交量：%d 成交额：%.2f",
		this.Time.Format("2006-01-02 15:04:05"),
		this.Open.Float64(), this.High.Float64(), this.Low.Float64(), this.Close.Float64(),
		this.Volume, this.Amount.Float64(),
	)
}

// KlineCache 响应里不带K线类型,请求时缓存,解析时使用
type KlineCache struct {
	Type KlineType //1分钟,60分钟,日线等
	Kind string    //指数,个股
}

type kline struct{}

/*
Frame
Data:
Exchange: 00
Unknown: 00
Code: 303030303031
Type: 0900
Unknown: 0100
Start: 0000
Count: 0a00
Append: 00000000000000000000
*/
func (kline) Frame(Type KlineType, code string, start, count uint16) (*Frame, error) {
	if count > KlineMaxCount {
		return nil, fmt.Errorf("单次数量不能超过%d", KlineMaxCount)
	}

	exchange, number, err := DecodeCode(code)
	if err != nil {
		return nil, err
	}

	data := []byte{exchange.Uint8(), 0x0}
	data = append(data, []byte(number)...)
	data = append(data, Type.Uint8(), 0x0)
	data = append(data, 0x01, 0x0)
	data = append(data, Bytes(start)...)
	data = append(data, Bytes(count)...)
	data = append(data, make([]byte, 10)...)

	return &Frame{
		Control: Control01,
		Type:    TypeKline,
		Data:    data,
	}, nil
}

func (kline) Decode(bs []byte, c KlineCache) (*KlineResp, error) {

	if len(bs) < 2 {
		return nil, errors.New("数据长度不足")
	}
	resp := &KlineResp{
		Count: Uint16(bs[:2]),
	}
	bs = bs[2:]

	var last Price //上条数据的收盘价,价格都是相对上条的差值
	for i := uint16(0); i < resp.Count; i++ {
		if len(bs) < 4 {
			return nil, errors.New("数据长度不足")
		}
		k := &Kline{}
		k.Time, k.TimeErr = GetTime([4]byte(bs[:4]), c.Type)

		var open, _close, high, low Price
		bs, open = GetPrice(bs[4:])
		bs, _close = GetPrice(bs)
		bs, high = GetPrice(bs)
		bs, low = GetPrice(bs)

		k.Last = last
		k.Open = last + open
		k.Close = last + open + _close
		k.High = last + open + high
		k.Low = last + open + low
		last = k.Close

		if len(bs) < 8 {
			return nil, errors.New("数据长度不足")
		}

		//分钟级别和Day2的成交量需要除以100
		k.Volume = int64(getVolume(Uint32(bs[:4])))
		if c.Type.Minute() || c.Type == TypeKlineDay2 {
			k.Volume /= 100
		}
		k.Amount = Price(getVolume(Uint32(bs[4:8])) * 1000) //元转厘
		bs = bs[8:]

		if c.Kind == KindIndex {
			//指数多4字节的涨跌家数,成交量*100
			if len(bs) < 4 {
				return nil, errors.New("数据长度不足")
			}
			k.Volume *= 100
			k.UpCount = conv.Int([]byte{bs[1], bs[0]})
			k.DownCount = conv.Int([]byte{bs[3], bs[2]})
			bs = bs[4:]
		}

		resp.List = append(resp.List, k)
	}
	resp.List = FixKlineTime(resp.List, time.Now())
	return resp, nil
}

// FixKlineTime 修复盘内下午(13~15点)拉取数据时,11:30的K线时间变成13:00
func FixKlineTime(ks []*Kline, now time.Time) []*Kline {
	if len(ks) == 0 {
		return ks
	}
	now = now.In(Location)
	node1 := time.Date(now.Year(), now.Month(), now.Day(), 13, 0, 0, 0, time.UTC)
	node2 := time.Date(now.Year(), now.Month(), now.Day(), 15, 0, 0, 0, time.UTC)
	if lastTime := ks[len(ks)-1].Time; lastTime.Before(node1) || lastTime.After(node2) {
		return ks
	}
	ls := ks
	if len(ls) >= 120 {
		ls = ls[len(ls)-120:]
	}
	for _, v := range ls {
		if v.Time.Equal(node1) {
			v.Time = time.Date(now.Year(), now.Month(), now.Day(), 11, 30, 0, 0, time.UTC)
		}
	}
	return ks
}

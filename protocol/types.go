package protocol

import "time"

type Control uint8

func (this Control) Uint8() uint8 {
	return uint8(this)
}

const (
	Control01 Control = 0x01 //请求固定是01
)

const (
	TypeConnect = 0x000D //建立连接
	TypeHeart   = 0x0004 //心跳
	TypeCode    = 0x0450 //获取证券代码
	TypeKline   = 0x052D //K线图
)

type Exchange uint8

func (this Exchange) Uint8() uint8 { return uint8(this) }

func (this Exchange) String() string {
	switch this {
	case ExchangeSZ:
		return "sz"
	case ExchangeSH:
		return "sh"
	default:
		return "unknown"
	}
}

func (this Exchange) Name() string {
	switch this {
	case ExchangeSH:
		return "上海"
	case ExchangeSZ:
		return "深圳"
	default:
		return "未知"
	}
}

const (
	ExchangeSZ Exchange = iota //深圳交易所
	ExchangeSH                 //上海交易所
)

// KlineType K线周期
type KlineType uint8

func (this KlineType) Uint8() uint8 { return uint8(this) }

// Minute 是否是分钟级别的周期,分钟级别的时间带时分
func (this KlineType) Minute() bool {
	switch this {
	case TypeKlineMinute, TypeKlineMinute2, TypeKline5Minute, TypeKline15Minute, TypeKline30Minute, TypeKline60Minute:
		return true
	}
	return false
}

const (
	TypeKline5Minute  KlineType = 0  // 5分钟K 线
	TypeKline15Minute KlineType = 1  // 15分钟K 线
	TypeKline30Minute KlineType = 2  // 30分钟K 线
	TypeKline60Minute KlineType = 3  // 60分钟K 线
	TypeKlineDay2     KlineType = 4  // 日K 线,成交量要除以100
	TypeKlineWeek     KlineType = 5  // 周K 线
	TypeKlineMonth    KlineType = 6  // 月K 线
	TypeKlineMinute   KlineType = 7  // 1分钟
	TypeKlineMinute2  KlineType = 8  // 1分钟K 线
	TypeKlineDay      KlineType = 9  // 日K 线
	TypeKlineQuarter  KlineType = 10 // 季K 线
	TypeKlineYear     KlineType = 11 // 年K 线
)

const (
	KindIndex = "index"
	KindStock = "stock"
)

var (
	// Location 交易所所在时区,K线时间都按这个时区的墙上时间解析
	Location = time.FixedZone("CST", 8*60*60)

	// ExchangeEstablish 交易所成立时间
	ExchangeEstablish = time.Date(1990, 12, 19, 0, 0, 0, 0, time.UTC)
)

package protocol

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/injoyai/conv"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// Bytes 任意类型转小端字节
func Bytes(n any) []byte {
	return Reverse(conv.Bytes(n))
}

// Reverse 字节倒序
func Reverse(bs []byte) []byte {
	x := make([]byte, len(bs))
	for i, v := range bs {
		x[len(bs)-i-1] = v
	}
	return x
}

// Uint32 字节通过小端方式转为uint32
func Uint32(bs []byte) uint32 {
	return conv.Uint32(Reverse(bs))
}

// Uint16 字节通过小端方式转为uint16
func Uint16(bs []byte) uint16 {
	return conv.Uint16(Reverse(bs))
}

// DecodeGBK 服务器返回的中文是GBK编码,转成utf8并去掉末尾的0
func DecodeGBK(text []byte) string {
	r := transform.NewReader(bytes.NewReader(text), simplifiedchinese.GBK.NewDecoder())
	content, _ := io.ReadAll(r)
	return string(bytes.ReplaceAll(content, []byte{0x00}, []byte{}))
}

// DecodeCode 解析代码,支持sz000001,sz.000001,000001
func DecodeCode(code string) (Exchange, string, error) {
	code = AddPrefix(strings.ReplaceAll(code, ".", ""))
	if len(code) != 8 {
		return 0, "", fmt.Errorf("股票代码长度错误,例如:sz000001")
	}
	switch strings.ToLower(code[:2]) {
	case ExchangeSH.String():
		return ExchangeSH, code[2:], nil
	case ExchangeSZ.String():
		return ExchangeSZ, code[2:], nil
	default:
		return 0, "", fmt.Errorf("股票代码错误,例如:sz000001")
	}
}

// GetTime 解析K线时间,返回交易所墙上时间(UTC表示)
// 分钟级别: 前2字节是日期(年份从2004开始),后2字节是当天的分钟数
// 其他: 4字节是yyyymmdd
func GetTime(bs [4]byte, Type KlineType) (time.Time, error) {
	var year, month, day, hour, minute int
	if Type.Minute() {
		yearMonthDay := Uint16(bs[:2])
		hourMinute := Uint16(bs[2:4])
		year = int(yearMonthDay>>11 + 2004)
		month = int(yearMonthDay % 2048 / 100)
		day = int((yearMonthDay % 2048) % 100)
		hour = int(hourMinute / 60)
		minute = int(hourMinute % 60)
	} else {
		yearMonthDay := Uint32(bs[:4])
		year = int(yearMonthDay / 10000)
		month = int((yearMonthDay % 10000) / 100)
		day = int(yearMonthDay % 100)
	}
	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	//time.Date会把越界的值顺延,顺延过的说明数据有误
	if month < 1 || month > 12 || hour > 23 || t.Day() != day {
		return time.Time{}, fmt.Errorf("时间解析失败: %x", bs)
	}
	return t, nil
}

func getVolume(val uint32) (volume float64) {
	ivol := int32(val)
	logpoint := ivol >> (8 * 3)
	hleax := (ivol >> (8 * 2)) & 0xff // [2]
	lheax := (ivol >> 8) & 0xff       //[1]
	lleax := ivol & 0xff              //[0]

	dwEcx := logpoint*2 - 0x7f
	dwEdx := logpoint*2 - 0x86
	dwEsi := logpoint*2 - 0x8e
	dwEax := logpoint*2 - 0x96
	tmpEax := dwEcx
	if dwEcx < 0 {
		tmpEax = -dwEcx
	}

	xmm6 := math.Pow(2.0, float64(tmpEax))
	if dwEcx < 0 {
		xmm6 = 1.0 / xmm6
	}

	xmm4 := 0.0
	if hleax > 0x80 {
		xmm4 = math.Pow(2.0, float64(dwEdx))*128.0 + float64(hleax&0x7f)*math.Pow(2.0, float64(dwEdx+1))
	} else if dwEdx >= 0 {
		xmm4 = math.Pow(2.0, float64(dwEdx)) * float64(hleax)
	} else {
		xmm4 = (1 / math.Pow(2.0, float64(dwEdx))) * float64(hleax)
	}

	xmm3 := math.Pow(2.0, float64(dwEsi)) * float64(lheax)
	xmm1 := math.Pow(2.0, float64(dwEax)) * float64(lleax)
	if (hleax & 0x80) > 0 {
		xmm3 *= 2.0
		xmm1 *= 2.0
	}
	return xmm6 + xmm4 + xmm3 + xmm1
}

// IsStock 是否是沪深A股,示例sz000001
func IsStock(code string) bool {
	return IsSZStock(code) || IsSHStock(code)
}

func IsSZStock(code string) bool {
	return len(code) == 8 && strings.ToLower(code[0:2]) == ExchangeSZ.String() && (code[2:3] == "0" || code[2:4] == "30")
}

func IsSHStock(code string) bool {
	return len(code) == 8 && strings.ToLower(code[0:2]) == ExchangeSH.String() && code[2:3] == "6"
}

// AddPrefix 添加股票代码前缀,例如000001,会增加前缀sz000001(平安银行),而不是sh000001(上证指数)
func AddPrefix(code string) string {
	if len(code) == 6 {
		switch {
		case code[:1] == "6":
			code = ExchangeSH.String() + code
		case code[:1] == "0", code[:2] == "30":
			code = ExchangeSZ.String() + code
		}
	}
	return code
}

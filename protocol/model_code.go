package protocol

import (
	"errors"
	"fmt"
)

// codeSize 每条证券信息占用的字节数
const codeSize = 29

type CodeResp struct {
	Count uint16
	List  []*Code
}

type Code struct {
	Exchange Exchange //交易所,响应里没有,由请求补上
	Code     string   //证券代码,6位
	Name     string   //证券名称
	Multiple uint16   //倍数,基本是0x64=100
	Decimal  int8     //小数点,基本是2
}

// FullCode 带交易所前缀的代码,例sz000001
func (this *Code) FullCode() string {
	return this.Exchange.String() + this.Code
}

func (this *Code) String() string {
	return fmt.Sprintf("%s(%s)", this.FullCode(), this.Name)
}

type code struct{}

// Frame 从start开始获取证券列表,服务器一次固定返回1000条
func (code) Frame(exchange Exchange, start uint16) *Frame {
	return &Frame{
		Control: Control01,
		Type:    TypeCode,
		Data:    []byte{exchange.Uint8(), 0x0, uint8(start), uint8(start >> 8)},
	}
}

func (code) Decode(bs []byte, exchange Exchange) (*CodeResp, error) {
	if len(bs) < 2 {
		return nil, errors.New("数据长度不足")
	}

	resp := &CodeResp{
		Count: Uint16(bs[:2]),
	}
	bs = bs[2:]

	if len(bs) < int(resp.Count)*codeSize {
		return nil, fmt.Errorf("数据长度不足,预期%d,得到%d", int(resp.Count)*codeSize, len(bs))
	}

	for i := uint16(0); i < resp.Count; i++ {
		resp.List = append(resp.List, &Code{
			Exchange: exchange,
			Code:     string(bs[:6]),
			Multiple: Uint16(bs[6:8]),
			Name:     DecodeGBK(bs[8:16]),
			Decimal:  int8(bs[20]),
		})
		bs = bs[codeSize:]
	}

	return resp, nil
}

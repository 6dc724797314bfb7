package protocol

import (
	"errors"
)

var (
	MConnect = connect{}
	MHeart   = heart{}
	MCode    = code{}
	MKline   = kline{}
)

type ConnectResp struct {
	Info string
}

type connect struct{}

func (connect) Frame() *Frame {
	return &Frame{
		Control: Control01,
		Type:    TypeConnect,
		Data:    []byte{0x01},
	}
}

func (connect) Decode(bs []byte) (*ConnectResp, error) {
	if len(bs) < 68 {
		return nil, errors.New("数据长度不足")
	}
	//前68字节含义未知,后面是服务器信息
	return &ConnectResp{Info: DecodeGBK(bs[68:])}, nil
}

type heart struct{}

func (heart) Frame() *Frame {
	return &Frame{
		Control: Control01,
		Type:    TypeHeart,
	}
}

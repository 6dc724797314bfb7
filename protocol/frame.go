package protocol

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"

	"github.com/injoyai/base/types"
	"github.com/injoyai/conv"
)

const (
	// Prefix 请求帧头
	Prefix = 0x0C

	// PrefixResp 响应帧头
	PrefixResp = 0xB1CB7400
)

/*
Frame 请求帧
0c 01000000 01 0300 0300 0d00 01

Prefix: 0c
MsgID: 01000000
Control: 01
Length: 0300
Length: 0300
Type: 0d00
Data: 01
*/
type Frame struct {
	MsgID   uint32  //消息ID
	Control Control //控制码
	Type    uint16  //请求类型,如建立连接,K线等
	Data    []byte  //数据
}

func (this *Frame) Bytes() types.Bytes {
	length := uint16(len(this.Data) + 2)
	data := make([]byte, 12+len(this.Data))
	data[0] = Prefix
	copy(data[1:], Bytes(this.MsgID))
	data[5] = this.Control.Uint8()
	copy(data[6:], Bytes(length))
	copy(data[8:], Bytes(length))
	copy(data[10:], Bytes(this.Type))
	copy(data[12:], this.Data)
	return data
}

type Response struct {
	Prefix    uint32 //帧头
	Control   uint8  //响应的控制码,0c是错误,1c是成功
	MsgID     uint32 //消息ID
	Unknown   uint8  //未知
	Type      uint16 //响应类型,对应请求类型
	ZipLength uint16 //压缩后的长度
	Length    uint16 //未压缩长度
	Data      []byte //数据域
}

/*
Decode 解析响应帧,压缩长度和原始长度不一致时进行zlib解压
帧头		|控制码  	|消息ID    	|未知   	|数据类型   	|压缩长度  	|原始长度   	|数据域
b1cb7400 	|1c   	|00000000 	|00      	|0d00       |5100      	|bd00     	|789c...
*/
func Decode(bs []byte) (*Response, error) {
	if len(bs) < 16 {
		return nil, errors.New("数据长度不足")
	}
	resp := &Response{
		Prefix:    Uint32(bs[:4]),
		Control:   bs[4],
		MsgID:     Uint32(bs[5:9]),
		Unknown:   bs[9],
		Type:      Uint16(bs[10:12]),
		ZipLength: Uint16(bs[12:14]),
		Length:    Uint16(bs[14:16]),
		Data:      bs[16:],
	}

	if int(resp.ZipLength) != len(resp.Data) {
		return nil, fmt.Errorf("压缩数据长度不匹配,预期%d,得到%d", resp.ZipLength+16, len(bs))
	}

	if resp.ZipLength != resp.Length {
		r, err := zlib.NewReader(bytes.NewReader(resp.Data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		resp.Data, err = io.ReadAll(r)
		if err != nil {
			return nil, err
		}
	}

	if int(resp.Length) != len(resp.Data) {
		return nil, fmt.Errorf("解压数据长度不匹配,预期%d,得到%d", resp.Length, len(resp.Data))
	}

	return resp, nil
}

// ReadFrom 分包,读取一个完整的响应帧,r推荐传入*bufio.Reader
func ReadFrom(r io.Reader) ([]byte, error) {
	prefix := make([]byte, 4)
	for {
		if _, err := io.ReadFull(r, prefix); err != nil {
			return nil, err
		}
		if conv.Uint32(prefix) != PrefixResp {
			continue
		}

		head := make([]byte, 12)
		if _, err := io.ReadFull(r, head); err != nil {
			return nil, err
		}

		//压缩后的长度
		length := uint16(head[9])<<8 + uint16(head[8])
		body := make([]byte, length)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, err
		}

		result := make([]byte, 0, 16+len(body))
		result = append(result, prefix...)
		result = append(result, head...)
		return append(result, body...), nil
	}
}

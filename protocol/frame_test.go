package protocol

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 建立连接的响应,压缩81字节,解压后189字节
const connectResp = "b1cb74001c00000000000d005100bd00789c6378c1cecb252ace6066c5b4898987b9050ed1f90cc5b74c18a5bc18c1b43490fecff09c81819191f13fc3c9f3bb169f5e7dfefeb5ef57f7199a305009308208e5b32bb6bcbf70148712002d7f1e13"

func TestFrame_Bytes(t *testing.T) {
	f := MConnect.Frame()
	f.MsgID = 1
	assert.Equal(t, "0c0100000001030003000d0001", f.Bytes().HEX())
}

func TestDecode(t *testing.T) {
	bs, err := hex.DecodeString(connectResp)
	require.NoError(t, err)

	resp, err := Decode(bs)
	require.NoError(t, err)
	assert.Equal(t, uint16(TypeConnect), resp.Type)
	assert.Equal(t, uint16(81), resp.ZipLength)
	assert.Len(t, resp.Data, 189)

	_, err = MConnect.Decode(resp.Data)
	assert.NoError(t, err)
}

func TestDecode_Short(t *testing.T) {
	_, err := Decode([]byte{0xb1, 0xcb})
	assert.Error(t, err)

	bs, err := hex.DecodeString(connectResp)
	require.NoError(t, err)
	_, err = Decode(bs[:len(bs)-1])
	assert.Error(t, err)
}

func TestReadFrom(t *testing.T) {
	bs, err := hex.DecodeString(connectResp)
	require.NoError(t, err)

	//前面的脏数据会被跳过
	r := bytes.NewReader(append([]byte{0x00, 0x01, 0x02, 0x03}, bs...))
	result, err := ReadFrom(r)
	require.NoError(t, err)
	assert.Equal(t, bs, result)
}

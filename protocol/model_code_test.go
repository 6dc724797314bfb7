package protocol

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCode_Frame(t *testing.T) {
	f := MCode.Frame(ExchangeSH, 1000)
	assert.Equal(t, []byte{0x01, 0x00, 0xe8, 0x03}, f.Data)
	assert.Equal(t, uint16(TypeCode), f.Type)
}

func TestCode_Decode(t *testing.T) {
	record := func(code, name string) string {
		return hex.EncodeToString([]byte(code)) + "6400" + name + "00000000" + "02" + "0000000000000000"
	}
	s := "0200" + record("000001", "c6bdb0b2d2f8d0d0") + record("159915", "0000000000000000")
	bs, err := hex.DecodeString(s)
	require.NoError(t, err)

	resp, err := MCode.Decode(bs, ExchangeSZ)
	require.NoError(t, err)
	require.Len(t, resp.List, 2)
	assert.Equal(t, "sz000001", resp.List[0].FullCode())
	assert.Equal(t, "平安银行", resp.List[0].Name)
	assert.Equal(t, uint16(100), resp.List[0].Multiple)
	assert.Equal(t, int8(2), resp.List[0].Decimal)
	assert.Equal(t, "", resp.List[1].Name)

	_, err = MCode.Decode(bs[:30], ExchangeSZ)
	assert.Error(t, err)
}

package protocol

// Price 价格，单位厘
type Price int64

func (this Price) Float64() float64 {
	return float64(this) / 1000
}

func (this Price) Int64() int64 {
	return int64(this)
}

// GetPrice 截取一个变长编码的价格,返回剩余字节
func GetPrice(bs []byte) ([]byte, Price) {
	for i := range bs {
		if bs[i]&0x80 == 0 {
			return bs[i+1:], getPrice(bs[:i+1])
		}
	}
	return bs, 0
}

/*
getPrice
字节的第一位表示后续是否有数据（字节）
第一字节 的第二位表示正负 1负0正 有效数据为后6位
后续字节 的有效数据为后7位
*/
func getPrice(bs []byte) (data Price) {
	for i := range bs {
		if i == 0 {
			data += Price(int32(bs[0] & 0x3F))
		} else {
			data += Price(int32(bs[i]&0x7F) << uint8(6+(i-1)*7))
		}
		if bs[i]&0x80 == 0 {
			break
		}
	}
	if len(bs) > 0 && bs[0]&0x40 > 0 {
		data = -data
	}
	return
}

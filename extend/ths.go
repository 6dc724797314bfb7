package extend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/injoyai/awatcher/protocol"
	"github.com/tidwall/gjson"
)

const (
	UrlTHSDayKline       = "http://d.10jqka.com.cn/v6/line/hs_%s/0%d/all.js"
	THS_BFQ        uint8 = 0 //不复权
	THS_QFQ        uint8 = 1 //前复权
	THS_HFQ        uint8 = 2 //后复权
)

// THSKline 同花顺日K线,价格单位元,时间是当天0点
type THSKline struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64 //成交量,股
}

func NewTHS(timeout time.Duration) *THS {
	return &THS{
		Url:    UrlTHSDayKline,
		Client: &http.Client{Timeout: timeout},
	}
}

// THS 同花顺行情接口
type THS struct {
	Url    string
	Client *http.Client
}

/*
GetDayKline
获取同花顺的全部日K线
前复权,和通达信对的上,和东方财富对不上
后复权,和通达信,东方财富都对不上
*/
func (this *THS) GetDayKline(ctx context.Context, code string, _type uint8) ([]*THSKline, error) {
	if _type != THS_BFQ && _type != THS_QFQ && _type != THS_HFQ {
		return nil, fmt.Errorf("数据类型错误,例如:不复权0或前复权1或后复权2")
	}

	code = protocol.AddPrefix(code)
	if len(code) != 8 {
		return nil, fmt.Errorf("股票代码错误,例如:sz000001或000001")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(this.Url, code[2:], _type), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/89.0.4389.90 Safari/537.36 Edg/89.0.774.54")
	req.Header.Set("Referer", "http://stockpage.10jqka.com.cn/")
	req.Header.Set("DNT", "1")
	resp, err := this.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("同花顺响应状态码: %d", resp.StatusCode)
	}

	bs, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return ParseTHSDayKline(bs)
}

/*
ParseTHSDayKline 解析同花顺jsonp响应
quotebridge_v6_line_hs_000001_01_all({"total":"2","sortYear":[[2024,2]],"priceFactor":100,
"price":"1000,20,30,10,...","volumn":"100,200","dates":"0102,0103"})
price每4个一组:最低价,开盘-最低,最高-最低,收盘-最低
*/
func ParseTHSDayKline(bs []byte) ([]*THSKline, error) {
	start := bytes.IndexByte(bs, '(')
	end := bytes.LastIndexByte(bs, ')')
	if start < 0 || end <= start {
		return nil, errors.New("同花顺响应格式错误")
	}
	bs = bs[start+1 : end]
	if !gjson.ValidBytes(bs) {
		return nil, errors.New("同花顺响应不是有效的json")
	}

	result := gjson.ParseBytes(bs)
	total := int(result.Get("total").Int())
	priceFactor := result.Get("priceFactor").Float()
	if priceFactor == 0 {
		priceFactor = 1
	}
	prices := split(result.Get("price").String())
	dates := split(result.Get("dates").String())
	volumes := split(result.Get("volumn").String())

	//好像到了22点,总数量会比实际多1
	if total == len(dates)+1 && total == len(volumes)+1 {
		total -= 1
	}
	//判断数量是否对应
	if total*4 != len(prices) || total != len(dates) || total != len(volumes) {
		return nil, fmt.Errorf("total=%d prices=%d dates=%d volumns=%d", total, len(prices), len(dates), len(volumes))
	}

	//sortYear按年份正序,每项是[年份,当年数量]
	years := make([]int, 0, total)
	for _, v := range result.Get("sortYear").Array() {
		ls := v.Array()
		if len(ls) != 2 {
			continue
		}
		for n := int(ls[1].Int()); n > 0; n-- {
			years = append(years, int(ls[0].Int()))
		}
	}
	if len(years) != total {
		return nil, fmt.Errorf("sortYear数量%d和total=%d不一致", len(years), total)
	}

	ls := make([]*THSKline, 0, total)
	for i, d := range dates {
		x, err := time.Parse("0102", d)
		if err != nil {
			return nil, err
		}
		low := parseFloat(prices[i*4+0]) / priceFactor
		ls = append(ls, &THSKline{
			Date:   time.Date(years[i], x.Month(), x.Day(), 0, 0, 0, 0, time.UTC),
			Open:   parseFloat(prices[i*4+1])/priceFactor + low,
			High:   parseFloat(prices[i*4+2])/priceFactor + low,
			Low:    low,
			Close:  parseFloat(prices[i*4+3])/priceFactor + low,
			Volume: int64(parseFloat(volumes[i])),
		})
	}
	return ls, nil
}

func split(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// parseFloat 解析失败按0处理
func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

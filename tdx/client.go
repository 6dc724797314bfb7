package tdx

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/injoyai/awatcher/protocol"
	"github.com/injoyai/base/maps"
	"github.com/injoyai/base/maps/wait"
	"github.com/injoyai/conv"
	"github.com/injoyai/ios"
	"github.com/injoyai/ios/client"
	"github.com/injoyai/ios/module/common"
	"github.com/injoyai/logs"
)

// WithDebug 是否打印通讯数据
func WithDebug(b ...bool) client.Option {
	return func(c *client.Client) {
		c.Logger.Debug(b...)
	}
}

// WithRedial 断线重连
func WithRedial(b ...bool) client.Option {
	return func(c *client.Client) {
		c.SetRedial(b...)
	}
}

// Dial 与服务器建立连接,多个地址时按顺序尝试
func Dial(hosts []string, op ...client.Option) (*Client, error) {
	if len(hosts) == 1 {
		return DialWith(NewTCPDial(hosts[0]), op...)
	}
	return DialWith(NewRangeDial(hosts, 2*time.Second), op...)
}

// DialWith 与服务器建立连接,连接成功后发送握手帧,并定时发送心跳
func DialWith(dial ios.DialFunc, op ...client.Option) (cli *Client, err error) {

	cli = &Client{
		Wait: wait.New(time.Second * 5),
		m:    maps.NewSafe(),
	}

	cli.Client, err = client.Dial(dial, func(c *client.Client) {
		c.Logger.Debug(false)                          //默认不打印通讯数据
		c.Logger.SetLevel(common.LevelInfo)            //设置日志级别
		c.Logger.WithHEX()                             //以HEX显示
		c.SetOption(op...)                             //自定义选项
		c.Event.OnReadFrom = protocol.ReadFrom         //分包
		c.Event.OnDealMessage = cli.handlerDealMessage //解析数据并处理
		c.Event.OnConnected = func(c *client.Client) error {
			//无数据超时时间是60秒,30秒发送一个心跳包
			c.GoTimerWriter(30*time.Second, func(w ios.MoreWriter) error {
				_, err := w.Write(protocol.MHeart.Frame().Bytes())
				return err
			})
			if _, err := c.Write(protocol.MConnect.Frame().Bytes()); err != nil {
				c.Close()
				return err
			}
			return nil
		}
	})
	if err != nil {
		return nil, err
	}

	go cli.Client.Run()

	return cli, nil
}

type Client struct {
	*client.Client              //客户端实例
	Wait           *wait.Entity //异步回调,超时则返回错误
	m              *maps.Safe   //响应里不带请求参数,请求时按消息id缓存
	msgID          uint32       //消息id,SendFrame自动累加
}

// handlerDealMessage 处理服务器响应的数据
func (this *Client) handlerDealMessage(c *client.Client, msg ios.Acker) {

	defer func() {
		if e := recover(); e != nil {
			logs.Err(e)
			debug.PrintStack()
		}
	}()

	f, err := protocol.Decode(msg.Payload())
	if err != nil {
		logs.Err(err)
		return
	}

	key := conv.String(f.MsgID)
	val, _ := this.m.GetAndDel(key)

	var resp any
	switch f.Type {

	case protocol.TypeConnect:

	case protocol.TypeHeart:

	case protocol.TypeCode:
		exchange, _ := val.(protocol.Exchange)
		resp, err = protocol.MCode.Decode(f.Data, exchange)

	case protocol.TypeKline:
		cache, ok := val.(protocol.KlineCache)
		if !ok {
			err = fmt.Errorf("消息[%d]缺少K线缓存", f.MsgID)
			break
		}
		resp, err = protocol.MKline.Decode(f.Data, cache)

	default:
		err = fmt.Errorf("通讯类型未解析:0x%X", f.Type)

	}

	if err != nil {
		logs.Err(err)
		//把错误交给等待方,避免等到超时
		this.Wait.Done(key, err)
		return
	}

	this.Wait.Done(key, resp)

}

// SetTimeout 设置等待响应的超时时间
func (this *Client) SetTimeout(t time.Duration) {
	this.Wait.SetTimeout(t)
}

// SendFrame 发送数据,并等待响应
func (this *Client) SendFrame(ctx context.Context, f *protocol.Frame, cache ...any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.MsgID = atomic.AddUint32(&this.msgID, 1)
	if len(cache) > 0 {
		this.m.Set(conv.String(f.MsgID), cache[0])
	}
	if _, err := this.Client.Write(f.Bytes()); err != nil {
		return nil, err
	}
	result, err := this.Wait.Wait(conv.String(f.MsgID))
	if err != nil {
		return nil, err
	}
	if e, ok := result.(error); ok {
		return nil, e
	}
	return result, nil
}

// GetCode 获取市场内从start开始的证券代码,一次固定返回1000只
func (this *Client) GetCode(ctx context.Context, exchange protocol.Exchange, start uint16) (*protocol.CodeResp, error) {
	result, err := this.SendFrame(ctx, protocol.MCode.Frame(exchange, start), exchange)
	if err != nil {
		return nil, err
	}
	return result.(*protocol.CodeResp), nil
}

// GetCodeAll 通过多次请求的方式获取市场内全部证券代码
func (this *Client) GetCodeAll(ctx context.Context, exchange protocol.Exchange) (*protocol.CodeResp, error) {
	resp := &protocol.CodeResp{}
	size := uint16(1000)
	for start := uint16(0); ; start += size {
		r, err := this.GetCode(ctx, exchange, start)
		if err != nil {
			return nil, err
		}
		resp.Count += r.Count
		resp.List = append(resp.List, r.List...)
		if r.Count < size {
			break
		}
	}
	return resp, nil
}

// GetStockAll 获取沪深全部A股
func (this *Client) GetStockAll(ctx context.Context) ([]*protocol.Code, error) {
	ls := []*protocol.Code(nil)
	for _, ex := range []protocol.Exchange{protocol.ExchangeSH, protocol.ExchangeSZ} {
		resp, err := this.GetCodeAll(ctx, ex)
		if err != nil {
			return nil, err
		}
		for _, v := range resp.List {
			if protocol.IsStock(v.FullCode()) {
				ls = append(ls, v)
			}
		}
	}
	return ls, nil
}

func (this *Client) getKline(ctx context.Context, cache protocol.KlineCache, code string, start, count uint16) (*protocol.KlineResp, error) {
	f, err := protocol.MKline.Frame(cache.Type, code, start, count)
	if err != nil {
		return nil, err
	}
	result, err := this.SendFrame(ctx, f, cache)
	if err != nil {
		return nil, err
	}
	return result.(*protocol.KlineResp), nil
}

// GetKlineUntil 获取k线数据,从最新往前分页拉取,直到f返回true(包含该条),结果按时间正序
func (this *Client) GetKlineUntil(ctx context.Context, Type protocol.KlineType, code string, f func(k *protocol.Kline) bool) (*protocol.KlineResp, error) {
	return this.getKlineUntil(ctx, protocol.KlineCache{Type: Type, Kind: protocol.KindStock}, code, f)
}

// GetIndexUntil 获取指数k线数据,同GetKlineUntil
func (this *Client) GetIndexUntil(ctx context.Context, Type protocol.KlineType, code string, f func(k *protocol.Kline) bool) (*protocol.KlineResp, error) {
	return this.getKlineUntil(ctx, protocol.KlineCache{Type: Type, Kind: protocol.KindIndex}, code, f)
}

func (this *Client) getKlineUntil(ctx context.Context, cache protocol.KlineCache, code string, f func(k *protocol.Kline) bool) (*protocol.KlineResp, error) {
	resp := &protocol.KlineResp{}
	size := uint16(protocol.KlineMaxCount)
	var first *protocol.Kline
	for start := uint16(0); ; start += size {
		r, err := this.getKline(ctx, cache, code, start, size)
		if err != nil {
			return nil, err
		}
		//上一页的第一条,昨收是这一页的最后一条
		if first != nil && len(r.List) > 0 {
			first.Last = r.List[len(r.List)-1].Close
		}
		if len(r.List) > 0 {
			first = r.List[0]
		}
		for i := len(r.List) - 1; i >= 0; i-- {
			if f(r.List[i]) {
				resp.Count += r.Count - uint16(i)
				resp.List = append(r.List[i:], resp.List...)
				return resp, nil
			}
		}
		resp.Count += r.Count
		resp.List = append(r.List, resp.List...)
		if r.Count < size {
			break
		}
		if start > ^uint16(0)-size {
			return nil, errors.New("分页偏移量溢出")
		}
	}
	return resp, nil
}

// GetKlineDayUntil 日K线
func (this *Client) GetKlineDayUntil(ctx context.Context, code string, f func(k *protocol.Kline) bool) (*protocol.KlineResp, error) {
	return this.GetKlineUntil(ctx, protocol.TypeKlineDay, code, f)
}

// GetKlineHourUntil 60分钟K线
func (this *Client) GetKlineHourUntil(ctx context.Context, code string, f func(k *protocol.Kline) bool) (*protocol.KlineResp, error) {
	return this.GetKlineUntil(ctx, protocol.TypeKline60Minute, code, f)
}

// GetIndexDayAll 指数全部日K线
func (this *Client) GetIndexDayAll(ctx context.Context, code string) (*protocol.KlineResp, error) {
	return this.GetIndexUntil(ctx, protocol.TypeKlineDay, code, func(k *protocol.Kline) bool { return false })
}

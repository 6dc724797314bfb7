package tdx

import (
	"context"
	"net"
	"time"

	"github.com/injoyai/ios"
	"github.com/injoyai/ios/module/tcp"
	"github.com/injoyai/logs"
)

// NewTCPDial 连接单个地址
func NewTCPDial(addr string) ios.DialFunc {
	return tcp.NewDial(withPort(addr))
}

// NewRangeDial 按顺序遍历地址进行连接,成功则结束遍历,每次失败等待interval
func NewRangeDial(hosts []string, interval time.Duration) ios.DialFunc {
	if len(hosts) == 0 {
		hosts = Hosts
	}
	return func(ctx context.Context) (c ios.ReadWriteCloser, _ string, err error) {
		d := net.Dialer{Timeout: 5 * time.Second}
		for i, addr := range hosts {
			select {
			case <-ctx.Done():
				return nil, "", ctx.Err()
			default:
			}
			addr = withPort(addr)
			c, err = d.DialContext(ctx, "tcp", addr)
			if err == nil {
				return c, addr, nil
			}
			if i < len(hosts)-1 {
				//最后一个错误返回出去
				logs.Errf("连接[%s]失败: %v, 等待%s后尝试下一个服务地址...\n", addr, err, interval)
				select {
				case <-ctx.Done():
					return nil, "", ctx.Err()
				case <-time.After(interval):
				}
			}
		}
		return
	}
}

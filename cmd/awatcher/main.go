// awatcher 拉取A股股票列表,日K线,小时K线和复权因子,增量保存到数据库
//
// 使用:
//
//	awatcher init
//	awatcher update-stock-list
//	awatcher update-daily --code=sh.600000 --start-date=2024-01-01
//	awatcher schedule
package main

import (
	"os"

	"github.com/injoyai/awatcher/cmd/awatcher/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/injoyai/awatcher/stock"
	"github.com/spf13/cobra"
)

var latestDateCmd = &cobra.Command{
	Use:   "latest-date",
	Short: "查询数据库中最新的日K线日期",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := rt.store(cmd.Context())
		if err != nil {
			return err
		}
		t, err := repo.LatestTradingDate(cmd.Context())
		if errors.Is(err, stock.ErrNotFound) {
			fmt.Println("暂无日K线数据")
			return nil
		} else if err != nil {
			return err
		}
		fmt.Println(t.Format(time.DateOnly))
		return nil
	},
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "查询最近的运行记录",
	RunE: func(cmd *cobra.Command, args []string) error {
		if rt.journal == nil {
			return errors.New("运行记录未开启,请设置journal.enable")
		}
		ls, err := rt.journal.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		for _, v := range ls {
			fmt.Printf("%s  %-22s %-8s %8d条  %-10s %s %s\n",
				time.UnixMilli(v.StartedAt).Format(time.DateTime),
				v.Command, v.Status, v.Count, v.Duration().Round(time.Millisecond), v.Args, v.Error,
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "显示的数量")
}

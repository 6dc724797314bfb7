package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/injoyai/awatcher/calendar"
	"github.com/injoyai/awatcher/logger"
	"github.com/injoyai/awatcher/protocol"
	"github.com/injoyai/awatcher/store/sqlstore"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

// zero 未指定日期
var zero time.Time

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "定时任务,每个交易日收盘后更新全部数据",
	Long: `定时任务,每个交易日收盘后更新全部数据

按data_update.schedule(带秒的cron表达式,北京时间)执行,
依次更新股票列表,日K线,小时K线,复权因子,同一时间只运行一次`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cal, err := calendar.Dial(rt.market, sqlstore.DriverSqlite, rt.cfg.DataUpdate.CalendarDSN)
		if err != nil {
			return err
		}
		defer cal.Close()

		p, err := rt.processor(ctx, false)
		if err != nil {
			return err
		}

		task := cron.New(
			cron.WithSeconds(),
			cron.WithLocation(protocol.Location),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(logger.Printer{}))),
		)
		_, err = task.AddFunc(rt.cfg.DataUpdate.Schedule, func() {
			//每次更新前补充交易日历
			if err := cal.Update(ctx); err != nil {
				logger.Errorf("更新交易日历失败: %v", err)
				return
			}
			day, ok := cal.Last(time.Now().In(protocol.Location))
			if !ok {
				logger.Warnf("交易日历为空,跳过")
				return
			}
			if !cal.TodayIs() {
				logger.Infof("今天不是交易日,最近交易日 %s,跳过", day.Format(time.DateOnly))
				return
			}
			logger.Infof("开始更新交易日 %s 的数据", day.Format(time.DateOnly))
			steps := []struct {
				name string
				fn   func(ctx context.Context) (int, error)
			}{
				{"update-stock-list", p.StockList},
				{"update-daily", func(ctx context.Context) (int, error) { return p.DayLineAll(ctx, zero, zero) }},
				{"update-hourly", func(ctx context.Context) (int, error) { return p.HourLineAll(ctx, zero, zero) }},
				{"update-adjust-factor", func(ctx context.Context) (int, error) { return p.AdjustFactorAll(ctx, zero, zero) }},
			}
			for _, step := range steps {
				if _, err := rt.journal.Run(ctx, step.name, "schedule", step.fn); err != nil {
					logger.Errorf("定时任务[%s]失败: %v", step.name, err)
					if errors.Is(err, context.Canceled) {
						return
					}
				}
			}
		})
		if err != nil {
			return err
		}

		task.Start()
		logger.Infof("定时任务已启动[%s]", rt.cfg.DataUpdate.Schedule)
		<-ctx.Done()
		<-task.Stop().Done()
		logger.Infof("定时任务已停止")
		return nil
	},
}

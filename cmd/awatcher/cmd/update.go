package cmd

import (
	"context"
	"time"

	"github.com/injoyai/awatcher/logger"
	"github.com/injoyai/awatcher/processor"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "初始化数据库索引",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := rt.run(cmd.Context(), cmd, func(ctx context.Context) (int, error) {
			repo, err := rt.store(ctx)
			if err != nil {
				return 0, err
			}
			if err = repo.SetupIndexes(ctx); err != nil {
				return 0, err
			}
			logger.Infof("数据库索引初始化完成")
			return 0, nil
		})
		return err
	},
}

var stockListCmd = &cobra.Command{
	Use:   "update-stock-list",
	Short: "更新股票列表",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := rt.run(cmd.Context(), cmd, func(ctx context.Context) (int, error) {
			p, err := rt.processor(ctx, false)
			if err != nil {
				return 0, err
			}
			return p.StockList(ctx)
		})
		return err
	},
}

type (
	oneFunc func(p *processor.Processor, ctx context.Context, code string, start, end time.Time) (int, error)
	allFunc func(p *processor.Processor, ctx context.Context, start, end time.Time) (int, error)
)

// newUpdateCmd 更新序列的命令,不指定代码时更新全部股票
func newUpdateCmd(use, short string, one oneFunc, all allFunc) *cobra.Command {
	var (
		code            string
		startDate       string
		endDate         string
		continueOnError bool
	)
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long: short + `

不指定开始日期时从数据库中最后一条数据的日期开始增量更新,
没有数据时整体拉取,不指定结束日期默认今天`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDate(startDate)
			if err != nil {
				return err
			}
			end, err := parseDate(endDate)
			if err != nil {
				return err
			}
			_, err = rt.run(cmd.Context(), cmd, func(ctx context.Context) (int, error) {
				p, err := rt.processor(ctx, continueOnError)
				if err != nil {
					return 0, err
				}
				var n int
				if code != "" {
					n, err = one(p, ctx, code, start, end)
				} else {
					n, err = all(p, ctx, start, end)
				}
				if err == nil {
					logger.Infof("%s完成,共处理 %d 条记录", short, n)
				}
				return n, err
			})
			return err
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "股票代码,例sh.600000,为空处理全部股票")
	cmd.Flags().StringVar(&startDate, "start-date", "", "开始日期,例2024-01-02")
	cmd.Flags().StringVar(&endDate, "end-date", "", "结束日期,例2024-01-02")
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "全部股票模式下,单只股票失败后继续处理下一只")
	return cmd
}

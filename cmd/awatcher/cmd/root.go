// Package cmd 命令行
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/injoyai/awatcher/config"
	"github.com/injoyai/awatcher/journal"
	"github.com/injoyai/awatcher/logger"
	"github.com/injoyai/awatcher/market"
	"github.com/injoyai/awatcher/processor"
	"github.com/injoyai/awatcher/stock"
	"github.com/injoyai/awatcher/store/mongo"
	"github.com/injoyai/awatcher/store/sqlstore"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	// 公共参数
	cfgFile string

	// 运行时,PersistentPreRunE中创建,Execute退出前释放
	rt = &runtime{}
)

var rootCmd = &cobra.Command{
	Use:   "awatcher",
	Short: "A股行情数据同步工具",
	Long: `A股行情数据同步工具

从行情服务器拉取股票列表,日K线,小时K线和复权因子,
按最后一条数据的日期增量合并到数据库(MongoDB/sqlite/mysql)`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return rt.init(cmd.Context())
	},
}

// Execute 执行命令,返回退出码,无论成功失败都会断开行情服务器和数据库
func Execute() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	defer rt.close()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Errorf("%v", err)
		return 1
	}
	return 0
}

func init() {
	if filename := os.Getenv("AWATCHER_CONFIG"); filename != "" {
		cfgFile = filename
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", cfgFile, "配置文件(默认 "+config.DefaultFile+")")

	rootCmd.AddCommand(
		initCmd,
		stockListCmd,
		newUpdateCmd("update-daily", "更新日K线", (*processor.Processor).DayLine, (*processor.Processor).DayLineAll),
		newUpdateCmd("update-hourly", "更新小时K线", (*processor.Processor).HourLine, (*processor.Processor).HourLineAll),
		newUpdateCmd("update-adjust-factor", "更新复权因子", (*processor.Processor).AdjustFactor, (*processor.Processor).AdjustFactorAll),
		latestDateCmd,
		historyCmd,
		scheduleCmd,
	)
}

// runtime 进程内只创建一次的客户端
type runtime struct {
	cfg       *config.Config
	repo      stock.Repository
	closeRepo func() error
	market    *market.Client
	proc      *processor.Processor
	journal   *journal.Journal
	closeLog  func() error
}

func (this *runtime) init(ctx context.Context) (err error) {
	this.cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	this.closeLog, err = logger.Init(this.cfg.Logging)
	if err != nil {
		return err
	}

	if this.cfg.Journal.Enable {
		if this.journal, err = journal.Dial(this.cfg.Journal.Driver, this.cfg.Journal.DSN); err != nil {
			return fmt.Errorf("打开运行记录失败: %w", err)
		}
	}

	//行情服务器在第一次读取时才连接
	this.market, err = market.NewWithConfig(this.cfg.Provider, this.cfg.DataUpdate)
	return err
}

// store 打开股票存储,只打开一次
func (this *runtime) store(ctx context.Context) (stock.Repository, error) {
	if this.repo != nil {
		return this.repo, nil
	}
	repo, closeRepo, err := openRepo(ctx, this.cfg)
	if err != nil {
		return nil, err
	}
	this.repo, this.closeRepo = repo, closeRepo
	return repo, nil
}

// processor 创建处理器,continueOnError为true时覆盖配置
func (this *runtime) processor(ctx context.Context, continueOnError bool) (*processor.Processor, error) {
	if this.proc == nil {
		repo, err := this.store(ctx)
		if err != nil {
			return nil, err
		}
		this.proc = processor.New(repo, this.market, processor.Options{
			ContinueOnError: this.cfg.DataUpdate.ContinueOnError,
		})
	}
	if continueOnError {
		this.proc.ContinueOnError = true
	}
	return this.proc, nil
}

// close 按创建的倒序释放
func (this *runtime) close() {
	if this.market != nil {
		this.market.Logout()
	}
	if this.journal != nil {
		logger.PrintErr(this.journal.Close())
	}
	if this.closeRepo != nil {
		logger.PrintErr(this.closeRepo())
	}
	if this.closeLog != nil {
		this.closeLog()
	}
}

// run 执行并记录运行结果
func (this *runtime) run(ctx context.Context, cmd *cobra.Command, fn func(ctx context.Context) (int, error)) (int, error) {
	args := []string(nil)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		args = append(args, "--"+f.Name+"="+f.Value.String())
	})
	return this.journal.Run(ctx, cmd.Name(), strings.Join(args, " "), fn)
}

func openRepo(ctx context.Context, cfg *config.Config) (stock.Repository, func() error, error) {
	switch cfg.Store.Driver {
	case sqlstore.DriverSqlite, sqlstore.DriverMysql:
		dsn := cfg.Store.DSN
		if dsn == "" {
			dsn = "data/stock.db"
		}
		s, err := sqlstore.Dial(cfg.Store.Driver, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("打开数据库失败: %w", err)
		}
		return s, s.Close, nil

	default:
		c, err := mongo.Connect(ctx, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		return mongo.NewStockModel(c), func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return c.Close(ctx)
		}, nil
	}
}

// parseDate 解析日期参数,为空返回零值
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("日期[%s]格式错误,例如2024-01-02", s)
	}
	return t, nil
}

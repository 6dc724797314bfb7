// Package logger 日志,控制台使用logs输出,同时按大小滚动写入文件
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/injoyai/awatcher/config"
	"github.com/injoyai/logs"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (this Level) String() string {
	switch this {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

// ParseLevel 解析日志级别,未知的按info处理
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug", "all":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

var (
	mu    sync.Mutex
	level = LevelInfo
	file  io.WriteCloser
)

// Init 设置日志级别和日志文件,返回的关闭函数在退出时调用
func Init(cfg config.Logging) (func() error, error) {
	mu.Lock()
	defer mu.Unlock()
	level = ParseLevel(cfg.Level)
	if cfg.FilePath == "" {
		return func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0777); err != nil {
		return nil, fmt.Errorf("创建日志目录失败: %w", err)
	}
	f := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.RotationMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
	file = f
	return func() error {
		mu.Lock()
		defer mu.Unlock()
		file = nil
		return f.Close()
	}, nil
}

func write(l Level, msg string) {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return
	}
	msg = strings.TrimRight(msg, "\n")
	fmt.Fprintf(file, "%s [%s] %s\n", time.Now().Format("2006-01-02 15:04:05.000"), l, msg)
}

func enabled(l Level) bool {
	mu.Lock()
	defer mu.Unlock()
	return l >= level
}

func Debugf(format string, v ...any) {
	if !enabled(LevelDebug) {
		return
	}
	msg := fmt.Sprintf(format, v...)
	logs.Debug(msg)
	write(LevelDebug, msg)
}

func Infof(format string, v ...any) {
	if !enabled(LevelInfo) {
		return
	}
	msg := fmt.Sprintf(format, v...)
	logs.Info(msg)
	write(LevelInfo, msg)
}

func Warnf(format string, v ...any) {
	if !enabled(LevelWarn) {
		return
	}
	msg := fmt.Sprintf(format, v...)
	logs.Info("[警告] " + msg)
	write(LevelWarn, msg)
}

func Errorf(format string, v ...any) {
	msg := fmt.Sprintf(format, v...)
	logs.Err(msg)
	write(LevelError, msg)
}

// PrintErr err不为nil时记录错误
func PrintErr(err error) {
	if err != nil {
		Errorf("%v", err)
	}
}

// Printer 适配需要Printf的库,按info级别输出
type Printer struct{}

func (Printer) Printf(format string, v ...any) {
	Infof(format, v...)
}

// Package calendar 交易日历,数据来自上证指数的日K线,缓存在数据库
package calendar

import (
	"context"
	"errors"
	"time"

	"github.com/injoyai/awatcher/logger"
	"github.com/injoyai/awatcher/protocol"
	"github.com/injoyai/awatcher/stock"
	"github.com/injoyai/awatcher/store/sqlstore"
	"github.com/injoyai/base/maps"
	"xorm.io/xorm"
)

// Source 交易日来源
type Source interface {
	IndexDays(ctx context.Context) ([]time.Time, error)
}

// WorkdayModel 交易日
type WorkdayModel struct {
	ID   int64  `json:"id"`                  //主键
	Unix int64  `json:"unix" xorm:"unique"` //当天0点的时间戳
	Date string `json:"date"`               //日期,20060102
}

func (this *WorkdayModel) TableName() string {
	return "workday"
}

func Dial(src Source, driver, dsn string) (*Calendar, error) {
	db, err := sqlstore.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	return New(src, db)
}

// New 加载已缓存的交易日,不会请求行情服务器,需要时调用Update
func New(src Source, db *xorm.Engine) (*Calendar, error) {
	if err := db.Sync2(new(WorkdayModel)); err != nil {
		return nil, err
	}
	c := &Calendar{
		src:   src,
		db:    db,
		cache: maps.NewBit(),
		now:   time.Now,
	}
	return c, c.load()
}

type Calendar struct {
	src   Source
	db    *xorm.Engine
	cache maps.Bit
	last  int64 //最后一个交易日的时间戳
	now   func() time.Time
}

func (this *Calendar) Close() error {
	return this.db.Close()
}

func (this *Calendar) load() error {
	all := []*WorkdayModel(nil)
	if err := this.db.Asc("Unix").Find(&all); err != nil {
		return err
	}
	for _, v := range all {
		this.cache.Set(uint64(v.Unix), true)
	}
	if len(all) > 0 {
		this.last = all[len(all)-1].Unix
	}
	return nil
}

// today 交易所时区的今天
func (this *Calendar) today() time.Time {
	return stock.Date(this.now().In(protocol.Location))
}

// Update 最后一个交易日早于今天时,从行情服务器补充
func (this *Calendar) Update(ctx context.Context) error {
	if this.src == nil {
		return errors.New("交易日来源为空")
	}
	if this.last >= this.today().Unix() {
		return nil
	}

	days, err := this.src.IndexDays(ctx)
	if err != nil {
		return err
	}

	inserts := []*WorkdayModel(nil)
	for _, v := range days {
		if unix := stock.Date(v).Unix(); unix > this.last {
			inserts = append(inserts, &WorkdayModel{Unix: unix, Date: v.Format("20060102")})
		}
	}
	if len(inserts) == 0 {
		return nil
	}

	err = sqlstore.NewSessionFunc(this.db, func(session *xorm.Session) error {
		for i := 0; i < len(inserts); i += 500 {
			end := i + 500
			if end > len(inserts) {
				end = len(inserts)
			}
			if _, err := session.Insert(inserts[i:end]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, v := range inserts {
		this.cache.Set(uint64(v.Unix), true)
	}
	this.last = inserts[len(inserts)-1].Unix
	logger.Infof("交易日历更新 %d 天,最新交易日 %s", len(inserts), inserts[len(inserts)-1].Date)
	return nil
}

// Is 是否是交易日
func (this *Calendar) Is(t time.Time) bool {
	return this.cache.Get(uint64(stock.Date(t).Unix()))
}

// TodayIs 今天是否是交易日
func (this *Calendar) TodayIs() bool {
	return this.Is(this.today())
}

// Last 不晚于t的最近一个交易日
func (this *Calendar) Last(t time.Time) (time.Time, bool) {
	for t = stock.Date(t); !t.Before(protocol.ExchangeEstablish); t = t.AddDate(0, 0, -1) {
		if this.Is(t) {
			return t, true
		}
	}
	return time.Time{}, false
}

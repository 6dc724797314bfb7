// Package sqlstore 关系型数据库(sqlite/mysql)上的股票存储
package sqlstore

import (
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/glebarez/go-sqlite"
	_ "github.com/go-sql-driver/mysql"
	"xorm.io/core"
	"xorm.io/xorm"
)

const (
	DriverSqlite = "sqlite"
	DriverMysql  = "mysql"
)

// Open 连接数据库,sqlite的dsn是文件路径,文件夹不存在会创建
func Open(driver, dsn string) (*xorm.Engine, error) {
	switch driver {
	case DriverSqlite:
		//如果文件夹不存在就创建
		dir, _ := filepath.Split(dsn)
		if dir != "" {
			if err := os.MkdirAll(dir, 0777); err != nil {
				return nil, err
			}
		}
	case DriverMysql:
	default:
		return nil, fmt.Errorf("未知的数据库驱动: %s", driver)
	}

	db, err := xorm.NewEngine(driver, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMapper(core.SameMapper{})
	if driver == DriverSqlite {
		db.DB().SetMaxOpenConns(1)
	}
	return db, nil
}

// NewSessionFunc 在事务中执行fn,出错回滚
func NewSessionFunc(db *xorm.Engine, fn func(session *xorm.Session) error) error {
	session := db.NewSession()
	defer session.Close()
	if err := session.Begin(); err != nil {
		session.Rollback()
		return err
	}
	if err := fn(session); err != nil {
		session.Rollback()
		return err
	}
	if err := session.Commit(); err != nil {
		session.Rollback()
		return err
	}
	return nil
}

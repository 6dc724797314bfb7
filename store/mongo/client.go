// Package mongo MongoDB客户端和股票存储
package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/injoyai/awatcher/config"
	"github.com/injoyai/awatcher/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// URI 根据配置生成连接地址,账号密码通过options.Credential设置
func URI(cfg config.MongoDB) string {
	if cfg.URI != "" {
		return cfg.URI
	}
	return fmt.Sprintf("mongodb://%s:%d", cfg.Host, cfg.Port)
}

func clientOptions(cfg config.MongoDB) *options.ClientOptions {
	op := options.Client().
		ApplyURI(URI(cfg)).
		SetMaxPoolSize(cfg.ConnectionPoolSize).
		SetServerSelectionTimeout(time.Duration(cfg.ServerSelectionTimeoutMS) * time.Millisecond)
	if cfg.URI == "" && cfg.Username != "" {
		op.SetAuth(options.Credential{
			AuthSource: cfg.AuthSource,
			Username:   cfg.Username,
			Password:   cfg.Password,
		})
	}
	return op
}

// Connect 连接数据库并ping,失败按配置的次数和间隔重试
func Connect(ctx context.Context, cfg config.MongoDB) (*Client, error) {
	var c *mongo.Client
	err := retry(ctx, cfg.MaxRetryAttempts, time.Duration(cfg.RetryDelaySeconds)*time.Second, func(attempt int) error {
		logger.Infof("连接MongoDB[%s:%d/%s],第%d次...", cfg.Host, cfg.Port, cfg.DBName, attempt)
		cli, err := mongo.Connect(ctx, clientOptions(cfg))
		if err != nil {
			return err
		}
		if err = cli.Ping(ctx, readpref.Primary()); err != nil {
			_ = cli.Disconnect(context.Background())
			return err
		}
		c = cli
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("连接MongoDB失败: %w", err)
	}
	logger.Infof("MongoDB连接成功")
	return &Client{
		Client: c,
		db:     c.Database(cfg.DBName),
	}, nil
}

// retry 执行fn,失败则等待delay后重试,最多attempts次,返回最后一次的错误
func retry(ctx context.Context, attempts int, delay time.Duration, fn func(attempt int) error) (err error) {
	if attempts < 1 {
		attempts = 1
	}
	for i := 1; i <= attempts; i++ {
		if err = fn(i); err == nil {
			return nil
		}
		if i == attempts {
			break
		}
		logger.Errorf("第%d次失败: %v, %s后重试", i, err, delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("重试%d次后失败: %w", attempts, err)
}

// Client 对集合的通用增删改查
type Client struct {
	*mongo.Client
	db *mongo.Database
}

func (this *Client) Collection(name string) *mongo.Collection {
	return this.db.Collection(name)
}

// FindOne 查询一条记录到result,没有记录返回mongo.ErrNoDocuments
func (this *Client) FindOne(ctx context.Context, coll string, filter, result any, opts ...*options.FindOneOptions) error {
	return this.Collection(coll).FindOne(ctx, filter, opts...).Decode(result)
}

// FindOption 查询选项
type FindOption struct {
	Projection any
	Sort       any
	Skip       int64
	Limit      int64
}

// Find 查询多条记录到result(切片指针)
func (this *Client) Find(ctx context.Context, coll string, filter, result any, op ...FindOption) error {
	fo := options.Find()
	if len(op) > 0 {
		if op[0].Projection != nil {
			fo.SetProjection(op[0].Projection)
		}
		if op[0].Sort != nil {
			fo.SetSort(op[0].Sort)
		}
		if op[0].Skip > 0 {
			fo.SetSkip(op[0].Skip)
		}
		if op[0].Limit > 0 {
			fo.SetLimit(op[0].Limit)
		}
	}
	cursor, err := this.Collection(coll).Find(ctx, filter, fo)
	if err != nil {
		return err
	}
	return cursor.All(ctx, result)
}

func (this *Client) InsertOne(ctx context.Context, coll string, doc any) (any, error) {
	res, err := this.Collection(coll).InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	return res.InsertedID, nil
}

func (this *Client) InsertMany(ctx context.Context, coll string, docs []any) ([]any, error) {
	res, err := this.Collection(coll).InsertMany(ctx, docs)
	if err != nil {
		return nil, err
	}
	return res.InsertedIDs, nil
}

func (this *Client) UpdateOne(ctx context.Context, coll string, filter, update any, upsert bool) (*mongo.UpdateResult, error) {
	return this.Collection(coll).UpdateOne(ctx, filter, update, options.Update().SetUpsert(upsert))
}

func (this *Client) UpdateMany(ctx context.Context, coll string, filter, update any) (*mongo.UpdateResult, error) {
	return this.Collection(coll).UpdateMany(ctx, filter, update)
}

// FindOneAndUpdate 更新(可选插入)并把更新后的记录写入result
func (this *Client) FindOneAndUpdate(ctx context.Context, coll string, filter, update, projection, result any, upsert bool) error {
	op := options.FindOneAndUpdate().
		SetUpsert(upsert).
		SetReturnDocument(options.After)
	if projection != nil {
		op.SetProjection(projection)
	}
	return this.Collection(coll).FindOneAndUpdate(ctx, filter, update, op).Decode(result)
}

func (this *Client) DeleteOne(ctx context.Context, coll string, filter any) (int64, error) {
	res, err := this.Collection(coll).DeleteOne(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (this *Client) DeleteMany(ctx context.Context, coll string, filter any) (int64, error) {
	res, err := this.Collection(coll).DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Count 统计数量,limit大于0时最多数到limit
func (this *Client) Count(ctx context.Context, coll string, filter any, limit int64) (int64, error) {
	op := options.Count()
	if limit > 0 {
		op.SetLimit(limit)
	}
	return this.Collection(coll).CountDocuments(ctx, filter, op)
}

// CreateIndex 创建索引,返回索引名
func (this *Client) CreateIndex(ctx context.Context, coll string, keys bson.D, unique bool) (string, error) {
	return this.Collection(coll).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetUnique(unique),
	})
}

// Aggregate 聚合查询到result(切片指针)
func (this *Client) Aggregate(ctx context.Context, coll string, pipeline, result any) error {
	cursor, err := this.Collection(coll).Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	return cursor.All(ctx, result)
}

// Close 断开连接
func (this *Client) Close(ctx context.Context) error {
	if this == nil || this.Client == nil {
		return nil
	}
	err := this.Client.Disconnect(ctx)
	if err == nil {
		logger.Infof("MongoDB连接已关闭")
	}
	return err
}

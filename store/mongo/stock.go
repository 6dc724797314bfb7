package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/injoyai/awatcher/stock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionStock 股票集合
const CollectionStock = "stocks"

var _ stock.Repository = (*StockModel)(nil)

var allSeries = []stock.Series{stock.DayLine, stock.HourLine, stock.AdjustFactor}

// stockDoc 存储的文档,_id由数据库生成
type stockDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	stock.Stock `bson:",inline"`
}

func (this *stockDoc) toStock() *stock.Stock {
	s := this.Stock
	s.ID = this.ID.Hex()
	return &s
}

func NewStockModel(c *Client) *StockModel {
	return &StockModel{Client: c, coll: CollectionStock}
}

// StockModel 股票存储,一只股票一个文档,序列以内嵌数组保存
type StockModel struct {
	*Client
	coll string
}

func (this *StockModel) SetupIndexes(ctx context.Context) error {
	if _, err := this.CreateIndex(ctx, this.coll, bson.D{{Key: "code", Value: 1}}, true); err != nil {
		return fmt.Errorf("创建索引[code]失败: %w", err)
	}
	for _, key := range []string{
		"name", "market", "isFocused", "isHourFocused", "isStar",
		"focusedDays", "hourFocusedDays", "dayLine.time", "hourLine.time",
	} {
		if _, err := this.CreateIndex(ctx, this.coll, bson.D{{Key: key, Value: 1}}, false); err != nil {
			return fmt.Errorf("创建索引[%s]失败: %w", key, err)
		}
	}
	return nil
}

// Save 一次findOneAndUpdate完成插入或更新,新建时带上空序列
func (this *StockModel) Save(ctx context.Context, s *stock.Stock) (string, error) {
	result := struct {
		ID primitive.ObjectID `bson:"_id"`
	}{}
	err := this.FindOneAndUpdate(ctx, this.coll, codeFilter(s.Code), saveUpdate(s), bson.M{"_id": 1}, &result, true)
	if err != nil {
		return "", fmt.Errorf("保存股票[%s]失败: %w", s.Code, err)
	}
	return result.ID.Hex(), nil
}

func (this *StockModel) Find(ctx context.Context, code string) (*stock.Stock, error) {
	doc := new(stockDoc)
	if err := this.FindOne(ctx, this.coll, codeFilter(code), doc); err != nil {
		return nil, notFound(err)
	}
	return doc.toStock(), nil
}

func (this *StockModel) FindLast(ctx context.Context, code string, s stock.Series) (*stock.Stock, error) {
	doc := new(stockDoc)
	if err := this.FindOne(ctx, this.coll, codeFilter(code), doc, options.FindOne().SetProjection(lastProjection(s))); err != nil {
		return nil, notFound(err)
	}
	return doc.toStock(), nil
}

func (this *StockModel) Exists(ctx context.Context, code string) (bool, error) {
	n, err := this.Count(ctx, this.coll, codeFilter(code), 1)
	return n > 0, err
}

func (this *StockModel) Codes(ctx context.Context) ([]string, error) {
	ls := []struct {
		Code string `bson:"code"`
	}(nil)
	err := this.Client.Find(ctx, this.coll, bson.M{}, &ls, FindOption{
		Projection: bson.M{"_id": 0, "code": 1},
		Sort:       bson.D{{Key: "_id", Value: 1}},
	})
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(ls))
	for _, v := range ls {
		codes = append(codes, v.Code)
	}
	return codes, nil
}

func (this *StockModel) MergeDayLine(ctx context.Context, code string, c stock.Candle) error {
	return this.merge(ctx, code, stock.DayLine, c.Time, c)
}

func (this *StockModel) MergeHourLine(ctx context.Context, code string, c stock.Candle) error {
	return this.merge(ctx, code, stock.HourLine, c.Time, c)
}

func (this *StockModel) MergeAdjustFactor(ctx context.Context, code string, f stock.Factor) error {
	return this.merge(ctx, code, stock.AdjustFactor, f.Time, f)
}

/*
merge 合并一个点
1. 按时间定位替换
2. 没有匹配,追加,过滤条件排除已有该时间的文档,并发时不会重复追加
3. 都没匹配说明期间被别人追加了,再来一次
*/
func (this *StockModel) merge(ctx context.Context, code string, s stock.Series, t time.Time, point any) error {
	for i := 0; i < 2; i++ {
		res, err := this.UpdateOne(ctx, this.coll, replaceFilter(code, s, t), replaceUpdate(s, point), false)
		if err != nil {
			return fmt.Errorf("更新%s[%s %s]失败: %w", s.Name(), code, t.Format(time.DateTime), err)
		}
		if res.MatchedCount > 0 {
			return nil
		}
		res, err = this.UpdateOne(ctx, this.coll, appendFilter(code, s, t), appendUpdate(s, point), false)
		if err != nil {
			return fmt.Errorf("追加%s[%s %s]失败: %w", s.Name(), code, t.Format(time.DateTime), err)
		}
		if res.MatchedCount > 0 {
			return nil
		}
		if exist, err := this.Exists(ctx, code); err != nil {
			return err
		} else if !exist {
			return stock.ErrNotFound
		}
	}
	return fmt.Errorf("合并%s[%s %s]冲突", s.Name(), code, t.Format(time.DateTime))
}

func (this *StockModel) ReplaceDayLine(ctx context.Context, code string, cs []stock.Candle) error {
	if cs == nil {
		cs = []stock.Candle{}
	}
	return this.replace(ctx, code, stock.DayLine, cs)
}

func (this *StockModel) ReplaceHourLine(ctx context.Context, code string, cs []stock.Candle) error {
	if cs == nil {
		cs = []stock.Candle{}
	}
	return this.replace(ctx, code, stock.HourLine, cs)
}

func (this *StockModel) ReplaceAdjustFactor(ctx context.Context, code string, fs []stock.Factor) error {
	if fs == nil {
		fs = []stock.Factor{}
	}
	return this.replace(ctx, code, stock.AdjustFactor, fs)
}

func (this *StockModel) replace(ctx context.Context, code string, s stock.Series, points any) error {
	res, err := this.UpdateOne(ctx, this.coll, codeFilter(code), bson.M{"$set": bson.M{s.String(): points}}, false)
	if err != nil {
		return fmt.Errorf("替换%s[%s]失败: %w", s.Name(), code, err)
	}
	if res.MatchedCount == 0 {
		return stock.ErrNotFound
	}
	return nil
}

func (this *StockModel) LatestTradingDate(ctx context.Context) (time.Time, error) {
	ls := []struct {
		Last time.Time `bson:"last"`
	}(nil)
	if err := this.Aggregate(ctx, this.coll, latestPipeline(), &ls); err != nil {
		return time.Time{}, err
	}
	if len(ls) == 0 {
		return time.Time{}, stock.ErrNotFound
	}
	return ls[0].Last.UTC(), nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return stock.ErrNotFound
	}
	return err
}

func codeFilter(code string) bson.M {
	return bson.M{"code": code}
}

func saveUpdate(s *stock.Stock) bson.M {
	return bson.M{
		"$set": bson.M{
			"code":            s.Code,
			"name":            s.Name,
			"market":          s.Market,
			"isFocused":       s.IsFocused,
			"isHourFocused":   s.IsHourFocused,
			"isStar":          s.IsStar,
			"focusedDays":     s.FocusedDays,
			"hourFocusedDays": s.HourFocusedDays,
		},
		"$setOnInsert": bson.M{
			stock.DayLine.String():      bson.A{},
			stock.HourLine.String():     bson.A{},
			stock.AdjustFactor.String(): bson.A{},
		},
	}
}

// lastProjection 指定序列只取最后一个,其他序列不取
func lastProjection(s stock.Series) bson.M {
	m := bson.M{s.String(): bson.M{"$slice": -1}}
	for _, v := range allSeries {
		if v != s {
			m[v.String()] = 0
		}
	}
	return m
}

func replaceFilter(code string, s stock.Series, t time.Time) bson.M {
	return bson.M{"code": code, s.String() + ".time": t}
}

func replaceUpdate(s stock.Series, point any) bson.M {
	return bson.M{"$set": bson.M{s.String() + ".$": point}}
}

func appendFilter(code string, s stock.Series, t time.Time) bson.M {
	return bson.M{"code": code, s.String() + ".time": bson.M{"$ne": t}}
}

func appendUpdate(s stock.Series, point any) bson.M {
	return bson.M{"$push": bson.M{s.String(): point}}
}

func latestPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$project", Value: bson.M{"last": bson.M{"$max": "$" + stock.DayLine.String() + ".time"}}}},
		{{Key: "$match", Value: bson.M{"last": bson.M{"$ne": nil}}}},
		{{Key: "$sort", Value: bson.M{"last": -1}}},
		{{Key: "$limit", Value: 1}},
	}
}

package extend

import (
	"math"
	"time"
)

const (
	// FactorChangeThreshold 复权因子变化超过该比例视为除权除息日
	FactorChangeThreshold = 0.001

	// THSPriceRounding 同花顺复权价保留2位小数,最大舍入误差
	THSPriceRounding = 0.005

	// FactorRoundingMargin 舍入误差的放大倍数,因子变化需超过舍入能解释的范围
	FactorRoundingMargin = 1.5
)

// THSFactor 复权因子,复权价=不复权价*因子
type THSFactor struct {
	Date    time.Time
	QFactor float64 //前复权因子
	HFactor float64 //后复权因子
	Close   float64 //计算因子用的不复权收盘价,沿用时为上一个
}

// DayClose 不复权的日收盘价
type DayClose struct {
	Date  time.Time
	Close float64
}

/*
CalcFactors 按交易日计算复权因子,raw按日期正序
前复权因子=前复权收盘价/不复权收盘价,后复权同理
缺少复权数据或收盘价为0的日期沿用上一个因子,第一个默认1
*/
func CalcFactors(raw []DayClose, qfq, hfq []*THSKline) []*THSFactor {
	mQPrice := make(map[time.Time]float64, len(qfq))
	for _, v := range qfq {
		mQPrice[v.Date] = v.Close
	}
	mHPrice := make(map[time.Time]float64, len(hfq))
	for _, v := range hfq {
		mHPrice[v.Date] = v.Close
	}

	fs := make([]*THSFactor, 0, len(raw))
	q, h, c := 1.0, 1.0, 0.0
	for _, v := range raw {
		if v.Close > 0 {
			if p, ok := mQPrice[v.Date]; ok && p > 0 {
				q, c = p/v.Close, v.Close
			}
			if p, ok := mHPrice[v.Date]; ok && p > 0 {
				h, c = p/v.Close, v.Close
			}
		}
		fs = append(fs, &THSFactor{Date: v.Date, QFactor: q, HFactor: h, Close: c})
	}
	return fs
}

/*
ChangedFactors 只保留第一条和因子发生变化的记录
复权价保留2位小数,因子=复权价/收盘价,舍入会让因子每天小幅波动,
所以变化需同时超过FactorChangeThreshold和两天舍入误差之和
*/
func ChangedFactors(fs []*THSFactor) []*THSFactor {
	result := []*THSFactor(nil)
	var last *THSFactor
	for _, v := range fs {
		if last == nil {
			result = append(result, v)
			last = v
			continue
		}
		tol := roundingTolerance(last.Close, v.Close)
		if changed(last.QFactor, v.QFactor, tol) || changed(last.HFactor, v.HFactor, tol) {
			result = append(result, v)
			last = v
		}
	}
	return result
}

// roundingTolerance 复权价舍入导致的因子最大偏差
func roundingTolerance(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	return FactorRoundingMargin * THSPriceRounding * (1/a + 1/b)
}

func changed(a, b, tol float64) bool {
	if a == 0 {
		return b != 0
	}
	diff := math.Abs(b - a)
	return diff/math.Abs(a) > FactorChangeThreshold && diff > tol
}

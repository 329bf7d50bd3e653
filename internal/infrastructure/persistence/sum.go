package persistence

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// exactSum reports whether the dialect sums NUMERIC columns exactly.
// SQLite keeps decimal(18,4) columns as REAL and SUM returns a float.
func exactSum(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}

// sumAmounts totals the amount column of the rows matched by query
func sumAmounts(query *gorm.DB) (decimal.Decimal, error) {
	if exactSum(query) {
		var result struct {
			Total decimal.Decimal
		}
		if err := query.Select("COALESCE(SUM(amount), 0) as total").Scan(&result).Error; err != nil {
			return decimal.Zero, err
		}
		return result.Total, nil
	}

	var amounts []decimal.Decimal
	if err := query.Pluck("amount", &amounts).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(amount)
	}
	return total, nil
}

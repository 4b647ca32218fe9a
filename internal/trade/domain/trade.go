package domain

import (
	"errors"
	"fmt"
	"time"
)

// Trade is one row of the trade blotter. Account and Type are required.
type Trade struct {
	ID           int64      `json:"tradeId"`
	Account      string     `json:"account"`
	Type         string     `json:"type"`
	BuyQuantity  *float64   `json:"buyQuantity"`
	TradeDate    *time.Time `json:"tradeDate"`
	CreationDate *time.Time `json:"creationDate"`
	RevisionDate *time.Time `json:"revisionDate"`
}

func (t *Trade) Validate() error {
	if err := requiredShort("account", t.Account); err != nil {
		return err
	}
	return requiredShort("type", t.Type)
}

func requiredShort(field, value string) error {
	if value == "" {
		return errors.New(field + " is required")
	}
	if len(value) < 3 || len(value) > 30 {
		return fmt.Errorf("%s must be between 3 and 30 characters long", field)
	}
	return nil
}

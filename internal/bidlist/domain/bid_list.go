package domain

import (
	"errors"
	"fmt"
	"time"
)

// BidList is one row of the bid reference table. Account and Type are
// required; everything else is optional descriptive data.
type BidList struct {
	ID           int64      `json:"bidListId"`
	Account      string     `json:"account"`
	Type         string     `json:"type"`
	BidQuantity  *float64   `json:"bidQuantity"`
	AskQuantity  *float64   `json:"askQuantity"`
	Bid          *float64   `json:"bid"`
	Ask          *float64   `json:"ask"`
	Benchmark    string     `json:"benchmark"`
	BidListDate  *time.Time `json:"bidListDate"`
	Commentary   string     `json:"commentary"`
	Security     string     `json:"security"`
	Status       string     `json:"status"`
	Trader       string     `json:"trader"`
	Book         string     `json:"book"`
	CreationName string     `json:"creationName"`
	CreationDate *time.Time `json:"creationDate"`
	RevisionName string     `json:"revisionName"`
	RevisionDate *time.Time `json:"revisionDate"`
	DealName     string     `json:"dealName"`
	DealType     string     `json:"dealType"`
	SourceListID string     `json:"sourceListId"`
	Side         string     `json:"side"`
}

// Validate checks field constraints before persistence.
func (b *BidList) Validate() error {
	if err := requiredShort("account", b.Account); err != nil {
		return err
	}
	if err := requiredShort("type", b.Type); err != nil {
		return err
	}
	if len(b.Status) > 10 {
		return errors.New("status must be at most 10 characters long")
	}
	descriptive := map[string]string{
		"benchmark":    b.Benchmark,
		"commentary":   b.Commentary,
		"security":     b.Security,
		"trader":       b.Trader,
		"book":         b.Book,
		"creationName": b.CreationName,
		"revisionName": b.RevisionName,
		"dealName":     b.DealName,
		"dealType":     b.DealType,
		"sourceListId": b.SourceListID,
		"side":         b.Side,
	}
	for field, value := range descriptive {
		if len(value) > 125 {
			return errors.New(field + " must be at most 125 characters long")
		}
	}
	return nil
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

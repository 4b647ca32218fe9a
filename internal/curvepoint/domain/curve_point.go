package domain

import (
	"errors"
	"time"
)

// CurvePoint is one point on a yield curve.
type CurvePoint struct {
	ID           int64      `json:"id"`
	CurveID      *int32     `json:"curveId"`
	AsOfDate     *time.Time `json:"asOfDate"`
	Term         *float64   `json:"term"`
	Value        *float64   `json:"value"`
	CreationDate *time.Time `json:"creationDate"`
}

func (p *CurvePoint) Validate() error {
	if p.CurveID == nil {
		return errors.New("curveId is required")
	}
	if *p.CurveID < -127 || *p.CurveID > 127 {
		return errors.New("curveId must be between -127 and 127")
	}
	return nil
}

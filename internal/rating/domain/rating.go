package domain

import "errors"

// Rating holds the three agency ratings for one instrument class.
type Rating struct {
	ID           int64  `json:"id"`
	MoodysRating string `json:"moodysRating"`
	SandPRating  string `json:"sandPRating"`
	FitchRating  string `json:"fitchRating"`
	OrderNumber  *int32 `json:"orderNumber"`
}

func (r *Rating) Validate() error {
	for field, value := range map[string]string{
		"moodysRating": r.MoodysRating,
		"sandPRating":  r.SandPRating,
		"fitchRating":  r.FitchRating,
	} {
		if len(value) > 125 {
			return errors.New(field + " must be at most 125 characters long")
		}
	}
	if r.OrderNumber != nil && (*r.OrderNumber < -127 || *r.OrderNumber > 127) {
		return errors.New("orderNumber must be between -127 and 127")
	}
	return nil
}

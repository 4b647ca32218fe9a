package domain

import "errors"

// RuleName describes one pricing rule and its SQL/template fragments.
type RuleName struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	JSON        string `json:"json"`
	Template    string `json:"template"`
	SQLStr      string `json:"sqlStr"`
	SQLPart     string `json:"sqlPart"`
}

func (r *RuleName) Validate() error {
	for field, value := range map[string]string{
		"name":        r.Name,
		"description": r.Description,
		"json":        r.JSON,
		"sqlStr":      r.SQLStr,
		"sqlPart":     r.SQLPart,
	} {
		if len(value) > 125 {
			return errors.New(field + " must be at most 125 characters long")
		}
	}
	if len(r.Template) > 512 {
		return errors.New("template must be at most 512 characters long")
	}
	return nil
}

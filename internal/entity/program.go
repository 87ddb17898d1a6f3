package entity

import "github.com/shopspring/decimal"

// Program is a training track offered in the catalog (AWS, DevOps, ...).
type Program struct {
	Key           string          `json:"key" yaml:"-"`
	Name          string          `json:"name" yaml:"name"`
	Price         decimal.Decimal `json:"price" yaml:"price"`
	Duration      string          `json:"duration" yaml:"duration"`
	PlacementRate float64         `json:"placement_rate" yaml:"placement_rate"`
	AvgSalaryK    int             `json:"avg_salary_k" yaml:"avg_salary_k"`
	CohortStart   string          `json:"cohort_start" yaml:"cohort_start"`
}

// ProgramCatalog resolves program keys. Keys are case-sensitive.
type ProgramCatalog interface {
	Program(key string) (Program, bool)
	ProgramKeys() []string
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// StringList is stored as a JSON text column so every dialect can hold it.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *StringList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

type Hackathon struct {
	ID          int        `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	URL         string     `db:"url" json:"url"`
	StartDate   time.Time  `db:"start_date" json:"startDate"`
	EndDate     time.Time  `db:"end_date" json:"endDate"`
	Platform    string     `db:"platform" json:"platform"`
	ImageURL    *string    `db:"image_url" json:"imageUrl"`
	Tags        StringList `db:"tags" json:"tags"`
}

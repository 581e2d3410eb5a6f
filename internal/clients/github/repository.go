package github

import (
	"encoding/json"
	"fmt"
	"time"
)

type Repository struct {
	FullName    string     `json:"full_name"`
	Description string     `json:"description"`
	Language    string     `json:"language"`
	Stars       int        `json:"stargazers_count"`
	Forks       int        `json:"forks_count"`
	Topics      []string   `json:"topics"`
	Archived    bool       `json:"archived"`
	Disabled    bool       `json:"disabled"`
	Fork        bool       `json:"fork"`
	UpdatedAt   CustomTime `json:"updated_at"`
	Url         string     `json:"html_url"`
}

type CustomTime struct {
	time.Time
}

func (dt *CustomTime) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	if str == "" {
		return nil
	}

	t, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return fmt.Errorf("parsing time %s: %v", str, err)
	}
	dt.Time = t
	return nil
}

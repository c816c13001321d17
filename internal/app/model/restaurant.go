package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StringArray stores a JSON-encoded string slice in a single text column so the
// same model works on PostgreSQL and the sqlite test database.
type StringArray []string

// Value implements database/sql/driver.Valuer
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements database/sql.Scanner
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("failed to scan StringArray")
	}
}

// Restaurant is a group-owned catalog entry. The catalog-level IsActive flag is
// independent of any per-office binding flag: an inactive restaurant is never
// drawable, no matter what its bindings say.
type Restaurant struct {
	ID       uint        `gorm:"primarykey" json:"id"`
	GroupID  string      `gorm:"index:idx_restaurants_group_name,unique;not null" json:"group_id"` // 群組 ID (LINE user/group/room)
	Name     string      `gorm:"index:idx_restaurants_group_name,unique;not null" json:"name"`     // 餐廳名稱, unique within group
	Address  string      `gorm:"type:text" json:"address"`
	Phone    string      `gorm:"type:varchar(30)" json:"phone"`
	Menu     StringArray `gorm:"type:text" json:"menu"` // menu image URLs, at most 5
	Tags     StringArray `gorm:"type:text" json:"tags"`
	IsActive bool        `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Restaurant) TableName() string {
	return "restaurants"
}

// MaxMenuImages caps the number of menu images a restaurant can carry.
const MaxMenuImages = 5

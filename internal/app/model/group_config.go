package model

import "time"

// DefaultOffice is the bootstrap office name assigned when a group talks to
// the bot before configuring anything.
const DefaultOffice = "default"

// GroupConfig is the per-group settings record: which office is currently in
// use, which office names are valid, and whether the scheduled lunch push is
// enabled. CurrentOffice must be a member of OfficeOption whenever OfficeOption
// is non-empty; this is enforced on write, not at rest.
type GroupConfig struct {
	ID                uint        `gorm:"primarykey" json:"id"`
	GroupID           string      `gorm:"uniqueIndex;not null" json:"group_id"`
	CurrentOffice     string      `gorm:"not null;default:default" json:"current_office"`
	OfficeOption      StringArray `gorm:"type:text" json:"office_option"`
	LunchNotification bool        `gorm:"default:false" json:"lunch_notification"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (GroupConfig) TableName() string {
	return "group_configs"
}

// HasOffice reports whether name is a member of the OfficeOption set.
func (g *GroupConfig) HasOffice(name string) bool {
	for _, o := range g.OfficeOption {
		if o == name {
			return true
		}
	}
	return false
}

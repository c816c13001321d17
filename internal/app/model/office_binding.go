package model

import "time"

// OfficeBinding makes a restaurant eligible for draws at one office within a
// group. Offices are plain strings owned by GroupConfig; there is no office
// table. A restaurant can be bound to many offices, but only once per office
// per group.
type OfficeBinding struct {
	ID               uint   `gorm:"primarykey" json:"id"`
	GroupID          string `gorm:"index:idx_bindings_tuple,unique;index:idx_bindings_draw;not null" json:"group_id"`
	Office           string `gorm:"index:idx_bindings_tuple,unique;index:idx_bindings_draw;not null" json:"office"`
	RestaurantID     uint   `gorm:"index:idx_bindings_tuple,unique;not null" json:"restaurant_id"`
	IsActiveInOffice bool   `gorm:"index:idx_bindings_draw" json:"is_active_in_office"`
	Note             string `gorm:"type:text" json:"note"`

	Restaurant Restaurant `gorm:"foreignKey:RestaurantID" json:"restaurant,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OfficeBinding) TableName() string {
	return "office_bindings"
}

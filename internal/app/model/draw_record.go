package model

import "time"

// DrawRecord is one row per successful draw. Append-only: nothing in the
// application mutates or deletes these through normal operation.
//
// RestaurantName is denormalized at draw time so the ledger stays readable
// after the restaurant itself is hard-deleted. RestaurantID is then nulled
// rather than left dangling.
type DrawRecord struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	GroupID        string    `gorm:"index;not null" json:"group_id"`
	RestaurantID   *uint     `json:"restaurant_id,omitempty"`
	RestaurantName string    `gorm:"not null" json:"restaurant_name"`
	Office         string    `gorm:"not null" json:"office"`
	DrawnAt        time.Time `gorm:"index;autoCreateTime" json:"drawn_at"`

	Restaurant *Restaurant `gorm:"foreignKey:RestaurantID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"restaurant,omitempty"`
}

func (DrawRecord) TableName() string {
	return "draw_records"
}

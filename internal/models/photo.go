package models

type Photo struct {
	BaseModel
	UserID          string      `gorm:"not null;index"`
	URL             string      `gorm:"not null"`
	ThumbnailURL    string
	Status          PhotoStatus `gorm:"type:varchar(20);default:'pending';index"`
	RejectionReason string
	IsActive        bool `gorm:"default:false;index"`

	// Relations
	User *User `gorm:"foreignKey:UserID"`
}

// IsRateable - фото попадает в очередь оценивания
func (p *Photo) IsRateable() bool {
	return p.IsActive && p.Status == PhotoStatusApproved
}

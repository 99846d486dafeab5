package models

// QueueItem - строка персональной очереди оценивания. Одна пара
// (rater, photo) существует в очереди не более одного раза.
type QueueItem struct {
	BaseModel
	RaterUserID  string     `gorm:"not null;index;uniqueIndex:idx_queue_rater_photo"`
	TargetUserID string     `gorm:"not null;index"`
	PhotoID      string     `gorm:"not null;uniqueIndex:idx_queue_rater_photo"`
	Priority     int        `gorm:"not null;default:0"`
	State        QueueState `gorm:"type:varchar(20);default:'pending';index"`

	Rater  *User  `gorm:"foreignKey:RaterUserID"`
	Target *User  `gorm:"foreignKey:TargetUserID"`
	Photo  *Photo `gorm:"foreignKey:PhotoID"`
}

func (QueueItem) TableName() string {
	return "rating_queue"
}

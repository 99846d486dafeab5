package models

import "time"

type User struct {
	BaseModel
	Email            string     `gorm:"uniqueIndex;not null"`
	PasswordHash     string     `gorm:"not null"`
	Role             UserRole   `gorm:"type:varchar(20);default:'user'"`
	Status           UserStatus `gorm:"type:varchar(20);default:'active'"`
	BirthYear        *int
	Gender           *Gender `gorm:"type:varchar(10)"`
	Country          *string
	Language         string `gorm:"default:'ru'"`
	IsOnboarded      bool   `gorm:"default:false"`
	IsVerified       bool   `gorm:"default:false"`
	VerificationCode string

	// Relations
	Photos        []Photo      `gorm:"foreignKey:UserID"`
	Stats         *RatingStats `gorm:"foreignKey:UserID"`
	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID"`
}

type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"not null;index"`
	Token     string    `gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
}

// AgeRange возвращает возрастную корзину для отображения оценщику.
// Точный год рождения наружу не отдаем.
func (u *User) AgeRange(currentYear int) string {
	if u.BirthYear == nil {
		return ""
	}
	age := currentYear - *u.BirthYear

	switch {
	case age < 20:
		return "18-19"
	case age < 25:
		return "20-24"
	case age < 30:
		return "25-29"
	case age < 35:
		return "30-34"
	case age < 40:
		return "35-39"
	case age < 50:
		return "40-49"
	default:
		return "50+"
	}
}

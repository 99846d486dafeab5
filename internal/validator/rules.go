package validator

import (
	"log"

	"github.com/go-playground/validator/v10"

	"ratery_backend/internal/models"
)

// registerCustomRules регистрирует все кастомные функции валидации в
// переданном экземпляре валидатора.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Если правило не удалось зарегистрировать, приложение
			// не должно запускаться.
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// 'is-gender': Проверяет пол пользователя
	mustRegister("is-gender", validateGender)

	// 'is-photo-status': Проверяет статус модерации фото
	mustRegister("is-photo-status", validatePhotoStatus)

	// 'is-rating-score': Проверяет диапазон оценки
	mustRegister("is-rating-score", validateRatingScore)
}

// --- Функции валидации ---

func validateGender(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Не проверяем пустые значения, для этого есть 'required'
	}
	switch models.Gender(value) {
	case models.GenderMale, models.GenderFemale, models.GenderOther:
		return true
	default:
		return false
	}
}

func validatePhotoStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.PhotoStatus(value) {
	case models.PhotoStatusPending, models.PhotoStatusApproved, models.PhotoStatusRejected:
		return true
	default:
		return false
	}
}

func validateRatingScore(fl validator.FieldLevel) bool {
	value := fl.Field().Float()
	if value == 0 {
		return true // 'required' обрабатывает пустые
	}
	return models.ValidScore(value)
}

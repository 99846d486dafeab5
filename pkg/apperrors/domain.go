package apperrors

import (
	"net/http"
)

/*
Фабрики и предопределенные переменные
для ошибок бизнес-логики и домена оценивания.
*/

// ErrNotFound - фабрика для ошибки "не найдено" (404).
// Используется, когда ошибка репозитория (типа gorm.ErrRecordNotFound)
// должна быть преобразована в AppError.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists - фабрика для ошибки "уже существует" (409)
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrConflict - общая фабрика для конфликтов (409)
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrInvalidOperation - фабрика для невалидных операций (400)
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// --- Rating pipeline ---

// ErrNoCandidates - очередь пуста и генерация не нашла кандидатов.
// Хендлер превращает это в пустое состояние, а не в ошибку.
var ErrNoCandidates = New(
	CodeNoCandidates,
	"rating",
	"No targets available to rate",
	http.StatusNotFound,
)

// ErrScoreOutOfRange - оценка вне диапазона [1,10].
// Валидация теперь серверная, а не только на клиенте.
var ErrScoreOutOfRange = New(
	CodeValidationFailed,
	"rating",
	"Score must be between 1 and 10",
	http.StatusBadRequest,
)

// ErrSelfRatingNotAllowed - попытка оценить собственное фото
var ErrSelfRatingNotAllowed = New(
	CodeInvalidOperation,
	"rating",
	"You cannot rate your own photo",
	http.StatusBadRequest,
)

// ErrQueueRowConsumed - строка очереди уже в терминальном состоянии
// (конкурентная вкладка успела раньше). Клиент перезагружает цель.
var ErrQueueRowConsumed = New(
	CodeConflict,
	"rating",
	"This target has already been rated or skipped",
	http.StatusConflict,
)

// ErrDuplicateRating - оценка для этой пары (оценщик, фото) уже существует
var ErrDuplicateRating = New(
	CodeConflict,
	"rating",
	"You have already rated this photo",
	http.StatusConflict,
)

// --- Photos & uploads ---

// ErrFileTooLarge - файл превышает максимальный размер
var ErrFileTooLarge = New(
	CodeValidationFailed,
	"upload",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge,
)

// ErrInvalidFileType - MIME-тип файла не разрешен
var ErrInvalidFileType = New(
	CodeValidationFailed,
	"upload",
	"The provided file type is not allowed",
	http.StatusUnsupportedMediaType,
)

// ErrNoActivePhoto - у пользователя нет активного фото
var ErrNoActivePhoto = New(
	CodeNotFound,
	"photo",
	"No active photo",
	http.StatusNotFound,
)

// ErrPhotoNotPending - модерация возможна только для фото в статусе pending
var ErrPhotoNotPending = New(
	CodeInvalidOperation,
	"photo",
	"Only pending photos can be moderated",
	http.StatusConflict,
)

// --- Auth & users ---

// ErrWeakPassword - пароль слишком слабый
var ErrWeakPassword = New(
	CodeValidationFailed,
	"validation",
	"Password is too weak. Minimum 6 characters required.",
	http.StatusBadRequest,
)

// ErrEmailAlreadyExists - email уже используется
var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

// ErrInvalidCredentials - неверный email или пароль
var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

// ErrInvalidToken - неверный или просроченный токен (access, refresh, verify)
var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

// ErrInsufficientPermissions - не-админ пытается выполнить админ-действие
var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

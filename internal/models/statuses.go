package models

type UserRole string
type UserStatus string
type Gender string
type PhotoStatus string
type QueueState string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"

	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"

	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"

	PhotoStatusPending  PhotoStatus = "pending"
	PhotoStatusApproved PhotoStatus = "approved"
	PhotoStatusRejected PhotoStatus = "rejected"

	// Жизненный цикл строки очереди: created -> shown -> (rated | skipped).
	// Один enum вместо трех независимых булевых флагов, чтобы
	// противоречивые комбинации были непредставимы.
	QueueStatePending QueueState = "pending"
	QueueStateShown   QueueState = "shown"
	QueueStateRated   QueueState = "rated"
	QueueStateSkipped QueueState = "skipped"
)

// IsTerminal - строка в терминальном состоянии больше никогда
// не возвращается селектором
func (s QueueState) IsTerminal() bool {
	return s == QueueStateRated || s == QueueStateSkipped
}

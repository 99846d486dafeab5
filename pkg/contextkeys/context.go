package contextkeys

// Кастомный тип, чтобы избежать коллизий ключей в context
type contextKey string

// DBContextKey - ключ, по которому храним *gorm.DB (пул или транзакцию) в context
const DBContextKey = contextKey("db")

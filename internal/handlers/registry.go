package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler   *AuthHandler
	UserHandler   *UserHandler
	PhotoHandler  *PhotoHandler
	RatingHandler *RatingHandler
	StatsHandler  *StatsHandler
	FileHandler   *FileHandler
}

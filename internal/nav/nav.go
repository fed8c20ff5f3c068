// nav — символические маршруты оболочки и чистая функция выбора экрана
// по auth-состоянию. UI-слой сам решает, как отрисовать каждый Route;
// ядро оперирует только логическими назначениями.
package nav

// Route — логическое назначение навигации.
type Route string

const (
	RouteLoading        Route = "loading"
	RouteOnboarding     Route = "onboarding"
	RouteSignIn         Route = "sign-in"
	RouteSignUp         Route = "sign-up"
	RouteForgotPassword Route = "forgot-password"
	RouteResetPassword  Route = "reset-password"
	RouteMainApp        Route = "main-app"
)

// Navigator выполняет переход, замещая текущий экран.
// Реализуется UI-оболочкой; в тестах подменяется моком.
type Navigator interface {
	Replace(route Route)
}

// Decide выбирает экран для входного маршрута приложения.
//
// Приоритет строгий: пока идёт начальная загрузка — ничего не решаем;
// recovery-режим всегда перекрывает аутентификацию (валидная сессия во
// время сброса пароля существует только ради вызова смены пароля и не
// даёт доступа в основное приложение).
func Decide(isLoading, isAuthenticated, isRecoveryMode bool) Route {
	switch {
	case isLoading:
		return RouteLoading
	case isRecoveryMode:
		return RouteResetPassword
	case isAuthenticated:
		return RouteMainApp
	default:
		return RouteOnboarding
	}
}

// AuthGroupReachable — доступна ли группа auth-экранов
// (onboarding, sign-in, sign-up, forgot/reset-password).
func AuthGroupReachable(isAuthenticated, isRecoveryMode bool) bool {
	return !isAuthenticated || isRecoveryMode
}

// MainGroupReachable — доступна ли группа экранов основного приложения.
func MainGroupReachable(isAuthenticated, isRecoveryMode bool) bool {
	return isAuthenticated && !isRecoveryMode
}

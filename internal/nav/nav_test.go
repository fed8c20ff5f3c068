package nav

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecide_Priority(t *testing.T) {
	t.Parallel()

	// Загрузка перекрывает всё.
	require.Equal(t, RouteLoading, Decide(true, false, false))
	require.Equal(t, RouteLoading, Decide(true, true, false))
	require.Equal(t, RouteLoading, Decide(true, false, true))

	// Recovery перекрывает аутентификацию.
	require.Equal(t, RouteResetPassword, Decide(false, false, true))
	require.Equal(t, RouteResetPassword, Decide(false, true, true))

	require.Equal(t, RouteMainApp, Decide(false, true, false))
	require.Equal(t, RouteOnboarding, Decide(false, false, false))
}

// Для каждой пары (isAuthenticated, isRecoveryMode) достижима ровно одна
// из двух групп экранов — пользователь никогда не остаётся без маршрута.
func TestRouteGroups_ExactlyOneReachable(t *testing.T) {
	t.Parallel()

	for _, auth := range []bool{false, true} {
		for _, rec := range []bool{false, true} {
			authGroup := AuthGroupReachable(auth, rec)
			mainGroup := MainGroupReachable(auth, rec)

			require.NotEqual(t, authGroup, mainGroup,
				"auth=%v recovery=%v: ровно одна группа должна быть достижима", auth, rec)
			require.True(t, authGroup || mainGroup,
				"auth=%v recovery=%v: хотя бы одна группа должна быть достижима", auth, rec)
		}
	}
}

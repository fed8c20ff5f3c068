package deeplink

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsAuthLink_InvalidScheme(t *testing.T) {
	t.Parallel()

	p := NewParser("kurusapp")

	// Несовпадение схемы дисквалифицирует ссылку независимо от параметров.
	urls := []string{
		"https://evil.example/auth/callback?access_token=a&refresh_token=b",
		"exp://127.0.0.1:8081/--/auth/callback?access_token=a&refresh_token=b",
		"otherapp://auth/callback?type=recovery",
		"kurusapp:/auth/callback?access_token=a", // без "//"
	}
	for _, u := range urls {
		require.False(t, p.IsAuthLink(u), "url: %s", u)
	}
}

func TestIsAuthLink_NoAuthParams(t *testing.T) {
	t.Parallel()

	p := NewParser("kurusapp")

	require.False(t, p.IsAuthLink("kurusapp://home"))
	require.False(t, p.IsAuthLink("kurusapp://auth/callback?foo=bar&type=email"))
}

func TestIsAuthLink_RecognizedParams(t *testing.T) {
	t.Parallel()

	p := NewParser("kurusapp")

	urls := []string{
		"kurusapp://auth/callback?access_token=X&refresh_token=Y",
		"kurusapp://auth/callback#access_token=X&refresh_token=Y",
		"kurusapp://verify?token_hash=abc&type=email",
		"kurusapp://reset-password?type=recovery",
		"kurusapp://auth/callback?type=signup",
		"kurusapp://auth/callback?error=access_denied",
		"kurusapp://auth/callback?error_code=otp_expired",
	}
	for _, u := range urls {
		require.True(t, p.IsAuthLink(u), "url: %s", u)
	}
}

func TestIsAuthLink_DevScheme(t *testing.T) {
	t.Parallel()

	p := NewParser("exp")

	require.True(t, p.IsAuthLink("exp://127.0.0.1:8081/--/auth/callback?access_token=a&refresh_token=b"))
	require.False(t, p.IsAuthLink("kurusapp://auth/callback?access_token=a&refresh_token=b"))
}

func TestParse_QueryAndFragment(t *testing.T) {
	t.Parallel()

	p := NewParser("kurusapp")

	link, err := p.Parse("kurusapp://reset-password?access_token=abc&refresh_token=def&type=recovery")
	require.NoError(t, err)
	require.Equal(t, "abc", link.AccessToken)
	require.Equal(t, "def", link.RefreshToken)
	require.Equal(t, "recovery", link.Type)
	require.False(t, link.HasError())

	// Провайдер может положить токены во фрагмент.
	link, err = p.Parse("kurusapp://auth/callback#access_token=abc&refresh_token=def&type=signup")
	require.NoError(t, err)
	require.Equal(t, "abc", link.AccessToken)
	require.Equal(t, "def", link.RefreshToken)
	require.Equal(t, "signup", link.Type)
}

func TestParse_ErrorParams(t *testing.T) {
	t.Parallel()

	p := NewParser("kurusapp")

	link, err := p.Parse("kurusapp://auth/callback?error=access_denied&error_code=otp_expired&error_description=Email+link+expired")
	require.NoError(t, err)
	require.True(t, link.HasError())
	// error_code точнее, чем error.
	require.Equal(t, "otp_expired", link.ErrorCode)
	// Литеральные '+' декодируются в пробелы.
	require.Equal(t, "Email link expired", link.ErrorDescription)

	link, err = p.Parse("kurusapp://auth/callback?error=access_denied")
	require.NoError(t, err)
	require.Equal(t, "access_denied", link.ErrorCode)
}

func TestParse_TokenHash(t *testing.T) {
	t.Parallel()

	p := NewParser("kurusapp")

	link, err := p.Parse("kurusapp://verify?token_hash=deadbeef&type=recovery")
	require.NoError(t, err)
	require.Equal(t, "deadbeef", link.TokenHash)
	require.Equal(t, "recovery", link.Type)
}

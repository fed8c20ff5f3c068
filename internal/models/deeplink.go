package models

// AuthLinkType — закрытое перечисление типов auth deep link'ов.
// Любое другое значение параметра type трактуется как LinkUnspecified:
// при успешной верификации пользователь попадает в основное приложение.
type AuthLinkType string

const (
	LinkUnspecified AuthLinkType = ""
	// LinkRecovery — сброс пароля.
	LinkRecovery AuthLinkType = "recovery"
	// LinkSignup — подтверждение e-mail после регистрации.
	LinkSignup AuthLinkType = "signup"
	// LinkMagicLink — вход по magic link.
	LinkMagicLink AuthLinkType = "magiclink"
	// LinkInvite — приглашение пользователя.
	LinkInvite AuthLinkType = "invite"
)

// KnownAuthLinkType сообщает, входит ли значение в закрытое перечисление.
func KnownAuthLinkType(s string) (AuthLinkType, bool) {
	switch t := AuthLinkType(s); t {
	case LinkRecovery, LinkSignup, LinkMagicLink, LinkInvite:
		return t, true
	}

	return LinkUnspecified, false
}

// ParsedLink — распарсенные auth-параметры deep link'а
// (query string или фрагмент). Живёт только внутри обработчика,
// никогда не персистится.
type ParsedLink struct {
	AccessToken      string
	RefreshToken     string
	TokenHash        string
	Type             string
	ErrorCode        string
	ErrorDescription string
}

// HasError сообщает, содержит ли ссылка индикатор ошибки провайдера
// (например, otp_expired или access_denied).
func (p ParsedLink) HasError() bool {
	return p.ErrorCode != ""
}

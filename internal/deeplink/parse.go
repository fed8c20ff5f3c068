// deeplink — классификация и обработка входящих deep link'ов
// аутентификации. Ссылка может прийти дважды (ранний перехват до
// монтирования оболочки и слушатель внутри неё), поэтому обработка
// идемпотентна: повторный прогон уже потреблённых одноразовых токенов
// деградирует к неуспеху без навигации и без порчи состояния.
package deeplink

import (
	"net/url"
	"strings"

	"github.com/kurusapp/kurus-mobile/internal/models"
)

// Parser классифицирует и разбирает ссылки для одной валидной схемы.
// В работающем экземпляре схема ровно одна: dev-хост или
// продакшен-схема приложения (см. config.ActiveScheme).
type Parser struct {
	scheme string
}

// NewParser создаёт парсер для схемы scheme (без "://").
func NewParser(scheme string) *Parser {
	return &Parser{scheme: scheme}
}

// validScheme проверяет, что ссылка начинается с валидной схемы.
func (p *Parser) validScheme(raw string) bool {
	return strings.HasPrefix(raw, p.scheme+"://")
}

// IsAuthLink сообщает, является ли ссылка auth-колбэком: валидная схема
// плюс хотя бы один распознаваемый auth-параметр. Несовпадение схемы
// дисквалифицирует ссылку независимо от параметров.
func (p *Parser) IsAuthLink(raw string) bool {
	if !p.validScheme(raw) {
		return false
	}

	return strings.Contains(raw, "access_token=") ||
		strings.Contains(raw, "refresh_token=") ||
		strings.Contains(raw, "token_hash=") ||
		strings.Contains(raw, "type=recovery") ||
		strings.Contains(raw, "type=signup") ||
		strings.Contains(raw, "error=") ||
		strings.Contains(raw, "error_code=")
}

// Parse извлекает auth-параметры из query string или фрагмента
// (что присутствует). Литеральные '+' в error_description
// декодируются в пробелы.
func (p *Parser) Parse(raw string) (models.ParsedLink, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return models.ParsedLink{}, err
	}

	// Провайдер кладёт токены либо в query, либо во фрагмент после '#'.
	q := u.RawQuery
	if u.Fragment != "" {
		q = u.Fragment
	}

	params, err := url.ParseQuery(q)
	if err != nil {
		return models.ParsedLink{}, err
	}

	link := models.ParsedLink{
		AccessToken:  params.Get("access_token"),
		RefreshToken: params.Get("refresh_token"),
		TokenHash:    params.Get("token_hash"),
		Type:         params.Get("type"),
	}

	// error_code точнее, чем error; берём первый непустой.
	if code := params.Get("error_code"); code != "" {
		link.ErrorCode = code
	} else if e := params.Get("error"); e != "" {
		link.ErrorCode = e
	}

	if desc := params.Get("error_description"); desc != "" {
		link.ErrorDescription = strings.ReplaceAll(desc, "+", " ")
	}

	return link, nil
}

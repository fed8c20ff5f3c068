// ui — headless-оболочка экранов приложения.
//
// Чистая презентация: собственного состояния, кроме текущего маршрута,
// у оболочки нет. Экраны табов — пустые заглушки (финансовые функции
// ещё не реализованы), auth-экраны валидируют формы и дергают действия
// контроллера. Инварианты живут уровнем ниже — в nav, session и deeplink.
package ui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/kurusapp/kurus-mobile/internal/nav"
	"github.com/kurusapp/kurus-mobile/internal/session"
	"github.com/kurusapp/kurus-mobile/internal/validate"
)

// Shell — корневой рендерер. Реализует nav.Navigator: обработчик
// deep link'ов и контроллер сессии навигируют через него.
type Shell struct {
	ctrl *session.Controller
	v    *validate.Validator
	out  io.Writer
	log  *slog.Logger

	mu    sync.Mutex
	route nav.Route
	slide int
}

// NewShell создаёт оболочку поверх контроллера и валидатора.
func NewShell(ctrl *session.Controller, v *validate.Validator, out io.Writer, log *slog.Logger) *Shell {
	if log == nil {
		log = slog.Default()
	}

	return &Shell{
		ctrl:  ctrl,
		v:     v,
		out:   out,
		log:   log,
		route: nav.RouteLoading,
	}
}

// Mount принимает первое навигационное решение входного маршрута
// (nav.Decide по текущему состоянию) и подписывает оболочку на
// изменения состояния для перерисовки.
func (s *Shell) Mount() func() {
	st := s.ctrl.State()
	s.Replace(nav.Decide(st.IsLoading, st.IsAuthenticated(), st.IsRecoveryMode))

	return s.ctrl.Subscribe(func(session.State) {
		s.mu.Lock()
		route := s.route
		s.mu.Unlock()

		s.render(route)
	})
}

// Replace — nav.Navigator: замещает текущий экран.
func (s *Shell) Replace(route nav.Route) {
	s.mu.Lock()
	s.route = route
	if route != nav.RouteOnboarding {
		s.slide = 0
	}
	s.mu.Unlock()

	s.log.Debug("navigate", slog.String("route", string(route)))
	s.render(route)
}

// Route возвращает текущий маршрут.
func (s *Shell) Route() nav.Route {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.route
}

// alert — блокирующий диалог с общим сообщением (без авторетрая:
// пользователь повторяет попытку вручную).
func (s *Shell) alert(title, message string) {
	fmt.Fprintf(s.out, "\n[!] %s\n    %s\n", title, message)
}

// SubmitSignIn валидирует форму входа и выполняет вход.
// Невалидная форма блокирует отправку: удалённый вызов не происходит.
func (s *Shell) SubmitSignIn(ctx context.Context, email, password string) bool {
	errs := s.v.SignIn(email, password)
	if !errs.OK() {
		s.renderFieldErrors(errs.Email, errs.Password)
		return false
	}

	if err := s.ctrl.SignIn(ctx, email, password); err != nil {
		s.log.Debug("sign_in_failed", slog.String("err", err.Error()))
		s.alert("Giriş Başarısız", "E-posta veya şifre hatalı. Lütfen tekrar deneyin.")
		return false
	}

	return true
}

// SubmitSignUp валидирует форму регистрации и регистрирует пользователя.
func (s *Shell) SubmitSignUp(ctx context.Context, fullName, email, password string, acceptedTerms bool) bool {
	errs := s.v.SignUp(fullName, email, password, acceptedTerms)
	if !errs.OK() {
		s.renderFieldErrors(errs.FullName, errs.Email, errs.Password, errs.Terms)
		return false
	}

	if err := s.ctrl.SignUp(ctx, email, password, fullName); err != nil {
		s.log.Debug("sign_up_failed", slog.String("err", err.Error()))
		s.alert("Kayıt Başarısız", "Kayıt işlemi sırasında bir hata oluştu. Lütfen tekrar deneyin.")
		return false
	}

	s.alert("Kayıt Başarılı", "E-posta adresinize bir doğrulama bağlantısı gönderdik. Lütfen e-postanızı kontrol edin.")
	s.Replace(nav.RouteSignIn)
	return true
}

// SubmitForgotPassword валидирует e-mail и запрашивает recovery-письмо.
func (s *Shell) SubmitForgotPassword(ctx context.Context, email string) bool {
	if msg := s.v.Email(email); msg != "" {
		s.renderFieldErrors(msg)
		return false
	}

	if err := s.ctrl.ResetPassword(ctx, email); err != nil {
		s.log.Debug("reset_password_failed", slog.String("err", err.Error()))
		s.alert("Hata", "Şifre sıfırlama bağlantısı gönderilemedi. Lütfen tekrar deneyin.")
		return false
	}

	fmt.Fprintf(s.out, "\nŞifre sıfırlama bağlantısı %s adresine gönderildi.\n", email)
	return true
}

// SubmitResetPassword валидирует и устанавливает новый пароль.
// Успех завершает recovery-поток и возвращает на экран входа.
func (s *Shell) SubmitResetPassword(ctx context.Context, password, confirm string) bool {
	errs := s.v.ResetPassword(password, confirm)
	if !errs.OK() {
		s.renderFieldErrors(errs.Password, errs.ConfirmPassword)
		return false
	}

	if err := s.ctrl.UpdatePassword(ctx, password); err != nil {
		s.log.Debug("update_password_failed", slog.String("err", err.Error()))
		s.alert("Hata", "Şifre güncellenemedi. Lütfen tekrar deneyin.")
		return false
	}

	fmt.Fprintln(s.out, "\nŞifren başarıyla güncellendi. Artık yeni şifrenle giriş yapabilirsin.")
	s.Replace(nav.RouteSignIn)
	return true
}

// NextSlide листает onboarding-карусель; после последнего слайда —
// переход на экран входа.
func (s *Shell) NextSlide() {
	s.mu.Lock()
	if s.slide < len(onboardingSlides)-1 {
		s.slide++
		s.mu.Unlock()

		s.render(nav.RouteOnboarding)
		return
	}
	s.mu.Unlock()

	s.Replace(nav.RouteSignIn)
}

// SkipOnboarding — кнопка "Atla".
func (s *Shell) SkipOnboarding() {
	s.Replace(nav.RouteSignIn)
}

func (s *Shell) renderFieldErrors(msgs ...string) {
	for _, m := range msgs {
		if m != "" {
			fmt.Fprintf(s.out, "  - %s\n", m)
		}
	}
}

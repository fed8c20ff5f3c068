// validate — клиентская валидация auth-форм.
//
// Сообщения показываются пользователю и локализованы (турецкий).
// Непустой набор ошибок блокирует отправку формы: до identity-провайдера
// невалидный ввод не доходит.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

// Пороговые значения по умолчанию (переопределяются конфигом).
const (
	DefaultMinPasswordLength = 6
	DefaultMinNameLength     = 2
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Сообщения об ошибках.
const (
	MsgEmailRequired   = "E-posta adresi gerekli"
	MsgEmailInvalid    = "Geçerli bir e-posta adresi girin"
	MsgPasswordReq     = "Şifre gerekli"
	MsgNewPasswordReq  = "Yeni şifre gerekli"
	MsgConfirmReq      = "Şifre tekrarı gerekli"
	MsgPasswordsDiffer = "Şifreler eşleşmiyor"
	MsgNameRequired    = "Ad soyad gerekli"
	MsgTermsRequired   = "Kullanım koşullarını kabul etmelisiniz"
)

// MsgPasswordTooShort — сообщение про минимальную длину пароля.
func MsgPasswordTooShort(min int) string {
	return fmt.Sprintf("Şifre en az %d karakter olmalı", min)
}

// MsgNameTooShort — сообщение про минимальную длину имени.
func MsgNameTooShort(min int) string {
	return fmt.Sprintf("Ad soyad en az %d karakter olmalı", min)
}

// Validator хранит пороги валидации.
type Validator struct {
	minPassword int
	minName     int
}

// New создаёт валидатор; неположительные пороги заменяются дефолтами.
func New(minPassword, minName int) *Validator {
	if minPassword <= 0 {
		minPassword = DefaultMinPasswordLength
	}
	if minName <= 0 {
		minName = DefaultMinNameLength
	}

	return &Validator{minPassword: minPassword, minName: minName}
}

// SignInErrors — ошибки формы входа (пустые поля — ошибок нет).
type SignInErrors struct {
	Email    string
	Password string
}

// OK сообщает, можно ли отправлять форму.
func (e SignInErrors) OK() bool { return e == SignInErrors{} }

// SignIn валидирует форму входа.
func (v *Validator) SignIn(email, password string) SignInErrors {
	var errs SignInErrors

	errs.Email = v.email(email)
	errs.Password = v.password(password, MsgPasswordReq)

	return errs
}

// SignUpErrors — ошибки формы регистрации.
type SignUpErrors struct {
	FullName string
	Email    string
	Password string
	Terms    string
}

func (e SignUpErrors) OK() bool { return e == SignUpErrors{} }

// SignUp валидирует форму регистрации.
func (v *Validator) SignUp(fullName, email, password string, acceptedTerms bool) SignUpErrors {
	var errs SignUpErrors

	name := strings.TrimSpace(fullName)
	switch {
	case name == "":
		errs.FullName = MsgNameRequired
	case len([]rune(name)) < v.minName:
		errs.FullName = MsgNameTooShort(v.minName)
	}

	errs.Email = v.email(email)
	errs.Password = v.password(password, MsgPasswordReq)

	if !acceptedTerms {
		errs.Terms = MsgTermsRequired
	}

	return errs
}

// Email валидирует одиночное поле e-mail (форма "забыли пароль").
// Пустая строка в ответе означает "ошибок нет".
func (v *Validator) Email(email string) string {
	return v.email(email)
}

// ResetPasswordErrors — ошибки формы смены пароля.
type ResetPasswordErrors struct {
	Password        string
	ConfirmPassword string
}

func (e ResetPasswordErrors) OK() bool { return e == ResetPasswordErrors{} }

// ResetPassword валидирует форму смены пароля.
func (v *Validator) ResetPassword(password, confirm string) ResetPasswordErrors {
	var errs ResetPasswordErrors

	errs.Password = v.password(password, MsgNewPasswordReq)

	switch {
	case confirm == "":
		errs.ConfirmPassword = MsgConfirmReq
	case password != confirm:
		errs.ConfirmPassword = MsgPasswordsDiffer
	}

	return errs
}

func (v *Validator) email(email string) string {
	trimmed := strings.TrimSpace(email)
	switch {
	case trimmed == "":
		return MsgEmailRequired
	case !emailRe.MatchString(trimmed):
		return MsgEmailInvalid
	}

	return ""
}

func (v *Validator) password(password, requiredMsg string) string {
	switch {
	case password == "":
		return requiredMsg
	case len([]rune(password)) < v.minPassword:
		return MsgPasswordTooShort(v.minPassword)
	}

	return ""
}

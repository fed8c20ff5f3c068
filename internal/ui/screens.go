package ui

import (
	"fmt"

	"github.com/kurusapp/kurus-mobile/internal/nav"
)

// onboardingSlide — один слайд приветственной карусели.
type onboardingSlide struct {
	Title       string
	Description string
}

var onboardingSlides = []onboardingSlide{
	{
		Title:       "Harcamalarını Takip Et",
		Description: "Tüm gelir ve giderlerini tek bir yerden kolayca takip et. Her işlemi kategorize ederek nereye para harcadığını gör.",
	},
	{
		Title:       "Bütçe Hedeflerini Belirle",
		Description: "Kategorilere göre bütçe hedefleri oluştur ve harcamalarını kontrol altında tut. Limitlerini aştığında bildirim al.",
	},
	{
		Title:       "Finansal Özgürlüğe Ulaş",
		Description: "Detaylı raporlar ve grafiklerle finansal durumunu analiz et. Birikimlerini artır, hedeflerine ulaş.",
	},
}

// render отрисовывает текущий экран. Табы — пустые заглушки:
// транзакции, бюджеты и отчёты ещё не реализованы.
func (s *Shell) render(route nav.Route) {
	st := s.ctrl.State()

	switch route {
	case nav.RouteLoading:
		// Во время бутстрапа не рисуем ничего, чтобы не мигать.

	case nav.RouteOnboarding:
		s.mu.Lock()
		slide := onboardingSlides[s.slide]
		last := s.slide == len(onboardingSlides)-1
		s.mu.Unlock()

		next := "Devam Et"
		if last {
			next = "Başla"
		}

		fmt.Fprintf(s.out, "\n== %s ==\n%s\n[%s] [Atla]\n", slide.Title, slide.Description, next)

	case nav.RouteSignIn:
		fmt.Fprintln(s.out, "\n== Giriş Yap ==\nE-posta / Şifre")

	case nav.RouteSignUp:
		fmt.Fprintln(s.out, "\n== Kayıt Ol ==\nAd Soyad / E-posta / Şifre")

	case nav.RouteForgotPassword:
		fmt.Fprintln(s.out, "\n== Şifremi Unuttum ==\nE-posta")

	case nav.RouteResetPassword:
		fmt.Fprintln(s.out, "\n== Yeni Şifre Belirle ==\nYeni Şifre / Şifre Tekrarı")

	case nav.RouteMainApp:
		name := "Kullanıcı"
		if st.Session != nil && st.Session.User.FullName != "" {
			name = st.Session.User.FullName
		}

		fmt.Fprintf(s.out, "\nMerhaba 👋 %s\n", name)
		fmt.Fprintln(s.out, "[Ana Sayfa] Henüz işlem yok — İlk işlemini ekleyerek harcamalarını takip etmeye başla")
		fmt.Fprintln(s.out, "[Bütçeler] Henüz bütçe yok — Bütçe oluşturarak harcama hedeflerini takip et")
		fmt.Fprintln(s.out, "[Raporlar] Rapor için veri yok — İşlem ekledikten sonra detaylı raporlarını burada görebilirsin")
		fmt.Fprintln(s.out, "[Profil] Ad, e-posta, şifre · Hesaplarım · Hatırlatma ayarları · Çıkış Yap")
	}
}

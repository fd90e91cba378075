package helpers

import (
	"fmt"
	"html"
	"time"
)

func BuildSimpleHTML(title, body string) string {
	return fmt.Sprintf(`
<html>
  <body style="font-family:Arial,sans-serif; background:#f9f9f9;">
    <table width="100%%" cellpadding="0" cellspacing="0" bgcolor="#f9f9f9">
      <tr>
        <td align="center" style="padding:32px 0;">
          <table width="500" bgcolor="#fff" cellpadding="24" cellspacing="0" style="border-radius:8px; box-shadow:0 1px 6px #eee;">
            <tr>
              <td>
                <h2 style="color:#2d74da; margin-top:0;">%s</h2>
                <div style="font-size:16px; color:#222;">%s</div>
                <hr style="margin:32px 0 16px 0; border:0; border-top:1px solid #eee;">
                <div style="font-size:12px; color:#999;">Письмо сгенерировано автоматически. Не отвечайте на него.</div>
              </td>
            </tr>
          </table>
        </td>
      </tr>
    </table>
  </body>
</html>
`, html.EscapeString(title), body)
}

// BuildPasswordResetHTML — письмо со ссылкой на сброс пароля.
func BuildPasswordResetHTML(resetLink string, ttl time.Duration) string {
	body := fmt.Sprintf(`
<p>Кто-то (возможно, вы) запросил сброс пароля.</p>
<p>
  <a href="%s" style="display:inline-block;padding:12px 24px;background:#2d74da;color:#fff;text-decoration:none;border-radius:5px;font-weight:bold;margin-top:16px;">
    Задать новый пароль
  </a>
</p>
<p style="font-size:14px;color:#555;">Ссылка действует %d мин. и сработает только один раз.</p>
<p style="font-size:14px;color:#555;">Если вы ничего не запрашивали, просто проигнорируйте письмо.</p>
`, html.EscapeString(resetLink), int(ttl.Minutes()))
	return BuildSimpleHTML("Сброс пароля", body)
}

// BuildPasswordChangedHTML — уведомление после успешной смены пароля.
func BuildPasswordChangedHTML(at time.Time) string {
	body := fmt.Sprintf(`
<p>Пароль от вашей учётной записи изменён %s (UTC).</p>
<p style="font-size:14px;color:#555;">Если это были не вы, срочно восстановите доступ через «Забыли пароль».</p>
`, at.UTC().Format("02.01.2006 15:04"))
	return BuildSimpleHTML("Пароль изменён", body)
}

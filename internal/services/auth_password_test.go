package services

import (
	"context"
	"dentalcms/internal/utils"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPasswordService(expose bool) (*PasswordService, *fakeUsers, *fakeMailer) {
	users := newFakeUsers(mustUser(7, "ivanov", "Ivanov@Clinic.example", "old-password", "user"))
	ledger, _, _ := newTestLedger()
	mailer := &fakeMailer{}
	return NewPasswordService(ledger, users, mailer, "https://dental.example/", expose), users, mailer
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func TestRequestReset_UnknownEmailIsSilent(t *testing.T) {
	svc, _, mailer := newTestPasswordService(true)

	assert.Empty(t, svc.RequestReset(context.Background(), "nobody@example.com"))
	assert.Empty(t, mailer.resets)
}

func TestRequestReset_SendsLink(t *testing.T) {
	svc, _, mailer := newTestPasswordService(false)

	devToken := svc.RequestReset(context.Background(), "  ivanov@clinic.example ")
	assert.Empty(t, devToken, "token must not be exposed in prod")

	require.Len(t, mailer.resets, 1)
	assert.Equal(t, "Ivanov@Clinic.example", mailer.resets[0].to)
	assert.True(t, strings.HasPrefix(mailer.resets[0].link, "https://dental.example/reset?token="))
	assert.NotEmpty(t, tokenFromLink(t, mailer.resets[0].link))
}

func TestRequestReset_ExposesTokenOutsideProd(t *testing.T) {
	svc, _, mailer := newTestPasswordService(true)

	devToken := svc.RequestReset(context.Background(), "ivanov@clinic.example")
	require.NotEmpty(t, devToken)
	assert.Equal(t, devToken, tokenFromLink(t, mailer.resets[0].link))
}

func TestResetPassword_Success(t *testing.T) {
	svc, users, mailer := newTestPasswordService(true)
	ctx := context.Background()

	token := svc.RequestReset(ctx, "ivanov@clinic.example")
	require.NoError(t, svc.ResetPassword(ctx, token, "brand-new-password"))

	u, err := users.GetUserByID(ctx, 7)
	require.NoError(t, err)
	assert.True(t, utils.CheckPasswordHash("brand-new-password", u.PasswordHash))
	assert.Equal(t, []string{"Ivanov@Clinic.example"}, mailer.changed)
	require.Len(t, mailer.changedAt, 1)
	assert.True(t, mailer.changedAt[0].Equal(time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)), "время письма берётся из часов сервиса")

	// повторно тем же токеном нельзя
	err = svc.ResetPassword(ctx, token, "another-password")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestResetPassword_Rejections(t *testing.T) {
	svc, users, _ := newTestPasswordService(true)
	ctx := context.Background()
	token := svc.RequestReset(ctx, "ivanov@clinic.example")

	assert.ErrorIs(t, svc.ResetPassword(ctx, token, "short"), ErrPasswordTooShort)
	assert.ErrorIs(t, svc.ResetPassword(ctx, "forged-token", "long-enough-pw"), ErrInvalidResetToken)

	u, err := users.GetUserByID(ctx, 7)
	require.NoError(t, err)
	assert.True(t, utils.CheckPasswordHash("old-password", u.PasswordHash))

	// короткий пароль не должен был погасить токен
	assert.NoError(t, svc.ResetPassword(ctx, token, "long-enough-pw"))
}

func TestResetPassword_SupersededToken(t *testing.T) {
	svc, _, _ := newTestPasswordService(true)
	ctx := context.Background()

	first := svc.RequestReset(ctx, "ivanov@clinic.example")
	second := svc.RequestReset(ctx, "ivanov@clinic.example")

	assert.ErrorIs(t, svc.ResetPassword(ctx, first, "long-enough-pw"), ErrInvalidResetToken)
	assert.NoError(t, svc.ResetPassword(ctx, second, "long-enough-pw"))
}

func TestResetPassword_ConcurrentConfirmsSingleSuccess(t *testing.T) {
	svc, _, _ := newTestPasswordService(true)
	ctx := context.Background()
	token := svc.RequestReset(ctx, "ivanov@clinic.example")

	var ok int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if svc.ResetPassword(ctx, token, "long-enough-pw") == nil {
				atomic.AddInt64(&ok, 1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, ok)
}

func TestChangePassword(t *testing.T) {
	svc, users, _ := newTestPasswordService(true)
	ctx := context.Background()

	assert.ErrorIs(t, svc.ChangePassword(ctx, 7, "wrong", "long-enough-pw"), ErrOldPasswordWrong)
	assert.ErrorIs(t, svc.ChangePassword(ctx, 7, "old-password", "short"), ErrPasswordTooShort)
	assert.Error(t, svc.ChangePassword(ctx, 99, "old-password", "long-enough-pw"))

	require.NoError(t, svc.ChangePassword(ctx, 7, "old-password", "long-enough-pw"))
	u, err := users.GetUserByID(ctx, 7)
	require.NoError(t, err)
	assert.True(t, utils.CheckPasswordHash("long-enough-pw", u.PasswordHash))
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "i***@clinic.example", MaskEmail("ivanov@clinic.example"))
	assert.Equal(t, "***", MaskEmail("@nodomain"))
	assert.Equal(t, "***", MaskEmail("plain"))
}

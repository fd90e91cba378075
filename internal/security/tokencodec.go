package security

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"dentalcms/internal/clock"

	"github.com/golang-jwt/jwt/v5"
)

const (
	FormatJWT    = "jwt"
	FormatLegacy = "legacy"
)

// Session — расшифрованный сессионный токен.
type Session struct {
	SubjectID string
	IssuedAt  time.Time
	Format    string
}

// Verifier — одна стратегия проверки токена. Стратегии перебираются по порядку,
// чтобы ввести или убрать формат достаточно было поправить список.
type Verifier interface {
	Name() string
	Verify(token string, maxAge time.Duration) (*Session, error)
}

// TokenCodec выпускает и проверяет сессионные токены.
type TokenCodec struct {
	clock     clock.Clock
	current   *jwtVerifier
	legacy    *legacyVerifier
	verifiers []Verifier
}

type CodecOption func(*TokenCodec)

// WithLegacy включает приём токенов старого неподписанного формата в Decode.
func WithLegacy(enabled bool) CodecOption {
	return func(c *TokenCodec) {
		if !enabled {
			c.verifiers = []Verifier{c.current}
		}
	}
}

func NewTokenCodec(secret []byte, clk clock.Clock, opts ...CodecOption) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token codec: empty secret")
	}
	if clk == nil {
		clk = clock.System{}
	}
	key := make([]byte, len(secret))
	copy(key, secret)

	c := &TokenCodec{
		clock:   clk,
		current: &jwtVerifier{secret: key, clock: clk},
		legacy:  &legacyVerifier{clock: clk},
	}
	c.verifiers = []Verifier{c.current, c.legacy}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue выпускает токен текущего формата (JWT HS256: sub, iat).
func (c *TokenCodec) Issue(subjectID string) (string, error) {
	if subjectID == "" {
		return "", errors.New("token codec: empty subject")
	}
	claims := jwt.RegisteredClaims{
		Subject:  subjectID,
		IssuedAt: jwt.NewNumericDate(c.clock.Now()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.current.secret)
}

// Verify проверяет только текущий формат.
func (c *TokenCodec) Verify(token string, maxAge time.Duration) (*Session, error) {
	return c.current.Verify(token, maxAge)
}

// VerifyLegacy проверяет только форму и срок старого формата. Подписи у него нет.
func (c *TokenCodec) VerifyLegacy(token string, maxAge time.Duration) (*Session, error) {
	return c.legacy.Verify(token, maxAge)
}

// Decode прогоняет токен через стратегии по порядку и возвращает первый успех.
// Если не подошла ни одна, возвращается самая содержательная ошибка:
// первая, которая не сводится к "токен не распознан".
func (c *TokenCodec) Decode(token string, maxAge time.Duration) (*Session, error) {
	var firstErr error
	for _, v := range c.verifiers {
		s, err := v.Verify(token, maxAge)
		if err == nil {
			return s, nil
		}
		if firstErr == nil || (errors.Is(firstErr, ErrUnauthenticated) && !errors.Is(err, ErrUnauthenticated)) {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = ErrUnauthenticated
	}
	return nil, firstErr
}

// Formats — имена включённых стратегий в порядке проверки.
func (c *TokenCodec) Formats() []string {
	out := make([]string, 0, len(c.verifiers))
	for _, v := range c.verifiers {
		out = append(out, v.Name())
	}
	return out
}

func checkAge(issuedAt, now time.Time, maxAge time.Duration) error {
	// граница включительная: возраст ровно maxAge ещё валиден
	if now.Sub(issuedAt) > maxAge {
		return ErrExpired
	}
	return nil
}

type jwtVerifier struct {
	secret []byte
	clock  clock.Clock
}

func (v *jwtVerifier) Name() string { return FormatJWT }

func (v *jwtVerifier) Verify(token string, maxAge time.Duration) (*Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrUnauthenticated
	}

	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.clock.Now),
		jwt.WithStrictDecoding(),
	)
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	default:
		// подпись, алгоритм, iat из будущего — всё это подделка или мусор
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if claims.Subject == "" || claims.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing sub or iat", ErrUnauthenticated)
	}
	issuedAt := claims.IssuedAt.Time
	if err := checkAge(issuedAt, v.clock.Now(), maxAge); err != nil {
		return nil, err
	}
	return &Session{SubjectID: claims.Subject, IssuedAt: issuedAt, Format: FormatJWT}, nil
}

// legacyPayload — формат токенов, выданных до перехода на подписанный JWT:
// base64url(JSON) без подписи.
type legacyPayload struct {
	UID string `json:"uid"`
	IAT int64  `json:"iat"`
}

type legacyVerifier struct {
	clock clock.Clock
}

func (v *legacyVerifier) Name() string { return FormatLegacy }

func (v *legacyVerifier) Verify(token string, maxAge time.Duration) (*Session, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(strings.TrimSpace(token), "="))
	if err != nil || len(raw) == 0 {
		return nil, ErrUnauthenticated
	}

	var p legacyPayload
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(p.UID) == "" || p.IAT <= 0 {
		return nil, ErrUnauthenticated
	}

	now := v.clock.Now()
	issuedAt := time.Unix(p.IAT, 0)
	if issuedAt.After(now) {
		return nil, ErrInvalid
	}
	if err := checkAge(issuedAt, now, maxAge); err != nil {
		return nil, err
	}
	return &Session{SubjectID: p.UID, IssuedAt: issuedAt, Format: FormatLegacy}, nil
}

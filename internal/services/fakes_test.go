package services

import (
	"context"
	"dentalcms/internal/models"
	"dentalcms/internal/repository"
	"dentalcms/internal/utils"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func init() {
	utils.BcryptCost = bcrypt.MinCost
}

// Мок-репозиторий пользователей
type fakeUsers struct {
	mu    sync.Mutex
	users map[int]*models.User
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{users: make(map[int]*models.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func mustUser(id int, username, email, password, role string) *models.User {
	hash, err := utils.HashPassword(password)
	if err != nil {
		panic(err)
	}
	return &models.User{ID: id, Username: username, FullName: "Dr. " + username, Email: email, PasswordHash: hash, Role: role}
}

func (f *fakeUsers) GetUserByID(_ context.Context, id int) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) UpdateUserPassword(_ context.Context, userID int, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

type fakeResetRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.PasswordResetToken
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{rows: make(map[int64]*models.PasswordResetToken)}
}

func (f *fakeResetRepo) ReplaceForUser(_ context.Context, userID int, tokenHash string, expiresAt time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, row := range f.rows {
		if row.UserID == userID {
			delete(f.rows, id)
		}
	}
	f.nextID++
	f.rows[f.nextID] = &models.PasswordResetToken{ID: f.nextID, UserID: userID, TokenHash: tokenHash, ExpiresAt: expiresAt}
	return f.nextID, nil
}

func (f *fakeResetRepo) GetByHash(_ context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.TokenHash == tokenHash {
			cp := *row
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeResetRepo) MarkUsed(_ context.Context, id int64, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || row.UsedAt != nil {
		return false, nil
	}
	row.UsedAt = &at
	return true, nil
}

func (f *fakeResetRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, row := range f.rows {
		if !row.ExpiresAt.After(before) || row.UsedAt != nil {
			delete(f.rows, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeResetRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type sentMail struct {
	to   string
	link string
}

type fakeMailer struct {
	mu      sync.Mutex
	resets    []sentMail
	changed   []string
	changedAt []time.Time
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to, resetLink string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets = append(m.resets, sentMail{to: to, link: resetLink})
	return nil
}

func (m *fakeMailer) SendPasswordChanged(_ context.Context, to string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changed = append(m.changed, to)
	m.changedAt = append(m.changedAt, at)
	return nil
}

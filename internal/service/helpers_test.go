package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"skillnet/config"
	"skillnet/internal/model"
	"skillnet/internal/repository"
	"skillnet/pkg/db/dbtest"
	"skillnet/pkg/jwt"
	"skillnet/pkg/password"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func testJWT(display string) *jwt.JWTService {
	return jwt.NewJWTService(config.JWTConfig{
		Secret:       "service-test-secret",
		ExpireTime:   time.Hour,
		Issuer:       "skillnet-test",
		DisplayClaim: display,
	})
}

func fastHash(plain string) (string, error) {
	return password.HashWithCost(plain, bcrypt.MinCost)
}

func newUserService(db *gorm.DB) *UserService {
	return NewUserService(repository.NewUserRepository(db), testJWT("username")).WithHasher(fastHash)
}

func register(t *testing.T, users *UserService, name string) *model.User {
	t.Helper()
	u, _, err := users.Register(context.Background(), name, name+"@example.com", "pw-"+name)
	require.NoError(t, err)
	return u
}

type notification struct {
	userID uint
	event  string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification
}

func (n *recordingNotifier) Notify(userID uint, event string, _ map[string]interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notification{userID: userID, event: event})
}

type memoryCounter struct {
	counts      map[uint]int64
	invalidated []uint
}

func newMemoryCounter() *memoryCounter {
	return &memoryCounter{counts: map[uint]int64{}}
}

func (m *memoryCounter) Get(_ context.Context, userID uint) (int64, bool, error) {
	c, ok := m.counts[userID]
	return c, ok, nil
}

func (m *memoryCounter) Set(_ context.Context, userID uint, count int64) error {
	m.counts[userID] = count
	return nil
}

func (m *memoryCounter) Invalidate(_ context.Context, userID uint) error {
	delete(m.counts, userID)
	m.invalidated = append(m.invalidated, userID)
	return nil
}

type ledgerFixture struct {
	db       *gorm.DB
	users    *UserService
	ledger   *FriendshipService
	notifier *recordingNotifier
	counter  *memoryCounter
}

func newLedger(t *testing.T) *ledgerFixture {
	t.Helper()
	db := dbtest.New(t)
	users := newUserService(db)
	notifier := &recordingNotifier{}
	counter := newMemoryCounter()
	return &ledgerFixture{
		db:       db,
		users:    users,
		ledger:   NewFriendshipService(repository.NewFriendshipRepository(db), users, notifier, counter),
		notifier: notifier,
		counter:  counter,
	}
}

func (f *ledgerFixture) rowCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.Friendship{}).Count(&n).Error)
	return n
}

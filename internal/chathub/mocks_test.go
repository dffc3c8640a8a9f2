package chathub_test

import (
	"context"
	"encoding/json"
	"time"

	"mchat/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify double for the storage.Storage interface.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SaveMessage(ctx context.Context, msg *models.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockStorage) MessagesByRoom(ctx context.Context, room string) ([]models.Message, error) {
	args := m.Called(ctx, room)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockStorage) HasRecentSystemMessage(ctx context.Context, room, content string, since time.Time) (bool, error) {
	args := m.Called(ctx, room, content, since)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockStorage) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) UserExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) ListUsernames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) EnsureSystemUser(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStorage) PublishEvent(ctx context.Context, payload []byte) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *MockStorage) SubscribeEvents(ctx context.Context) *redis.PubSub {
	m.Called(ctx)
	return &redis.PubSub{}
}

// stubIdentity is a fixed-roster identity provider.
type stubIdentity struct {
	users []string
}

func (s stubIdentity) Resolve(ctx context.Context, token string) (string, bool) {
	if token == "" {
		return "Guest", false
	}
	return token, true
}

func (s stubIdentity) UserExists(ctx context.Context, username string) (bool, error) {
	for _, u := range s.users {
		if u == username {
			return true, nil
		}
	}
	return false, nil
}

func (s stubIdentity) ListUsernames(ctx context.Context) ([]string, error) {
	out := make([]string, len(s.users))
	copy(out, s.users)
	return out, nil
}

// mockClient is a test double for the chathub.Client interface. Received
// payloads accumulate in Recv.
type mockClient struct {
	id     string
	Recv   chan []byte
	closed chan struct{}
}

func newMockClient(id string) *mockClient {
	return &mockClient{
		id:     id,
		Recv:   make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

// newSlowMockClient has no buffer, so any publish while nobody reads drops it.
func newSlowMockClient(id string) *mockClient {
	return &mockClient{
		id:     id,
		Recv:   make(chan []byte),
		closed: make(chan struct{}),
	}
}

func (c *mockClient) GetSessionID() string          { return c.id }
func (c *mockClient) GetSendChannel() chan<- []byte { return c.Recv }

func (c *mockClient) Close() {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}
}

func (c *mockClient) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Drain decodes everything currently buffered into generic maps.
func (c *mockClient) Drain() []map[string]interface{} {
	var events []map[string]interface{}
	for {
		select {
		case data := <-c.Recv:
			var ev map[string]interface{}
			if err := json.Unmarshal(data, &ev); err == nil {
				events = append(events, ev)
			}
		default:
			return events
		}
	}
}

// DrainByType returns only the drained events of one kind.
func (c *mockClient) DrainByType(eventType string) []map[string]interface{} {
	var out []map[string]interface{}
	for _, ev := range c.Drain() {
		if ev["type"] == eventType {
			out = append(out, ev)
		}
	}
	return out
}

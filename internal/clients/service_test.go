package clients

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balcao-pos/balcao-pos/internal/platform/httpx"
)

type mockRepository struct {
	clients map[int64]*Client
	nextID  int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{clients: make(map[int64]*Client), nextID: 1}
}

func (m *mockRepository) Create(ctx context.Context, c Client) (int64, error) {
	if c.Email != nil {
		for _, existing := range m.clients {
			if existing.Email != nil && *existing.Email == *c.Email {
				return 0, httpx.ErrDuplicate
			}
		}
	}
	id := m.nextID
	m.nextID++
	c.ID = id
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.clients[id] = &c
	return id, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	c, ok := m.clients[id]
	if !ok {
		return httpx.ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		c.Name = v.(string)
	}
	if v, ok := updates["phone"]; ok {
		phone := v.(string)
		c.Phone = &phone
	}
	return nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockRepository) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	var out []Client
	for _, c := range m.clients {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.clients[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.clients, id)
	return nil
}

func TestCreateClient(t *testing.T) {
	svc := NewService(newMockRepository())

	phone := "11 98888-7777"
	client, err := svc.Create(context.Background(), CreateClientRequest{Name: "Maria Souza", Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", client.Name)
	require.NotNil(t, client.Phone)
	assert.Equal(t, phone, *client.Phone)
}

func TestCreateClientValidation(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.Create(context.Background(), CreateClientRequest{})
	require.Error(t, err, "name is required")

	bad := "not-an-email"
	_, err = svc.Create(context.Background(), CreateClientRequest{Name: "X", Email: &bad})
	require.Error(t, err)
}

func TestCreateClientDuplicateEmail(t *testing.T) {
	svc := NewService(newMockRepository())

	email := "maria@example.com"
	_, err := svc.Create(context.Background(), CreateClientRequest{Name: "Maria", Email: &email})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateClientRequest{Name: "Outra Maria", Email: &email})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestUpdateClientNotFound(t *testing.T) {
	svc := NewService(newMockRepository())
	name := "Novo Nome"
	_, err := svc.Update(context.Background(), 99, UpdateClientRequest{Name: &name})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDeleteClient(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	client, err := svc.Create(context.Background(), CreateClientRequest{Name: "Temp"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), client.ID))
	_, err = svc.Get(context.Background(), client.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

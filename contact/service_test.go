package contact

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu   sync.Mutex
	err  error
	sent []Message
}

func (f *fakeSender) Forward(_ context.Context, m Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m)
	return f.err
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newTestService(t *testing.T, sender Sender) (*Service, *Store) {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "contact.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewService(sender, store, nil), store
}

var validMsg = Message{Name: "Sam", Email: "sam@example.com", Message: "Hello there"}

func TestSubmitForwardsOnce(t *testing.T) {
	sender := &fakeSender{}
	svc, store := newTestService(t, sender)
	token := uuid.NewString()

	require.NoError(t, svc.Submit(context.Background(), token, validMsg))
	require.NoError(t, svc.Submit(context.Background(), token, validMsg), "a repeat of a delivered token is accepted")
	assert.Equal(t, 1, sender.count())

	rec, err := store.Get(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, rec.Status)
}

func TestSubmitNormalizesBeforeForwarding(t *testing.T) {
	sender := &fakeSender{}
	svc, _ := newTestService(t, sender)
	require.NoError(t, svc.Submit(context.Background(), uuid.NewString(),
		Message{Name: " Sam ", Email: " sam@example.com ", Message: " hi "}))
	assert.Equal(t, Message{Name: "Sam", Email: "sam@example.com", Message: "hi"}, sender.sent[0])
}

func TestSubmitInvalidIsNotStoredOrForwarded(t *testing.T) {
	sender := &fakeSender{}
	svc, store := newTestService(t, sender)
	token := uuid.NewString()

	err := svc.Submit(context.Background(), token, Message{Name: "Sam"})
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Zero(t, sender.count())
	_, err = store.Get(context.Background(), token)
	assert.Error(t, err)
}

func TestSubmitFailureAllowsRetry(t *testing.T) {
	sender := &fakeSender{err: errors.New("endpoint down")}
	svc, store := newTestService(t, sender)
	token := uuid.NewString()

	err := svc.Submit(context.Background(), token, validMsg)
	require.Error(t, err)
	assert.ErrorIs(t, err, sender.err)

	rec, err := store.Get(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, rec.Status)

	sender.mu.Lock()
	sender.err = nil
	sender.mu.Unlock()
	require.NoError(t, svc.Submit(context.Background(), token, validMsg))
	assert.Equal(t, 2, sender.count())
}

func TestSubmitInFlight(t *testing.T) {
	sender := &fakeSender{}
	svc, store := newTestService(t, sender)
	token := uuid.NewString()

	_, _, err := store.Claim(context.Background(), token, validMsg)
	require.NoError(t, err)

	err = svc.Submit(context.Background(), token, validMsg)
	assert.ErrorIs(t, err, ErrInFlight)
	assert.Zero(t, sender.count())
}

func TestSubmitWithoutStore(t *testing.T) {
	sender := &fakeSender{}
	svc := NewService(sender, nil, nil)
	require.NoError(t, svc.Submit(context.Background(), "tok", validMsg))
	require.NoError(t, svc.Submit(context.Background(), "tok", validMsg))
	assert.Equal(t, 2, sender.count())
}

func TestSubmitNotConfigured(t *testing.T) {
	svc, _ := newTestService(t, NewForwarder("", 0))
	err := svc.Submit(context.Background(), uuid.NewString(), validMsg)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

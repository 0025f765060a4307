package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type message struct {
	key  string
	body []byte
}

type fakePublisher struct {
	msgs []message
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, key string, body []byte) error {
	p.msgs = append(p.msgs, message{key, body})
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

type fakeIndexer struct {
	synced, removed []string
}

func (ix *fakeIndexer) Sync(_ context.Context, id string) error {
	ix.synced = append(ix.synced, id)
	return nil
}

func (ix *fakeIndexer) Remove(_ context.Context, id string) error {
	ix.removed = append(ix.removed, id)
	return nil
}

func TestEmit_PublishesEnvelope(t *testing.T) {
	pub := &fakePublisher{}
	n := NewNotifier(pub, nil)
	at := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return at }

	n.Emit(MetricCreated, "ENT-1", map[string]any{"rowid": 3})
	n.Wait()

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, MetricCreated, pub.msgs[0].key)
	var ev Event
	require.NoError(t, json.Unmarshal(pub.msgs[0].body, &ev))
	assert.Equal(t, "ENT-1", ev.IntakeID)
	assert.Equal(t, MetricCreated, ev.Type)
	assert.True(t, ev.At.Equal(at))
	assert.NotEmpty(t, ev.ID)
}

func TestEmit_RoutesToIndexer(t *testing.T) {
	ix := &fakeIndexer{}
	n := NewNotifier(&fakePublisher{err: errors.New("broker down")}, ix)

	n.Emit(IntakeCreated, "ENT-1", nil)
	n.Emit(IntakeStatusChanged, "ENT-1", nil)
	n.Emit(MetricUpdated, "ENT-2", nil)
	n.Emit(MetricDeleted, "ENT-2", nil)
	n.Emit(IntakeDeleted, "ENT-1", nil)
	n.Close()

	assert.Equal(t, []string{"ENT-1", "ENT-1", "ENT-2"}, ix.synced)
	assert.Equal(t, []string{"ENT-1"}, ix.removed)
}

func TestEmit_NilNotifier(t *testing.T) {
	var n *Notifier
	assert.NotPanics(t, func() {
		n.Emit(IntakeCreated, "ENT-1", nil)
		n.Wait()
		n.Close()
	})
	assert.NotPanics(t, func() { NewNotifier(nil, nil).Emit(IntakeCreated, "ENT-1", nil) })
}

type blockingPublisher struct {
	release chan struct{}
	keys    []string
}

func (p *blockingPublisher) Publish(ctx context.Context, key string, _ []byte) error {
	select {
	case <-p.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	p.keys = append(p.keys, key)
	return nil
}

func (p *blockingPublisher) Close() error { return nil }

func TestEmit_DoesNotWaitForDelivery(t *testing.T) {
	pub := &blockingPublisher{release: make(chan struct{})}
	n := NewNotifier(pub, nil)

	start := time.Now()
	n.Emit(IntakeCreated, "ENT-1", nil)
	n.Emit(IntakeUpdated, "ENT-1", nil)
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	close(pub.release)
	n.Close()
	assert.Equal(t, []string{IntakeCreated, IntakeUpdated}, pub.keys)
}

func TestEmit_AfterCloseIsDropped(t *testing.T) {
	pub := &fakePublisher{}
	n := NewNotifier(pub, nil)
	n.Close()
	n.Close()

	n.Emit(IntakeCreated, "ENT-1", nil)
	n.Wait()
	assert.Empty(t, pub.msgs)
}

func TestEmit_EncodesDataBeforeReturning(t *testing.T) {
	pub := &fakePublisher{}
	n := NewNotifier(pub, nil)

	data := map[string]any{"status": "New"}
	n.Emit(IntakeStatusChanged, "ENT-7", data)
	data["status"] = "Closed"
	n.Close()

	require.Len(t, pub.msgs, 1)
	var ev Event
	require.NoError(t, json.Unmarshal(pub.msgs[0].body, &ev))
	assert.Equal(t, "ENT-7", ev.IntakeID)
	assert.Equal(t, map[string]any{"status": "New"}, ev.Data)
}

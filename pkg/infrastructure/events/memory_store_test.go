package events

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryEventStore_AppendAndRead(t *testing.T) {
	store := NewInMemoryEventStore()

	require.NoError(t, store.AppendEvent(BOMStream, NewEvent(NodeInsertedEvent, BOMStream, NodeInserted{Name: "A", Quantity: 1})))
	require.NoError(t, store.AppendEvent(BOMStream, NewEvent(NodeInsertedEvent, BOMStream, NodeInserted{Name: "B", Parent: "A", Quantity: 3})))
	require.NoError(t, store.AppendEvent(NotificationStream, NewEvent(NotificationEvent, NotificationStream, Notification{Severity: SeveritySuccess, Message: "ok"})))

	bomEvents, err := store.ReadEvents(BOMStream, 0)
	require.NoError(t, err)
	require.Len(t, bomEvents, 2)
	assert.Equal(t, 1, bomEvents[0].Version())
	assert.Equal(t, 2, bomEvents[1].Version())
	assert.Equal(t, NodeInserted{Name: "B", Parent: "A", Quantity: 3}, bomEvents[1].Data())

	fromTwo, err := store.ReadEvents(BOMStream, 2)
	require.NoError(t, err)
	assert.Len(t, fromTwo, 1)

	none, err := store.ReadEvents("missing", 1)
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := store.ReadAllEvents(1)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestInMemoryEventStore_Subscribers(t *testing.T) {
	store := NewInMemoryEventStore()

	var seen []string
	require.NoError(t, store.Subscribe([]string{MRPCalculatedEvent}, HandlerFunc{
		Types: []string{MRPCalculatedEvent},
		Fn: func(e Event) error {
			seen = append(seen, e.Type())
			return nil
		},
	}))
	require.NoError(t, store.Subscribe([]string{MRPCalculatedEvent}, HandlerFunc{
		Types: []string{MRPCalculatedEvent},
		Fn:    func(Event) error { return errors.New("handler down") },
	}))

	require.NoError(t, store.AppendEvent(BOMStream, NewEvent(NodeInsertedEvent, BOMStream, nil)))
	require.NoError(t, store.AppendEvent(BOMStream, NewEvent(MRPCalculatedEvent, BOMStream, MRPCalculated{Materials: 3, Roots: 1})))

	assert.Equal(t, []string{MRPCalculatedEvent}, seen)
}

func TestNotifiers(t *testing.T) {
	store := NewInMemoryEventStore()
	recorder := &RecordingNotifier{}
	notifier := MultiNotifier{LogNotifier{}, NewStoreNotifier(store), recorder}

	notifier.Notify(SeveritySuccess, "node added")
	notifier.Notify(SeverityError, "parent not found")

	last, ok := recorder.Last()
	require.True(t, ok)
	assert.Equal(t, Notification{Severity: SeverityError, Message: "parent not found"}, last)
	assert.Len(t, recorder.Notifications(), 2)

	stored, err := store.ReadEvents(NotificationStream, 1)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, Notification{Severity: SeveritySuccess, Message: "node added"}, stored[0].Data())

	_, ok = (&RecordingNotifier{}).Last()
	assert.False(t, ok)
}

func TestWriterNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := WriterNotifier{W: &buf}

	n.Notify(SeveritySuccess, "Node added successfully.")
	n.Notify(SeverityError, "Parent node not found")
	NopNotifier{}.Notify(SeverityError, "dropped")

	assert.Equal(t, "✅ Node added successfully.\n❌ Parent node not found\n", buf.String())
}

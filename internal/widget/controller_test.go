package widget

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainEvents(c *Controller) []Event {
	var out []Event
	for {
		select {
		case ev := <-c.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func eventTypes(evs []Event) []EventType {
	out := make([]EventType, len(evs))
	for i, ev := range evs {
		out[i] = ev.Type
	}
	return out
}

func TestControllerOpenBootstrapsOnce(t *testing.T) {
	api := newFakeAPI("55", sampleHistory())
	c := New(api, fakeAuth{authenticated: true, userID: 42}, Config{})

	key, err := c.Open(context.Background(), sampleSeller(), sampleProduct())
	require.NoError(t, err)
	c.Wait()

	view, ok := c.View(key)
	require.True(t, ok)
	assert.True(t, view.Bound)
	require.Len(t, view.Messages, 2)

	// the second click surfaces the same window without another fetch
	again, err := c.Open(context.Background(), sampleSeller(), sampleProduct())
	require.NoError(t, err)
	assert.Equal(t, key, again)
	c.Wait()

	find, list, _ := api.counts()
	assert.Equal(t, 1, find)
	assert.Equal(t, 1, list)

	types := eventTypes(drainEvents(c))
	assert.Contains(t, types, EventOpened)
	assert.Contains(t, types, EventBound)
	assert.Contains(t, types, EventSurfaced)
}

func TestControllerOpenRequiresAuthentication(t *testing.T) {
	api := newFakeAPI("55", nil)
	c := New(api, fakeAuth{authenticated: false}, Config{})

	_, err := c.Open(context.Background(), sampleSeller(), sampleProduct())
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
	assert.Empty(t, c.Visible())

	find, _, _ := api.counts()
	assert.Equal(t, 0, find)
}

func TestControllerSendEmitsAppendedEvent(t *testing.T) {
	api := newFakeAPI("55", sampleHistory())
	c := New(api, fakeAuth{authenticated: true, userID: 42}, Config{})

	key, err := c.Open(context.Background(), sampleSeller(), sampleProduct())
	require.NoError(t, err)
	c.Wait()
	drainEvents(c)

	require.NoError(t, c.Send(context.Background(), key, "Can you ship to Oslo?"))

	types := eventTypes(drainEvents(c))
	assert.Equal(t, []EventType{EventMessageAppended}, types)

	view, _ := c.View(key)
	require.Len(t, view.Messages, 3)
}

func TestControllerBindFailureThenRetry(t *testing.T) {
	api := newFakeAPI("55", sampleHistory())
	api.failFind = true
	c := New(api, fakeAuth{authenticated: true, userID: 42}, Config{})

	key, err := c.Open(context.Background(), sampleSeller(), sampleProduct())
	require.NoError(t, err)
	c.Wait()

	view, _ := c.View(key)
	assert.False(t, view.Bound)
	assert.True(t, view.BindFailed)

	types := eventTypes(drainEvents(c))
	assert.Contains(t, types, EventBindFailed)

	api.failFind = false
	require.NoError(t, c.Retry(context.Background(), key))
	c.Wait()

	view, _ = c.View(key)
	assert.True(t, view.Bound)
	types = eventTypes(drainEvents(c))
	assert.Contains(t, types, EventBound)
}

func TestControllerSendFailureEmitsAndReturnsError(t *testing.T) {
	api := newFakeAPI("55", sampleHistory())
	c := New(api, fakeAuth{authenticated: true, userID: 42}, Config{})

	key, err := c.Open(context.Background(), sampleSeller(), sampleProduct())
	require.NoError(t, err)
	c.Wait()
	drainEvents(c)

	api.failAppend = true
	err = c.Send(context.Background(), key, "Hello")
	require.Error(t, err)

	types := eventTypes(drainEvents(c))
	assert.Equal(t, []EventType{EventSendFailed}, types)

	view, _ := c.View(key)
	assert.Equal(t, "Hello", view.Draft)
}

func TestControllerCloseAndMinimizeEvents(t *testing.T) {
	api := newFakeAPI("55", sampleHistory())
	c := New(api, fakeAuth{authenticated: true, userID: 42}, Config{})

	key, err := c.Open(context.Background(), sampleSeller(), sampleProduct())
	require.NoError(t, err)
	c.Wait()
	drainEvents(c)

	assert.True(t, c.Minimize(key))
	assert.True(t, c.Maximize(key))
	assert.True(t, c.ToggleMinimize(key))
	assert.True(t, c.Close(key))
	assert.False(t, c.Close(key))

	types := eventTypes(drainEvents(c))
	assert.Equal(t, []EventType{EventMinimized, EventMaximized, EventMinimized, EventClosed}, types)
	assert.Empty(t, c.Visible())
}

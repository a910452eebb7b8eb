package presence

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRegisterAndFanOut(t *testing.T) {
	t.Parallel()
	d := NewDirectory()
	channel := uuid.New()
	alice := uuid.New()
	bob := uuid.New()

	d.Register("s1", alice, channel)
	d.Register("s2", bob, channel)
	d.Register("s1", alice, channel) // repeat is harmless

	assert.ElementsMatch(t, []string{"s1", "s2"}, d.SessionsFor(channel))
	assert.Nil(t, d.SessionsFor(uuid.New()), "unknown channel means nobody is live")
}

func TestDrop(t *testing.T) {
	t.Parallel()
	d := NewDirectory()
	ch1 := uuid.New()
	ch2 := uuid.New()
	alice := uuid.New()

	d.Register("s1", alice, ch1)
	d.Register("s1", alice, ch2)

	d.Drop("s1", ch1)

	assert.Empty(t, d.SessionsFor(ch1))
	assert.ElementsMatch(t, []string{"s1"}, d.SessionsFor(ch2))
}

func TestUnregisterSession(t *testing.T) {
	t.Parallel()
	d := NewDirectory()
	ch1 := uuid.New()
	ch2 := uuid.New()
	alice := uuid.New()
	bob := uuid.New()

	d.Register("s1", alice, ch1)
	d.Register("s1", alice, ch2)
	d.Register("s2", bob, ch1)

	d.UnregisterSession("s1")

	assert.ElementsMatch(t, []string{"s2"}, d.SessionsFor(ch1))
	assert.Empty(t, d.SessionsFor(ch2))

	// Unknown session is a no-op.
	d.UnregisterSession("ghost")
}

func TestOtherSession(t *testing.T) {
	t.Parallel()
	d := NewDirectory()
	dm := uuid.New()
	alice := uuid.New()
	bob := uuid.New()

	d.Register("s1", alice, dm)

	_, ok := d.OtherSession(dm, alice)
	assert.False(t, ok, "peer is offline")

	d.Register("s2", bob, dm)

	sessionID, ok := d.OtherSession(dm, alice)
	assert.True(t, ok)
	assert.Equal(t, "s2", sessionID)
}

func TestEvict(t *testing.T) {
	t.Parallel()
	d := NewDirectory()
	channel := uuid.New()
	alice := uuid.New()
	bob := uuid.New()

	// Alice is connected twice, e.g. phone and laptop.
	d.Register("s1", alice, channel)
	d.Register("s2", alice, channel)
	d.Register("s3", bob, channel)

	evicted := d.Evict(channel, alice)

	assert.ElementsMatch(t, []string{"s1", "s2"}, evicted)
	assert.ElementsMatch(t, []string{"s3"}, d.SessionsFor(channel))

	assert.Empty(t, d.Evict(channel, alice), "second eviction finds nothing")
}

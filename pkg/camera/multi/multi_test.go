package multi_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doorkeeper/petdoor/internal/core"
	"github.com/doorkeeper/petdoor/pkg/camera/multi"

	camerafake "github.com/doorkeeper/petdoor/pkg/camera/fake"
)

func TestCaptureFrameConcatenatesInOrder(t *testing.T) {
	a := camerafake.New(camerafake.Cycle{Frames: []core.Frame{core.Frame("a1")}})
	b := camerafake.New(camerafake.Cycle{Frames: []core.Frame{core.Frame("b1"), core.Frame("b2")}})

	cam := multi.New(a, b)
	require.NoError(t, cam.Start(context.Background()))

	frames, err := cam.CaptureFrame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []core.Frame{core.Frame("a1"), core.Frame("b1"), core.Frame("b2")}, frames)
}

func TestConnectedOnlyOnceAllMembersConnect(t *testing.T) {
	a := camerafake.New()
	b := camerafake.New()

	cam := multi.New(a, b)

	a.Connect()
	select {
	case <-cam.Events():
		t.Fatal("should not report Connected until every member has")
	case <-time.After(50 * time.Millisecond):
	}

	b.Connect()
	select {
	case ev := <-cam.Events():
		assert.Equal(t, core.EventConnected, ev)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for aggregate Connected")
	}
}

func TestDisconnectedAsSoonAsAnyMemberDrops(t *testing.T) {
	a := camerafake.New()
	b := camerafake.New()

	cam := multi.New(a, b)
	a.Connect()
	b.Connect()
	<-cam.Events() // aggregate Connected

	a.Disconnect()
	select {
	case ev := <-cam.Events():
		assert.Equal(t, core.EventDisconnected, ev)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for aggregate Disconnected")
	}
}

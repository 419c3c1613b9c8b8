package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/tmccall/arenad/internal/model"
	"github.com/tmccall/arenad/internal/testutil"
)

type HubSuite struct {
	suite.Suite
	hub *Hub
}

func TestHubSuite(t *testing.T) {
	suite.Run(t, new(HubSuite))
}

func (s *HubSuite) SetupTest() {
	s.hub = NewHub(testutil.NopLogger())
}

// connect registers a hub-only client without a real websocket connection
func (s *HubSuite) connect(id string) *Client {
	c := &Client{
		hub:  s.hub,
		id:   model.PlayerID(id),
		send: make(chan []byte, sendBufferSize),
	}
	s.hub.register(c)
	return c
}

func (s *HubSuite) receive(c *Client) outboundEnvelope {
	select {
	case msg := <-c.send:
		var env outboundEnvelope
		s.Require().NoError(json.Unmarshal(msg, &env))
		return env
	default:
		s.FailNow("no message buffered for client " + string(c.id))
		return outboundEnvelope{}
	}
}

func (s *HubSuite) TestToChannelReachesOnlyMembers() {
	a := s.connect("a")
	b := s.connect("b")
	c := s.connect("c")
	s.hub.Join(a.id, "lobby:arena")
	s.hub.Join(b.id, "lobby:arena")

	s.hub.ToChannel("lobby:arena", model.EventRoomList, map[string]string{"hello": "world"})

	s.Equal(model.EventRoomList, s.receive(a).Event)
	s.Equal(model.EventRoomList, s.receive(b).Event)
	s.Empty(c.send)
}

func (s *HubSuite) TestToClientTargetsOneClient() {
	a := s.connect("a")
	b := s.connect("b")

	s.hub.ToClient(a.id, model.EventStateSnapshot, nil)

	s.Equal(model.EventStateSnapshot, s.receive(a).Event)
	s.Empty(b.send)
}

func (s *HubSuite) TestLeaveStopsDelivery() {
	a := s.connect("a")
	s.hub.Join(a.id, "lobby:arena")
	s.hub.Leave(a.id, "lobby:arena")

	s.hub.ToChannel("lobby:arena", model.EventRoomList, nil)

	s.Empty(a.send)
	s.Equal(0, s.hub.ChannelSize("lobby:arena"))
}

func (s *HubSuite) TestUnregisterRemovesFromAllChannels() {
	a := s.connect("a")
	s.hub.Join(a.id, "lobby:arena")
	s.hub.Join(a.id, "session:arena:R1")

	var disconnected model.PlayerID
	s.hub.SetDisconnectHandler(func(id model.PlayerID) { disconnected = id })
	s.hub.unregister(a)

	s.Equal(a.id, disconnected)
	s.Equal(0, s.hub.ClientCount())
	s.Equal(0, s.hub.ChannelSize("lobby:arena"))
	s.Equal(0, s.hub.ChannelSize("session:arena:R1"))

	// Send channel is closed so the write pump exits
	_, open := <-a.send
	s.False(open)
}

func (s *HubSuite) TestUnregisterTwiceIsSafe() {
	a := s.connect("a")
	s.hub.unregister(a)
	s.hub.unregister(a)
	s.Equal(0, s.hub.ClientCount())
}

func (s *HubSuite) TestFullBufferDropsInsteadOfBlocking() {
	a := s.connect("a")
	s.hub.Join(a.id, "lobby:arena")

	for i := 0; i < sendBufferSize+10; i++ {
		s.hub.ToChannel("lobby:arena", model.EventRoomList, i)
	}

	s.Len(a.send, sendBufferSize)
}

func (s *HubSuite) TestJoinUnknownClientIsNoOp() {
	s.hub.Join("ghost", "lobby:arena")
	s.Equal(0, s.hub.ChannelSize("lobby:arena"))
}

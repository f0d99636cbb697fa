package gateway

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"holdem-arcade/apps/server/internal/auth"
	"holdem-arcade/apps/server/internal/lobby"
	"holdem-arcade/apps/server/internal/table"
	"holdem-arcade/codec"
	"holdem-arcade/holdem"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	readLimit    = 64 * 1024
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
	sendBuffer   = 256
)

// Connection is one websocket client bound to an account.
type Connection struct {
	ID      string
	Account auth.Account
	Conn    *websocket.Conn
	Send    chan []byte
	Gateway *Gateway

	// text is set once the client sends a text frame; replies then go out
	// as protojson instead of proto binary.
	text atomic.Bool
	seq  atomic.Uint64
}

// Gateway manages websocket connections and routes client envelopes to the
// caller's table.
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	userConns   map[uint64]*Connection
	nextConnID  uint64

	lobby    *lobby.Lobby
	auth     auth.Service
	upgrader websocket.Upgrader
	logger   *log.Logger
}

func New(lby *lobby.Lobby, authService auth.Service, allowedOrigins []string, logger *log.Logger) *Gateway {
	g := &Gateway{
		connections: make(map[string]*Connection),
		userConns:   make(map[uint64]*Connection),
		lobby:       lby,
		auth:        authService,
		logger:      logger.WithPrefix("gateway"),
	}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return g
}

// originChecker allows every origin when the list is empty.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[strings.TrimSpace(o)] = struct{}{}
	}
	return func(r *http.Request) bool {
		_, ok := set[r.Header.Get("Origin")]
		return ok
	}
}

// HandleWebSocket upgrades the request. The session token comes from the
// Authorization header or ?token=; without a valid one a guest account is
// created and its token is sent in the welcome envelope.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	acct, token, reused, err := g.auth.Guest(auth.BearerToken(r))
	if err != nil {
		g.logger.Error("session failed", "err", err)
		http.Error(w, "session unavailable", http.StatusServiceUnavailable)
		return
	}
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("upgrade failed", "err", err)
		return
	}

	g.mu.Lock()
	g.nextConnID++
	c := &Connection{
		ID:      "conn_" + strconv.FormatUint(g.nextConnID, 10),
		Account: acct,
		Conn:    conn,
		Send:    make(chan []byte, sendBuffer),
		Gateway: g,
	}
	if old := g.userConns[acct.ID]; old != nil {
		close(old.Send)
		delete(g.connections, old.ID)
	}
	g.connections[c.ID] = c
	g.userConns[acct.ID] = c
	total := len(g.connections)
	g.mu.Unlock()

	g.logger.Info("client connected", "conn", c.ID, "user", acct.ID, "guest", acct.Guest, "resumed", reused, "total", total)

	welcome, _ := structpb.NewStruct(map[string]any{
		"userId":       strconv.FormatUint(acct.ID, 10),
		"displayName":  acct.DisplayName,
		"guest":        acct.Guest,
		"sessionToken": token,
	})
	c.sendEnvelope(codec.TypeWelcome, welcome)

	go c.writePump()
	go c.readPump()
}

func (c *Connection) readPump() {
	defer func() {
		c.Gateway.removeConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(readLimit)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Gateway.logger.Warn("read error", "conn", c.ID, "err", err)
			}
			return
		}
		if messageType == websocket.TextMessage {
			c.text.Store(true)
		}
		c.handleMessage(message, messageType == websocket.TextMessage)
	}
}

func (c *Connection) handleMessage(data []byte, text bool) {
	msg, err := codec.DecodeClient(data, text)
	if err != nil {
		c.sendError(codec.CodeBadRequest, err.Error())
		return
	}
	c.Gateway.logger.Debug("received", "user", c.Account.ID, "type", msg.Type, "seq", msg.Seq)

	switch msg.Type {
	case codec.TypeJoin:
		c.handleJoin(msg.Payload)
	case codec.TypeIntent:
		c.handleIntent(msg.Payload)
	case codec.TypeNextHand:
		c.submit(table.Event{Type: table.EventNextHand, UserID: c.Account.ID})
	case codec.TypePing:
		c.sendEnvelope(codec.TypePong, nil)
	case codec.TypeLeave:
		c.Gateway.lobby.Leave(c.Account.ID)
	default:
		c.sendError(codec.CodeBadRequest, "unknown message type "+strconv.Quote(msg.Type))
	}
}

// handleJoin reads {"tier": "hard" | 4, "opponents": 3, "fresh": false}.
func (c *Connection) handleJoin(p *structpb.Struct) {
	req, err := joinRequestFromPayload(p)
	if err != nil {
		c.sendError(codec.CodeBadRequest, err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	owner := table.Owner{UserID: c.Account.ID, Name: c.Account.DisplayName}
	t, resumed, err := c.Gateway.lobby.Join(ctx, owner, req, c.Gateway.deliver)
	if err != nil {
		c.sendError(codec.CodeBadRequest, err.Error())
		return
	}
	c.Gateway.logger.Info("joined", "user", c.Account.ID, "table", t.ID, "resumed", resumed)
	if resumed {
		c.submit(table.Event{Type: table.EventResync, UserID: c.Account.ID})
	}
}

func joinRequestFromPayload(p *structpb.Struct) (lobby.JoinRequest, error) {
	f := p.GetFields()
	req := lobby.JoinRequest{
		Tier:      holdem.TierBeginner,
		Opponents: 1,
		Fresh:     f["fresh"].GetBoolValue(),
	}
	switch v := f["tier"].GetKind().(type) {
	case *structpb.Value_StringValue:
		tier, err := holdem.ParseTier(v.StringValue)
		if err != nil {
			return req, err
		}
		req.Tier = tier
	case *structpb.Value_NumberValue:
		req.Tier = holdem.Tier(v.NumberValue)
	}
	if n, ok := f["opponents"].GetKind().(*structpb.Value_NumberValue); ok {
		req.Opponents = int(n.NumberValue)
	}
	return req, nil
}

func (c *Connection) handleIntent(p *structpb.Struct) {
	in, err := codec.IntentFromPayload(p)
	if err != nil {
		c.sendError(codec.CodeBadRequest, err.Error())
		return
	}
	c.submit(table.Event{Type: table.EventIntent, UserID: c.Account.ID, Intent: in})
}

func (c *Connection) submit(e table.Event) {
	t := c.Gateway.lobby.TableFor(c.Account.ID)
	if t == nil {
		c.sendError(codec.CodeNotSeated, "not seated at a table")
		return
	}
	if err := t.SubmitEvent(e); err != nil {
		if errors.Is(err, table.ErrNotSeated) || errors.Is(err, table.ErrTableClosed) {
			c.sendError(codec.CodeNotSeated, err.Error())
			return
		}
		c.sendError(codec.ErrorCode(err), err.Error())
	}
}

func (c *Connection) sendError(code, msg string) {
	c.sendEnvelope(codec.TypeError, codec.ErrorPayload(code, msg))
}

// sendEnvelope delivers a gateway-originated envelope. These use their own
// sequence, separate from the table's.
func (c *Connection) sendEnvelope(typ string, payload *structpb.Struct) {
	env := codec.WrapServerEnvelope("", c.seq.Add(1), typ, payload)
	data, err := codec.Marshal(env)
	if err != nil {
		return
	}
	c.Gateway.deliver(c.Account.ID, data)
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			frameType := websocket.BinaryMessage
			if c.text.Load() {
				converted, err := toJSON(message)
				if err != nil {
					continue
				}
				message, frameType = converted, websocket.TextMessage
			}
			if err := c.Conn.WriteMessage(frameType, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func toJSON(bin []byte) ([]byte, error) {
	env := &structpb.Struct{}
	if err := proto.Unmarshal(bin, env); err != nil {
		return nil, err
	}
	return protojson.Marshal(env)
}

// removeConnection drops c; the table keeps running so the player can
// reconnect and resume.
func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.connections[c.ID] != c {
		return
	}
	delete(g.connections, c.ID)
	if g.userConns[c.Account.ID] == c {
		delete(g.userConns, c.Account.ID)
	}
	close(c.Send)
	g.logger.Info("client disconnected", "conn", c.ID, "total", len(g.connections))
}

// deliver queues data for a user's connection, dropping it when the buffer
// is full or the user is offline.
func (g *Gateway) deliver(userID uint64, data []byte) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c := g.userConns[userID]
	if c == nil {
		return
	}
	select {
	case c.Send <- data:
	default:
		g.logger.Warn("send buffer full, dropping", "user", userID)
	}
}

// Connections returns the number of live connections.
func (g *Gateway) Connections() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.connections)
}

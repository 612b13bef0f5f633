package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"chatapp/logger"
	"chatapp/module/chat/store"
	"chatapp/service/storage"
	"chatapp/tools/errs"
	"chatapp/tools/ids"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const handshakeDeadline = 10 * time.Second

// Gateway owns the websocket lifecycle: handshake-authenticate, bind into
// the registry, demultiplex inbound frames, unbind on disconnect. It never
// trusts identity fields in payloads; the authenticated session is the
// sender.
type Gateway struct {
	reg    *Registry
	social store.SocialStore
	router *Router
	disp   *Dispatcher
	mirror *storage.PresenceMirror // may be nil
}

func NewGateway(reg *Registry, social store.SocialStore, router *Router, mirror *storage.PresenceMirror) *Gateway {
	g := &Gateway{reg: reg, social: social, router: router, disp: NewDispatcher(), mirror: mirror}
	g.disp.Register(EvtSendMessage, g.handleSendMessage)
	return g
}

// HandleWS is the gin route for the realtime channel.
func (g *Gateway) HandleWS(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[gateway] upgrade failed: %v", err)
		return
	}

	sess, err := g.handshake(c.Request.Context(), ws)
	if err != nil {
		// no session is created for a failed handshake
		logger.Infof("[gateway] handshake rejected: %v", err)
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthenticated"),
			time.Now().Add(time.Second))
		_ = ws.Close()
		return
	}

	conn := NewWSConn(ids.GenerateString(), ws)
	sess.Conn = conn

	if prev := g.reg.Bind(sess.UserID, conn); prev != nil {
		// the user opened a second connection; retire the superseded one so
		// it cannot linger half-open and race a later unbind
		logger.Infof("[gateway] superseding connection user=%s old=%s new=%s", sess.UserID, prev.ID(), conn.ID())
		_ = prev.Close()
	}
	g.mirror.Online(context.Background(), sess.UserID)
	g.announce(EvtUserOnline, sess.Username)
	logger.Infof("[gateway] user connected user=%s conn=%s", sess.Username, conn.ID())

	g.readLoop(sess, ws)

	// Unbind is stale-guarded: if a newer bind already replaced us this is
	// a no-op and no offline presence is announced.
	if g.reg.Unbind(sess.UserID, conn) {
		g.mirror.Offline(context.Background(), sess.UserID)
		g.announce(EvtUserOffline, sess.Username)
		logger.Infof("[gateway] user disconnected user=%s conn=%s", sess.Username, conn.ID())
	}
	_ = conn.Close()
}

// handshake reads the first frame, which must be an authenticate carrying
// a known username. The account was already password-checked at login; the
// realtime layer trusts the username handshake, mirroring the HTTP layer's
// token trust.
func (g *Gateway) handshake(ctx context.Context, ws *websocket.Conn) (*Session, error) {
	_ = ws.SetReadDeadline(time.Now().Add(handshakeDeadline))
	defer ws.SetReadDeadline(time.Time{})

	_, raw, err := ws.ReadMessage()
	if err != nil {
		return nil, errs.ErrUnauthenticated.WithDetail("no handshake: " + err.Error())
	}
	f, err := ParseFrame(raw)
	if err != nil {
		return nil, errs.ErrUnauthenticated.WithDetail(err.Error())
	}
	if f.Type != EvtAuthenticate {
		return nil, errs.ErrUnauthenticated.WithDetail("first frame must be authenticate")
	}
	var p AuthPayload
	if err := json.Unmarshal(f.Payload, &p); err != nil || p.Username == "" {
		return nil, errs.ErrUnauthenticated.WithDetail("username not provided")
	}
	u, err := g.social.GetUserByUsername(ctx, p.Username)
	if err != nil {
		return nil, errs.ErrUnauthenticated.WithDetail("unknown user " + p.Username)
	}
	return &Session{UserID: u.ID, Username: u.Username}, nil
}

func (g *Gateway) readLoop(sess *Session, ws *websocket.Conn) {
	for {
		mt, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[gateway] peer closed user=%s err=%v", sess.Username, err)
			} else {
				logger.Infof("[gateway] read err user=%s err=%v", sess.Username, err)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		f, err := ParseFrame(raw)
		if err != nil {
			logger.Infof("[gateway] bad frame user=%s err=%v len=%d", sess.Username, err, len(raw))
			continue
		}
		if err := g.disp.Dispatch(context.Background(), sess, f); err != nil {
			logger.Infof("[gateway] dispatch user=%s type=%s err=%v", sess.Username, f.Type, err)
		}
	}
}

func (g *Gateway) announce(kind EventKind, username string) {
	data, err := MarshalEvent(kind, PresencePayload{Username: username})
	if err != nil {
		logger.Errorf("[gateway] %v", err)
		return
	}
	g.reg.Broadcast(data)
}

// handleSendMessage is the one inbound application event. Validation
// failures are dropped silently (logged only), matching the send contract;
// a successful send echoes the persisted message back to the sender for
// client-side reconciliation.
func (g *Gateway) handleSendMessage(ctx context.Context, sess *Session, f *Frame) error {
	var p SendMessagePayload
	if err := json.Unmarshal(f.Payload, &p); err != nil {
		return err
	}
	msg, err := g.router.SendMessage(ctx, sess.UserID, p.RecipientID, p.Content)
	if err != nil {
		logger.Infof("[gateway] send dropped user=%s err=%v", sess.Username, err)
		return nil
	}
	echo, err := MarshalEvent(EvtMessageSent, msg)
	if err != nil {
		return err
	}
	if err := sess.Conn.Send(echo); err != nil {
		logger.Infof("[gateway] echo failed user=%s err=%v", sess.Username, err)
	}
	return nil
}

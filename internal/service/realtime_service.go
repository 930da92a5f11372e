package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ujian-go-api/internal/dto"
	"github.com/noah-isme/ujian-go-api/internal/observability"
)

const (
	// AdminsRoom is the shared topic for administrative and proctor clients.
	AdminsRoom = "admins"

	realtimeSendBufferSize = 32
	realtimeKeepalive      = 30 * time.Second
)

// EventPublisher is the outbound half of the notification bus. Sibling
// services publish ban, unban and appeal events through it.
type EventPublisher interface {
	Publish(identity, event string, payload interface{})
	PublishAdmins(event string, payload interface{})
}

// ConnectionOptions wraps identity metadata extracted during the HTTP
// upgrade. The handler has already validated the credential by the time a
// connection reaches the service.
type ConnectionOptions struct {
	Identity string
	Admin    bool
	Context  context.Context
}

// RealtimeService is the per-identity notification bus: one logical room per
// student NIS plus the shared admins room. It fans events out to local
// connections and, through Redis and NATS, to sibling nodes.
type RealtimeService interface {
	EventPublisher
	ServeConnection(conn *websocket.Conn, opts ConnectionOptions)
	Attach(violations ViolationService, appeals AppealService)
	Start(ctx context.Context)
}

type realtimeService struct {
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
	hub         *realtimeHub
	nodeID      string

	violations ViolationService
	appeals    AppealService
}

type realtimeHub struct {
	mu    sync.RWMutex
	rooms map[string]map[*realtimeClient]struct{}
	log   zerolog.Logger
}

type realtimeClient struct {
	conn    *websocket.Conn
	send    chan dto.RealtimeMessage
	options ConnectionOptions
	service *realtimeService
	closed  chan struct{}
	once    sync.Once
	baseCtx context.Context
}

type busEvent struct {
	Source   string          `json:"source"`
	Identity string          `json:"identity"`
	Event    string          `json:"event"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	SentAt   time.Time       `json:"sent_at"`
}

// NewRealtimeService creates the notification bus. Redis and NATS are both
// optional; with neither configured events stay node-local.
func NewRealtimeService(redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) RealtimeService {
	stream := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase + ":events"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".events"
	}

	return &realtimeService{
		redis:       redisClient,
		redisStream: stream,
		nats:        natsConn,
		natsSubject: subject,
		logger:      logger.With().Str("component", "realtime_service").Logger(),
		hub: &realtimeHub{
			rooms: make(map[string]map[*realtimeClient]struct{}),
			log:   logger.With().Str("component", "realtime_hub").Logger(),
		},
		nodeID: uuid.NewString(),
	}
}

// Attach binds the inbound event handlers. Called once during wiring, before
// any connection is served.
func (s *realtimeService) Attach(violations ViolationService, appeals AppealService) {
	s.violations = violations
	s.appeals = appeals
}

func (s *realtimeService) Start(ctx context.Context) {
	if s.redis != nil && s.redisStream != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

// ServeConnection joins the connection to its identity room (or the admins
// room) and pumps events until the connection drops. A reconnecting banned
// student is told about the ban straight away instead of being admitted as
// if unbanned.
func (s *realtimeService) ServeConnection(conn *websocket.Conn, opts ConnectionOptions) {
	baseCtx := opts.Context
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	client := &realtimeClient{
		conn:    conn,
		send:    make(chan dto.RealtimeMessage, realtimeSendBufferSize),
		options: opts,
		service: s,
		closed:  make(chan struct{}),
		baseCtx: baseCtx,
	}

	s.hub.register(client)
	observability.RealtimeConnections().Inc()
	defer observability.RealtimeConnections().Dec()

	client.queue(dto.RealtimeMessage{Event: dto.EventConnected, Data: dto.ConnectedEvent{Identity: opts.Identity}})

	if !opts.Admin && s.violations != nil {
		if ban, banned, err := s.violations.ActiveBan(baseCtx, opts.Identity); err == nil && banned {
			client.queue(dto.RealtimeMessage{Event: dto.EventBan, Data: dto.BanEvent{
				NIS:        ban.NIS,
				Reason:     ban.Reason,
				Violations: ban.Violations,
			}})
		}
	}

	go client.writer()
	client.reader()
}

func (s *realtimeService) Publish(identity, event string, payload interface{}) {
	s.hub.broadcast(identity, dto.RealtimeMessage{Event: event, Data: payload})
	s.fanOut(identity, event, payload)
	observability.EventsPublishedTotal().WithLabelValues(event).Inc()
}

func (s *realtimeService) PublishAdmins(event string, payload interface{}) {
	s.Publish(AdminsRoom, event, payload)
}

func (s *realtimeService) fanOut(identity, event string, payload interface{}) {
	if (s.redis == nil || s.redisStream == "") && (s.nats == nil || s.natsSubject == "") {
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn().Err(err).Str("event", event).Msg("failed to marshal event payload")
		return
	}

	data, err := json.Marshal(busEvent{
		Source:   s.nodeID,
		Identity: identity,
		Event:    event,
		Payload:  raw,
		SentAt:   time.Now().UTC(),
	})
	if err != nil {
		return
	}

	ctx := context.Background()
	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(ctx, s.redisStream, data).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish event to redis")
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, data); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish event to nats")
		}
	}
}

func (s *realtimeService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisStream)
	defer func() {
		_ = pubsub.Close()
	}()
	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("realtime redis subscription closed")
			return
		}
		s.handleBusEvent([]byte(msg.Payload))
	}
}

func (s *realtimeService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "ujian-realtime", func(msg *nats.Msg) {
		s.handleBusEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats realtime subject")
		return
	}
	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain realtime nats subscription")
		}
	}()
}

func (s *realtimeService) handleBusEvent(data []byte) {
	var event busEvent
	if err := json.Unmarshal(data, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid realtime bus event")
		return
	}

	if event.Source == s.nodeID {
		return
	}

	s.hub.broadcast(event.Identity, dto.RealtimeMessage{Event: event.Event, Data: event.Payload})
}

// dispatch routes an inbound websocket event. Malformed payloads are
// logged no-ops: these are fire-and-forget events, not request/response
// calls, so they never terminate the connection.
func (s *realtimeService) dispatch(client *realtimeClient, envelope dto.RealtimeEnvelope) {
	switch envelope.Event {
	case "violation":
		if s.violations == nil {
			return
		}
		var report dto.ViolationReport
		if err := json.Unmarshal(envelope.Data, &report); err != nil {
			s.logger.Warn().Err(err).Msg("malformed violation event")
			return
		}
		if _, err := s.violations.Report(client.baseCtx, report); err != nil {
			s.logger.Warn().Err(err).Str("nis", report.NIS).Msg("violation report dropped")
		}
	case "appeal":
		if s.appeals == nil {
			return
		}
		var submission dto.AppealSubmission
		if err := json.Unmarshal(envelope.Data, &submission); err != nil {
			s.logger.Warn().Err(err).Msg("malformed appeal event")
			return
		}
		if _, err := s.appeals.Submit(client.baseCtx, submission); err != nil {
			s.logger.Warn().Err(err).Str("nis", submission.NIS).Msg("appeal submission dropped")
			return
		}
		client.queue(dto.RealtimeMessage{Event: dto.EventAppealSent, Data: map[string]bool{"ok": true}})
	default:
		s.logger.Debug().Str("event", envelope.Event).Msg("unknown realtime event ignored")
	}
}

func (h *realtimeHub) register(client *realtimeClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := client.options.Identity
	if _, exists := h.rooms[room]; !exists {
		h.rooms[room] = make(map[*realtimeClient]struct{})
	}
	h.rooms[room][client] = struct{}{}
	h.log.Debug().Str("identity", room).Bool("admin", client.options.Admin).Msg("realtime client connected")
}

func (h *realtimeHub) unregister(client *realtimeClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := client.options.Identity
	if clients, ok := h.rooms[room]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
	h.log.Debug().Str("identity", room).Msg("realtime client disconnected")
}

func (h *realtimeHub) broadcast(room string, message dto.RealtimeMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[room] {
		select {
		case client.send <- message:
		default:
			h.log.Warn().Str("identity", room).Str("event", message.Event).Msg("dropping event for slow client")
		}
	}
}

func (c *realtimeClient) queue(message dto.RealtimeMessage) {
	select {
	case c.send <- message:
	default:
		c.service.logger.Warn().Str("identity", c.options.Identity).Msg("send queue full, dropping event")
	}
}

func (c *realtimeClient) reader() {
	defer c.close()

	for {
		var envelope dto.RealtimeEnvelope
		if err := c.conn.ReadJSON(&envelope); err != nil {
			c.service.logger.Debug().Err(err).Msg("realtime read loop ended")
			return
		}

		c.service.dispatch(c, envelope)
	}
}

func (c *realtimeClient) writer() {
	defer c.close()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.service.logger.Debug().Err(err).Msg("realtime write loop terminated")
				return
			}
		case <-time.After(realtimeKeepalive):
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				c.service.logger.Debug().Err(err).Msg("realtime ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *realtimeClient) close() {
	c.once.Do(func() {
		close(c.closed)
		c.service.hub.unregister(c)
		_ = c.conn.Close()
	})
}

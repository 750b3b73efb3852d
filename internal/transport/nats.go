// Package transport moves game events and balancer commands over NATS.
// The game server publishes one JSON message per event on osbase.event.<type>;
// the engine publishes move and chat commands on osbase.cmd.*. When no
// external broker URL is configured an embedded nats-server is started so
// the daemon is self-contained.
package transport

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Pintuzoft/osbase/internal/config"
	"github.com/Pintuzoft/osbase/internal/domain"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// Subjects
const (
	eventPrefix = "osbase.event."
	SubjectMove = "osbase.cmd.move"
	SubjectChat = "osbase.cmd.chat"
)

const embeddedStartTimeout = 5 * time.Second

// Bus is the NATS connection plus the optional embedded broker. It also
// implements balance.Host by publishing commands.
type Bus struct {
	nc  *nats.Conn
	ns  *server.Server
	sub *nats.Subscription
}

// Connect dials the configured broker, starting an embedded one when no URL
// is set.
func Connect(cfg config.NATSConfig) (*Bus, error) {
	b := &Bus{}

	url := cfg.URL
	if url == "" {
		ns, err := server.NewServer(&server.Options{
			Host:   "127.0.0.1",
			Port:   cfg.Port,
			NoSigs: true,
		})
		if err != nil {
			return nil, fmt.Errorf("creating embedded nats server: %w", err)
		}
		go ns.Start()
		if !ns.ReadyForConnections(embeddedStartTimeout) {
			ns.Shutdown()
			return nil, fmt.Errorf("embedded nats server not ready after %v", embeddedStartTimeout)
		}
		b.ns = ns
		url = ns.ClientURL()
		log.Printf("Embedded NATS server listening on %s", url)
	}

	nc, err := nats.Connect(url,
		nats.Name("osbase"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		if b.ns != nil {
			b.ns.Shutdown()
		}
		return nil, fmt.Errorf("connecting to nats at %s: %w", url, err)
	}
	b.nc = nc
	return b, nil
}

// SubscribeEvents delivers every inbound game event to submit. Malformed
// payloads are logged and skipped; they never reach the engine.
func (b *Bus) SubscribeEvents(submit func(domain.GameEvent)) error {
	sub, err := b.nc.Subscribe(eventPrefix+">", func(msg *nats.Msg) {
		kind := strings.TrimPrefix(msg.Subject, eventPrefix)
		ev, err := decodeEvent(kind, msg.Data)
		if err != nil {
			log.Printf("Warning: dropping malformed %s event: %v", kind, err)
			return
		}
		submit(ev)
	})
	if err != nil {
		return fmt.Errorf("subscribing to game events: %w", err)
	}
	b.sub = sub
	return nil
}

// decodeEvent unmarshals the payload struct for each event type. Lifecycle
// events without a payload decode to a nil Data.
func decodeEvent(kind string, payload []byte) (domain.GameEvent, error) {
	ev := domain.GameEvent{Type: kind, Timestamp: time.Now().UTC()}

	var err error
	switch kind {
	case domain.EventPlayerHurt:
		var d domain.PlayerHurtData
		err = json.Unmarshal(payload, &d)
		ev.Data = d
	case domain.EventPlayerDeath:
		var d domain.PlayerDeathData
		err = json.Unmarshal(payload, &d)
		ev.Data = d
	case domain.EventWeaponFire:
		var d domain.WeaponFireData
		err = json.Unmarshal(payload, &d)
		ev.Data = d
	case domain.EventRoundEnd:
		var d domain.RoundEndData
		err = json.Unmarshal(payload, &d)
		ev.Data = d
	case domain.EventMapStart:
		var d domain.MapStartData
		err = json.Unmarshal(payload, &d)
		ev.Data = d
	case domain.EventRoster:
		var d domain.RosterData
		err = json.Unmarshal(payload, &d)
		ev.Data = d
	case domain.EventDisconnect:
		var d domain.DisconnectData
		err = json.Unmarshal(payload, &d)
		ev.Data = d
	case domain.EventRoundStart, domain.EventWarmupEnd, domain.EventHalftime, domain.EventMapEnd:
		// No payload.
	default:
		return ev, fmt.Errorf("unknown event type %q", kind)
	}
	if err != nil {
		return ev, err
	}
	return ev, nil
}

// moveCommand is the wire form of a move order.
type moveCommand struct {
	Handle int    `json:"handle"`
	Side   string `json:"side"`
}

// chatCommand is the wire form of a broadcast.
type chatCommand struct {
	Text string `json:"text"`
}

// MovePlayer publishes a move order. Publish failures are logged; the
// balancing cycle is never aborted over transport trouble.
func (b *Bus) MovePlayer(handle int, side domain.Side) {
	data, _ := json.Marshal(moveCommand{Handle: handle, Side: side.String()})
	if err := b.nc.Publish(SubjectMove, data); err != nil {
		log.Printf("Error publishing move command for #%d: %v", handle, err)
	}
}

// Broadcast publishes a chat broadcast.
func (b *Bus) Broadcast(text string) {
	data, _ := json.Marshal(chatCommand{Text: text})
	if err := b.nc.Publish(SubjectChat, data); err != nil {
		log.Printf("Error publishing chat broadcast: %v", err)
	}
}

// Close drains the subscription and shuts everything down.
func (b *Bus) Close() {
	if b.sub != nil {
		b.sub.Unsubscribe()
	}
	if b.nc != nil {
		b.nc.Close()
	}
	if b.ns != nil {
		b.ns.Shutdown()
	}
}

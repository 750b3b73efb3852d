package transport

import (
	"testing"

	"github.com/Pintuzoft/osbase/internal/domain"
)

func TestDecodeEventKnownPayloads(t *testing.T) {
	ev, err := decodeEvent(domain.EventPlayerHurt, []byte(`{"attacker":3,"victim":7,"damage":42,"hitgroup":1,"weapon":"ak47"}`))
	if err != nil {
		t.Fatalf("decode player_hurt: %v", err)
	}
	hurt, ok := ev.Data.(domain.PlayerHurtData)
	if !ok {
		t.Fatalf("player_hurt data type = %T", ev.Data)
	}
	if hurt.Attacker != 3 || hurt.Victim != 7 || hurt.Damage != 42 || hurt.Hitgroup != domain.HitgroupHead {
		t.Errorf("player_hurt = %+v", hurt)
	}

	ev, err = decodeEvent(domain.EventRoundEnd, []byte(`{"winner":2}`))
	if err != nil {
		t.Fatalf("decode round_end: %v", err)
	}
	if end := ev.Data.(domain.RoundEndData); end.Winner != domain.SideT {
		t.Errorf("round_end winner = %v, want T", end.Winner)
	}

	ev, err = decodeEvent(domain.EventRoster, []byte(`{"players":[{"handle":1,"steam_id":"A","name":"alpha","side":3}]}`))
	if err != nil {
		t.Fatalf("decode roster: %v", err)
	}
	roster := ev.Data.(domain.RosterData)
	if len(roster.Players) != 1 || roster.Players[0].Side != domain.SideCT {
		t.Errorf("roster = %+v", roster)
	}
}

func TestDecodeEventLifecycleHasNoPayload(t *testing.T) {
	for _, kind := range []string{
		domain.EventRoundStart,
		domain.EventWarmupEnd,
		domain.EventHalftime,
		domain.EventMapEnd,
	} {
		ev, err := decodeEvent(kind, nil)
		if err != nil {
			t.Errorf("decode %s: %v", kind, err)
			continue
		}
		if ev.Type != kind || ev.Data != nil {
			t.Errorf("%s decoded to %+v, want nil data", kind, ev)
		}
	}
}

func TestDecodeEventRejectsMalformedAndUnknown(t *testing.T) {
	if _, err := decodeEvent(domain.EventPlayerHurt, []byte(`{"attacker":"notanumber"}`)); err == nil {
		t.Error("malformed payload decoded without error")
	}
	if _, err := decodeEvent("made_up_event", []byte(`{}`)); err == nil {
		t.Error("unknown event type decoded without error")
	}
}

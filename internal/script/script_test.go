package script

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"datacenter/internal/hardware"
	"datacenter/internal/ticket"
)

func TestParse_AllActions(t *testing.T) {
	data := []byte(`{
  "seed": 3,
  "actions": [
    {"op": "ticket", "answer": {"container": "ServerContainer2", "server": "Server1", "hardwareType": "Ram", "taskType": "Upgrade ram"}},
    {"op": "power", "online": false},
    {"op": "remove", "slot": "RamSlot1"},
    {"op": "install", "slot": "RamSlot1", "component": {"kind": "ram", "capacity": 32}},
    {"op": "install", "container": "ServerContainer0", "server": "Server0", "slot": "HddSlot2", "component": {"kind": "hdd", "broken": true}},
    {"op": "install", "slot": "RamSlot1", "from": "RamSlot1"},
    {"op": "power", "online": true},
    {"op": "close"}
  ]
}`)

	s, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Seed == nil || *s.Seed != 3 {
		t.Errorf("expected seed 3, got %v", s.Seed)
	}
	if len(s.Actions) != 8 {
		t.Fatalf("expected 8 actions, got %d", len(s.Actions))
	}

	want := ticket.Answer{Container: "ServerContainer2", Server: "Server1", HardwareType: "Ram", TaskType: "Upgrade ram"}
	if s.Actions[0].Answer != want {
		t.Errorf("expected answer %+v, got %+v", want, s.Actions[0].Answer)
	}
	if s.Actions[1].Op != OpPower || s.Actions[1].Online {
		t.Errorf("expected power off, got %+v", s.Actions[1])
	}

	ram := s.Actions[3]
	if ram.Component == nil || ram.Component.Kind != hardware.KindRAM || ram.Component.Capacity != 32 {
		t.Errorf("unexpected ram install %+v", ram)
	}
	hdd := s.Actions[4]
	if hdd.Container != "ServerContainer0" || hdd.Server != "Server0" {
		t.Errorf("expected explicit location, got %q/%q", hdd.Container, hdd.Server)
	}
	if hdd.Component == nil || !hdd.Component.Broken {
		t.Errorf("expected broken drive, got %+v", hdd.Component)
	}
	if s.Actions[5].From != "RamSlot1" || s.Actions[5].Component != nil {
		t.Errorf("expected move from RamSlot1, got %+v", s.Actions[5])
	}
	if s.Actions[7].Op != OpClose {
		t.Errorf("expected close, got %q", s.Actions[7].Op)
	}
}

func TestParse_NoSeed(t *testing.T) {
	s, err := Parse([]byte(`{"actions": []}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Seed != nil {
		t.Errorf("expected no seed, got %d", *s.Seed)
	}
	if len(s.Actions) != 0 {
		t.Errorf("expected no actions, got %d", len(s.Actions))
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
		wantMsg string
	}{
		{"invalid json", `{"actions": [`, ErrInvalidScript, "not valid JSON"},
		{"missing actions", `{"seed": 1}`, ErrInvalidScript, "actions must be an array"},
		{"string seed", `{"seed": "x", "actions": []}`, ErrInvalidScript, "seed"},
		{"unknown op", `{"actions": [{"op": "reboot"}]}`, ErrUnknownAction, "reboot"},
		{"remove without slot", `{"actions": [{"op": "remove"}]}`, ErrInvalidScript, "needs a slot"},
		{"install without source", `{"actions": [{"op": "install", "slot": "RamSlot0"}]}`, ErrInvalidScript, "exactly one"},
		{"install with both sources", `{"actions": [{"op": "install", "slot": "RamSlot0", "from": "RamSlot1", "component": {"kind": "ram", "capacity": 8}}]}`, ErrInvalidScript, "exactly one"},
		{"ram without capacity", `{"actions": [{"op": "install", "slot": "RamSlot0", "component": {"kind": "ram"}}]}`, ErrInvalidScript, "positive capacity"},
		{"unknown kind", `{"actions": [{"op": "install", "slot": "X", "component": {"kind": "gpu"}}]}`, ErrInvalidScript, "gpu"},
		{"power without flag", `{"actions": [{"op": "power"}]}`, ErrInvalidScript, "boolean"},
		{"ticket without answer", `{"actions": [{"op": "ticket"}]}`, ErrInvalidScript, "answer"},
		{"half a location", `{"actions": [{"op": "remove", "slot": "RamSlot0", "server": "Server0"}]}`, ErrInvalidScript, "together"},
		{"not an object", `{"actions": [42]}`, ErrInvalidScript, "object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected error containing %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestParse_ReportsEveryBadAction(t *testing.T) {
	_, err := Parse([]byte(`{"actions": [{"op": "jump"}, {"op": "close"}, {"op": "remove"}]}`))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "actions[0]") || !strings.Contains(err.Error(), "actions[2]") {
		t.Errorf("expected both bad actions in error, got %q", err.Error())
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replay.json")
	if err := os.WriteFile(path, []byte(`{"actions": [{"op": "close"}]}`), 0644); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Actions) != 1 {
		t.Errorf("expected 1 action, got %d", len(s.Actions))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestAction_String(t *testing.T) {
	tests := []struct {
		action Action
		want   string
	}{
		{Action{Op: OpInstall, Slot: "RamSlot0", Component: &ComponentSpec{Kind: hardware.KindRAM}}, "install new ram into RamSlot0"},
		{Action{Op: OpInstall, Slot: "RamSlot0", From: "RamSlot2"}, "install RamSlot2 component into RamSlot0"},
		{Action{Op: OpRemove, Slot: "HddSlot1"}, "remove HddSlot1"},
		{Action{Op: OpPower, Online: true}, "power on"},
		{Action{Op: OpClose}, "close"},
	}
	for _, tt := range tests {
		if got := tt.action.String(); got != tt.want {
			t.Errorf("String() = %q, expected %q", got, tt.want)
		}
	}
}

// Package script parses JSON replay scripts of player actions.
//
// A script looks like:
//
//	{
//	  "seed": 3,
//	  "actions": [
//	    {"op": "ticket", "answer": {"container": "ServerContainer2", "server": "Server1", "hardwareType": "Ram", "taskType": "Upgrade ram"}},
//	    {"op": "power", "online": false},
//	    {"op": "remove", "slot": "RamSlot1"},
//	    {"op": "install", "slot": "RamSlot1", "component": {"kind": "ram", "capacity": 32}},
//	    {"op": "install", "slot": "RamSlot1", "from": "RamSlot1"},
//	    {"op": "power", "online": true},
//	    {"op": "close"}
//	  ]
//	}
//
// Actions without container and server apply to the problem server.
package script

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"datacenter/internal/hardware"
	"datacenter/internal/ticket"
)

var (
	ErrInvalidScript = errors.New("invalid replay script")
	ErrUnknownAction = errors.New("unknown action")
)

// Op names a player action.
type Op string

const (
	OpInstall Op = "install"
	OpRemove  Op = "remove"
	OpPower   Op = "power"
	OpTicket  Op = "ticket"
	OpClose   Op = "close"
)

// ComponentSpec describes a new component taken from the spare parts shelf.
type ComponentSpec struct {
	Kind     hardware.Kind
	Capacity int
	Broken   bool
}

// Action is one step of a replay.
type Action struct {
	Op        Op
	Container string
	Server    string
	Slot      string
	// Component is set when a new part is installed.
	Component *ComponentSpec
	// From names the slot whose current or last removed component is moved.
	From   string
	Online bool
	Answer ticket.Answer
}

func (a Action) String() string {
	switch a.Op {
	case OpInstall:
		if a.Component != nil {
			return fmt.Sprintf("install new %s into %s", a.Component.Kind, a.Slot)
		}
		return fmt.Sprintf("install %s component into %s", a.From, a.Slot)
	case OpRemove:
		return fmt.Sprintf("remove %s", a.Slot)
	case OpPower:
		if a.Online {
			return "power on"
		}
		return "power off"
	}
	return string(a.Op)
}

// Script is a parsed replay.
type Script struct {
	Seed    *int64
	Actions []Action
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script file: %w", err)
	}
	return Parse(data)
}

// Parse parses a script, reporting every malformed action at once.
func Parse(data []byte) (*Script, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidScript)
	}
	root := gjson.ParseBytes(data)

	s := &Script{}
	if seed := root.Get("seed"); seed.Exists() {
		if seed.Type != gjson.Number {
			return nil, fmt.Errorf("%w: seed must be a number", ErrInvalidScript)
		}
		v := seed.Int()
		s.Seed = &v
	}

	actions := root.Get("actions")
	if !actions.IsArray() {
		return nil, fmt.Errorf("%w: actions must be an array", ErrInvalidScript)
	}

	var errs []error
	for i, raw := range actions.Array() {
		a, err := parseAction(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("actions[%d]: %w", i, err))
			continue
		}
		s.Actions = append(s.Actions, a)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return s, nil
}

func parseAction(raw gjson.Result) (Action, error) {
	if !raw.IsObject() {
		return Action{}, fmt.Errorf("%w: action must be an object", ErrInvalidScript)
	}

	a := Action{
		Op:        Op(raw.Get("op").String()),
		Container: raw.Get("container").String(),
		Server:    raw.Get("server").String(),
		Slot:      raw.Get("slot").String(),
		From:      raw.Get("from").String(),
	}
	if (a.Container == "") != (a.Server == "") {
		return Action{}, fmt.Errorf("%w: container and server must be given together", ErrInvalidScript)
	}

	switch a.Op {
	case OpInstall:
		if a.Slot == "" {
			return Action{}, fmt.Errorf("%w: install needs a slot", ErrInvalidScript)
		}
		if c := raw.Get("component"); c.Exists() {
			spec, err := parseComponent(c)
			if err != nil {
				return Action{}, err
			}
			a.Component = spec
		}
		if (a.Component == nil) == (a.From == "") {
			return Action{}, fmt.Errorf("%w: install needs exactly one of component or from", ErrInvalidScript)
		}
	case OpRemove:
		if a.Slot == "" {
			return Action{}, fmt.Errorf("%w: remove needs a slot", ErrInvalidScript)
		}
	case OpPower:
		online := raw.Get("online")
		if !online.IsBool() {
			return Action{}, fmt.Errorf("%w: power needs a boolean online", ErrInvalidScript)
		}
		a.Online = online.Bool()
	case OpTicket:
		answer := raw.Get("answer")
		if !answer.IsObject() {
			return Action{}, fmt.Errorf("%w: ticket needs an answer", ErrInvalidScript)
		}
		a.Answer = ticket.Answer{
			Container:    answer.Get("container").String(),
			Server:       answer.Get("server").String(),
			HardwareType: answer.Get("hardwareType").String(),
			TaskType:     answer.Get("taskType").String(),
		}
	case OpClose:
	default:
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, a.Op)
	}
	return a, nil
}

func parseComponent(c gjson.Result) (*ComponentSpec, error) {
	kind, err := hardware.ParseKind(c.Get("kind").String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	spec := &ComponentSpec{Kind: kind, Broken: c.Get("broken").Bool()}
	if kind == hardware.KindRAM {
		capacity := c.Get("capacity")
		if capacity.Type != gjson.Number || capacity.Int() <= 0 {
			return nil, fmt.Errorf("%w: ram component needs a positive capacity", ErrInvalidScript)
		}
		spec.Capacity = int(capacity.Int())
	}
	return spec, nil
}

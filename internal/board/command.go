package board

import (
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/kanban/pkg/types"
)

// Command is the wire form of a mutation: its name and its payload.
type Command struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewCommand wraps a mutation into a Command.
func NewCommand(m Mutation) (Command, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return Command{}, fmt.Errorf("encode %s: %w", m.Name(), err)
	}
	return Command{Type: m.Name(), Payload: payload}, nil
}

// Mutation decodes the payload into the mutation named by Type.
func (c Command) Mutation() (Mutation, error) {
	var m Mutation
	var err error
	switch c.Type {
	case NameAddTask:
		m, err = decode[AddTask](c.Payload)
	case NameUpdateTask:
		m, err = decode[UpdateTask](c.Payload)
	case NameDeleteTask:
		m, err = decode[DeleteTask](c.Payload)
	case NameMoveTask:
		m, err = decode[MoveTask](c.Payload)
	case NameMoveToNextStage:
		m, err = decode[MoveToNextStage](c.Payload)
	case NameMoveToSpecificStage:
		m, err = decode[MoveToSpecificStage](c.Payload)
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownMutation, c.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", c.Type, err)
	}
	return m, nil
}

func decode[T Mutation](payload json.RawMessage) (T, error) {
	var m T
	if len(payload) == 0 {
		return m, nil
	}
	err := json.Unmarshal(payload, &m)
	return m, err
}

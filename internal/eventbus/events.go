package eventbus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Типы событий игры
const (
	TypeBlockDestroyed = "BlockDestroyed"
	TypeCommand        = "CommandApplied"
)

// Source - имя сервиса в конвертах
const Source = "breaknblocks"

// BlockDestroyedPayload - полезная нагрузка TypeBlockDestroyed
type BlockDestroyedPayload struct {
	Kind        string  `json:"kind"`
	Resource    string  `json:"resource,omitempty"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Depth       int     `json:"depth"`
	HasBonus    bool    `json:"has_bonus,omitempty"`
	FromAbility bool    `json:"from_ability,omitempty"`
}

// CommandPayload - полезная нагрузка TypeCommand
type CommandPayload struct {
	Command string `json:"command"`
	Name    string `json:"name,omitempty"`
	Items   int    `json:"items,omitempty"`
	Earned  int    `json:"earned,omitempty"`
	Remote  string `json:"remote,omitempty"`
}

// NewEnvelope упаковывает payload в JSON-конверт с новым UUID
func NewEnvelope(eventType string, priority int, payload any) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", eventType, err)
	}
	return &Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    Source,
		EventType: eventType,
		Version:   1,
		Priority:  priority,
		Payload:   data,
	}, nil
}

// Decode разбирает полезную нагрузку конверта
func Decode[T any](ev *Envelope) (T, error) {
	var v T
	if err := json.Unmarshal(ev.Payload, &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", ev.EventType, err)
	}
	return v, nil
}

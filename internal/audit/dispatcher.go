package audit

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Event struct {
	BusinessID uuid.UUID
	UserID     *uuid.UUID
	Action     string
	Entity     string
	EntityID   *uuid.UUID
	Metadata   any
}

// Dispatcher writes audit events off the request path through a buffered
// channel. A full queue drops the event rather than blocking the API.
type Dispatcher struct {
	logger *Logger
	queue  chan Event
}

func NewDispatcher(logger *Logger) *Dispatcher {
	d := &Dispatcher{
		logger: logger,
		queue:  make(chan Event, 100),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	for ev := range d.queue {
		if err := d.logger.Log(
			ev.BusinessID,
			ev.UserID,
			ev.Action,
			ev.Entity,
			ev.EntityID,
			ev.Metadata,
		); err != nil {
			log.Error().Err(err).Str("action", ev.Action).Msg("audit write failed")
		}
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	select {
	case d.queue <- ev:
	default:
		log.Warn().Str("action", ev.Action).Msg("audit queue full, dropping event")
	}
}

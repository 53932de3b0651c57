package tracker

import (
	"github.com/charmbracelet/log"
)

// LoggingSubscriber writes every event to a logger.
type LoggingSubscriber struct {
	logger *log.Logger
}

func NewLoggingSubscriber(logger *log.Logger) *LoggingSubscriber {
	return &LoggingSubscriber{logger: logger.WithPrefix("events")}
}

func (s *LoggingSubscriber) OnEvent(event Event) {
	switch e := event.(type) {
	case HandStartedEvent:
		s.logger.Info("Hand started", "hand", e.HandID(), "players", len(e.Players), "stakes", e.Stakes)
	case ActionRecordedEvent:
		s.logger.Info("Action",
			"hand", e.HandID(),
			"seq", e.Action.Sequence,
			"street", e.Action.Street,
			"player", e.Player,
			"action", e.Action.Type,
			"amount", e.Action.Amount,
			"auto", e.Action.AutoFilled,
			"pot", e.PotAfter)
	case ActionUndoneEvent:
		s.logger.Info("Undo", "hand", e.HandID(), "removed", len(e.Removed))
	case StreetAdvancedEvent:
		s.logger.Info("Street", "hand", e.HandID(), "street", e.Street, "pot", e.Pot, "board", e.Board)
	default:
		s.logger.Debug("Event", "hand", event.HandID(), "type", event.EventType())
	}
}

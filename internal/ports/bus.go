package ports

type EventBus interface {
	Publish(topic string, payload []byte)
	Subscribe() (ch <-chan Event, cancel func())
}

type Event struct {
	Topic   string
	Payload []byte
}

// Topics publiés par le cœur countdown.
const (
	TopicCountdownUpdated = "countdown.updated"
	TopicCycleTracked     = "cycle.tracked"
)

package logic

// OrderEventsTopic is the queue sent order events are mirrored to for the
// notification bridges (Telegram, push). Type-safe so Wire can inject it.
type OrderEventsTopic string

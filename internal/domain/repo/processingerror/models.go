package processingerror

import "time"

type ProcessingError struct {
	ProcessingContext ProcessingContext
	Sources           Sources
	Reason            Reason
}

type ProcessingContext struct {
	Component Component
	Role      string
	Time      time.Time
	Host      string
}

type Component struct {
	Branch   string
	Revision string
}

type Sources struct {
	Main       Source
	Additional []KeyValue
}

// Source is the bus record that could not be processed.
type Source struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       string
	Payload   []byte
}

type KeyValue struct {
	Source string
	Key    string
	Value  []byte
}

type Reason struct {
	Category string
	Error    string
}

package errors

import "fmt"

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrUnknownKind      = fmt.Errorf("unknown message kind")
	ErrInvalidOperation = fmt.Errorf("invalid operation payload")
	ErrSlowConsumer     = fmt.Errorf("send buffer full, frame dropped")
)

package relation

import "errors"

var (
	ErrReadConnectNotInitialed = errors.New("read connect not initialed")
	ErrReadFailed              = errors.New("read failed")
)

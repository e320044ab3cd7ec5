package message

import "errors"

var ErrUnexpectedType = errors.New("unexpected message type")

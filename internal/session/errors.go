package session

import "errors"

// ErrTransportNotReady is returned by StartCall and EndCall when no voice
// transport has been configured.
var ErrTransportNotReady = errors.New("voice transport not ready")

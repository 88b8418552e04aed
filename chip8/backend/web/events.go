package web

// Message types are the first byte of every websocket message.
const (
	// MsgFrame is followed by the packed framebuffer (server to client).
	MsgFrame byte = iota
	// MsgKeyDown and MsgKeyUp are followed by a keypad index (client to server).
	MsgKeyDown
	MsgKeyUp
	// MsgAction is followed by an emulator action id (client to server).
	MsgAction
)

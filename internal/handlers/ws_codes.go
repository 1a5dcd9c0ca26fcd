// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the room handler. These give clients
// a more specific reason for closure than the standard codes.
const (
	BadSubprotocolError   = 3000 // client connected with an unsupported subprotocol
	InvalidAuthTokenError = 3001 // auth token was invalid or expired
	InvalidUserIDError    = 3002 // user ID derived from the token was malformed
	InvalidRoomIDError    = 3003 // target room ID in the WS URL does not exist
)

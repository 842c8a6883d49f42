package network

// 消息ID
const (
	MsgTypeHeartbeat   = 1
	MsgTypeLogin       = 100
	MsgTypeJoinLobby   = 101
	MsgTypeLeaveLobby  = 102
	MsgTypeCreateLobby = 103
	MsgTypeAddBots     = 104
	MsgTypeStartGame   = 105
	MsgTypeRemoveBot   = 106
	MsgTypeNightAction = 201
	MsgTypeCastVote    = 202
	MsgTypeGetLobby    = 203
	MsgTypeLobbyState  = 301
	MsgTypeGameOver    = 302
	MsgTypeError       = 399
)

// MaxPayload is the largest body the 2-byte length field can describe.
const MaxPayload = 1<<16 - 1

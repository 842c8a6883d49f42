package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wfunc/mafiaserver/broadcast"
	"github.com/wfunc/mafiaserver/logger"
	"github.com/wfunc/mafiaserver/network"
)

// send formats and sends a message to the WebSocket server.
func send(c *websocket.Conn, msgID uint16, req interface{}) error {
	var data []byte
	if req != nil {
		var err error
		if data, err = json.Marshal(req); err != nil {
			return err
		}
	}
	packet, err := network.Encode(msgID, data)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.BinaryMessage, packet)
}

// command 把一行输入转换成请求
func command(line string) (uint16, interface{}, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, nil, false
	}
	arg := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}

	switch fields[0] {
	case "login":
		return network.MsgTypeLogin, map[string]string{"name": arg(1), "playerId": arg(2)}, true
	case "create":
		return network.MsgTypeCreateLobby, nil, true
	case "join":
		return network.MsgTypeJoinLobby, map[string]string{"joinCode": arg(1)}, true
	case "leave":
		return network.MsgTypeLeaveLobby, nil, true
	case "bots":
		n, err := strconv.Atoi(arg(1))
		if err != nil {
			return 0, nil, false
		}
		return network.MsgTypeAddBots, map[string]int{"count": n}, true
	case "kick":
		return network.MsgTypeRemoveBot, map[string]string{"botId": arg(1)}, true
	case "start":
		return network.MsgTypeStartGame, map[string]string{"userRole": arg(1)}, true
	case "act":
		return network.MsgTypeNightAction, map[string]string{"targetId": arg(1)}, true
	case "vote":
		return network.MsgTypeCastVote, map[string]string{"targetId": arg(1)}, true
	case "state":
		return network.MsgTypeGetLobby, nil, true
	}
	return 0, nil, false
}

func printLobby(data []byte) {
	var view broadcast.LobbyView
	if err := json.Unmarshal(data, &view); err != nil {
		logger.Log.Warnw("bad lobby payload", "error", err)
		return
	}
	l := view.Lobby
	logger.Log.Infow("lobby", "id", l.ID, "code", l.JoinCode, "status", l.Status, "players", len(l.Players), "remainingMs", view.RemainingMs)
	if gs := l.GameState; gs != nil {
		for _, p := range gs.Players {
			logger.Log.Infow("  seat", "id", p.ID, "name", p.Name, "role", p.Role, "hp", p.HP, "alive", p.IsAlive)
		}
		logger.Log.Infow("  phase", "phase", gs.CurrentPhase(), "round", gs.Round, "ended", gs.GameEnded, "winner", gs.Winner)
	}
}

func printGameOver(data []byte) {
	var over broadcast.GameOverView
	if err := json.Unmarshal(data, &over); err != nil {
		logger.Log.Warnw("bad game over payload", "error", err)
		return
	}
	logger.Log.Infow("game over", "lobby", over.LobbyID, "winner", over.Winner, "rounds", over.Rounds)
	for _, p := range over.Players {
		logger.Log.Infow("  seat", "id", p.ID, "name", p.Name, "role", p.Role, "alive", p.IsAlive)
	}
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	flag.Parse()

	logger.Init(true)
	defer logger.Sync()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	logger.Log.Infof("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		logger.Log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				logger.Log.Infow("read error", "error", err)
				return
			}
			packet, err := network.Decode(message)
			if err != nil {
				logger.Log.Warnw("invalid packet", "size", len(message))
				continue
			}
			switch packet.MsgID {
			case network.MsgTypeHeartbeat:
			case network.MsgTypeLobbyState, network.MsgTypeGetLobby, network.MsgTypeCreateLobby, network.MsgTypeJoinLobby:
				printLobby(packet.Data)
			case network.MsgTypeGameOver:
				printGameOver(packet.Data)
			default:
				logger.Log.Infof("<- RECV (ID: %d): %s", packet.MsgID, string(packet.Data))
			}
		}
	}()

	lines := make(chan string)
	go func() {
		reader := bufio.NewScanner(os.Stdin)
		for reader.Scan() {
			lines <- reader.Text()
		}
	}()

	heartbeat := time.NewTicker(10 * time.Second)
	defer heartbeat.Stop()

	logger.Log.Info("Commands: login <name> [id] | create | join <code> | leave | bots <n> | kick <botId> | start [role] | act <target> | vote <target> | state")

	for {
		select {
		case <-done:
			return
		case <-heartbeat.C:
			if err := send(c, network.MsgTypeHeartbeat, nil); err != nil {
				logger.Log.Infow("write error", "error", err)
				return
			}
		case line := <-lines:
			msgID, req, ok := command(line)
			if !ok {
				logger.Log.Warnf("unknown command %q", line)
				continue
			}
			if err := send(c, msgID, req); err != nil {
				logger.Log.Infow("write error", "error", err)
				return
			}
		case <-interrupt:
			logger.Log.Info("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				logger.Log.Infow("write close error", "error", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		}
	}
}

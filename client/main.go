package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/pflag"

	"github.com/wfunc/neonwhisper/models"
	"github.com/wfunc/neonwhisper/network"
)

const usage = `commands:
  create <name> [easy|medium|hard]
  join <code> <name>
  ready | start | dismiss | state | again | leave
  clue <text>
  vote <playerId>`

var errUsage = errors.New("unknown command, type 'help'")

// current remembers the room this client sits in.
type current struct {
	mu   sync.Mutex
	code string
}

func (c *current) get() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.code
}

func (c *current) set(code string) {
	c.mu.Lock()
	c.code = code
	c.mu.Unlock()
}

// parseCommand turns one input line into an event and its payload.
func parseCommand(line, code string) (string, any, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil, errUsage
	}
	rest := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
	room := models.RoomRequest{RoomCode: code}

	switch fields[0] {
	case "create":
		req := models.CreateRoomRequest{}
		if len(fields) > 1 {
			req.PlayerName = fields[1]
		}
		if len(fields) > 2 {
			req.Difficulty = models.Difficulty(fields[2])
		}
		return network.EventCreateRoom, req, nil
	case "join":
		if len(fields) < 2 {
			return "", nil, errUsage
		}
		req := models.JoinRoomRequest{RoomCode: fields[1]}
		if len(fields) > 2 {
			req.PlayerName = strings.Join(fields[2:], " ")
		}
		return network.EventJoinRoom, req, nil
	case "ready":
		return network.EventToggleReady, room, nil
	case "start":
		return network.EventStartGame, room, nil
	case "dismiss":
		return network.EventDismissRoleReveal, room, nil
	case "state":
		return network.EventGetRoomState, room, nil
	case "again":
		return network.EventPlayAgain, room, nil
	case "leave":
		return network.EventLeaveRoom, room, nil
	case "clue":
		return network.EventSubmitClue, models.SubmitClueRequest{RoomCode: code, Clue: rest}, nil
	case "vote":
		if len(fields) < 2 {
			return "", nil, errUsage
		}
		return network.EventSubmitVote, models.SubmitVoteRequest{RoomCode: code, TargetID: fields[1]}, nil
	}
	return "", nil, errUsage
}

func main() {
	addr := pflag.StringP("addr", "a", "localhost:3001", "server host:port")
	pflag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	room := &current{}
	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			env, err := network.Decode(message)
			if err != nil {
				log.Printf("Received invalid frame: %v", err)
				continue
			}
			if env.Event == network.EventRoomCreated || env.Event == network.EventRoomJoined {
				var joined models.RoomJoined
				if json.Unmarshal(env.Data, &joined) == nil {
					room.set(joined.RoomCode)
				}
			}
			log.Printf("<- %s %s", env.Event, string(env.Data))
		}
	}()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	fmt.Println(usage)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if strings.TrimSpace(line) == "help" {
				fmt.Println(usage)
				continue
			}
			event, payload, err := parseCommand(line, room.get())
			if err != nil {
				log.Println(err)
				continue
			}
			frame, err := network.Encode(event, payload)
			if err != nil {
				log.Println("Encode error:", err)
				continue
			}
			if err := c.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Println("Write error:", err)
				return
			}
			log.Printf("-> %s", event)
		}
	}
}

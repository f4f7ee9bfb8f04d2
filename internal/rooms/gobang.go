package rooms

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/momentchat/moment/internal/protocol"
)

const (
	boardSize = 15

	// forfeitTimeout is how long a seated player may stay disconnected
	// mid-match before the opponent wins by default.
	forfeitTimeout = 300 * time.Second
)

// GobangRoom runs one five-in-a-row match at a time on top of the chat
// relay. Two authenticated users take the black and white seats; everyone
// else spectates. Board cells are 0 empty, 1 black, 2 white; board[y][x].
type GobangRoom struct {
	baseRoom

	stateMu  sync.Mutex
	rng      *rand.Rand
	black    int64
	white    int64
	joined   map[int64]bool
	started  bool
	finished bool
	board    [][]int
	turn     int
	winner   int
	forfeits map[int64]*time.Timer
}

// gobangState is the per-recipient GOBANG_STATE payload, JSON-encoded into
// the chat frame content.
type gobangState struct {
	Board       [][]int `json:"board"`
	CurrentTurn int     `json:"current_turn"`
	Finished    bool    `json:"finished"`
	Winner      string  `json:"winner"`
	Role        string  `json:"role"`
	RoomID      int64   `json:"room_id"`
	Started     bool    `json:"started"`
}

func newGobangRoom(id int64, log *logrus.Entry) *GobangRoom {
	return &GobangRoom{
		baseRoom: newBaseRoom(TypeGobang, id, log),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		joined:   make(map[int64]bool),
		board:    newBoard(),
		turn:     1,
		forfeits: make(map[int64]*time.Timer),
	}
}

func (r *GobangRoom) Join(c *Conn) {
	n := r.register(c)
	r.publishEvent(c, "join", n)
	r.announceJoin(c)

	r.stateMu.Lock()
	if !c.Anonymous {
		if t, ok := r.forfeits[c.UserID]; ok {
			t.Stop()
			delete(r.forfeits, c.UserID)
		}
	}
	state := r.stateFrameLocked(c)
	r.stateMu.Unlock()

	r.sendSystemTo(c, "你是观战者，本局落子权只属于黑子和白子玩家")
	r.sendTo(c, state)
}

func (r *GobangRoom) HandleFrame(c *Conn, env *protocol.Envelope) {
	if env.Chat == nil {
		return
	}
	msg := env.Chat
	switch msg.Type {
	case protocol.MsgGobangJoin:
		r.handleMatchJoin(c)
	case protocol.MsgGobangLeave:
		r.handleMatchLeave(c)
	case protocol.MsgGobangMove:
		r.handleMove(c, msg.Content)
	default:
		r.handleChat(c, msg)
	}
}

// Leave arms the forfeit clock when a seated player drops mid-match.
// Reconnecting under the same user id disarms it (see Join).
func (r *GobangRoom) Leave(c *Conn) {
	n := r.unregister(c)
	r.publishEvent(c, "leave", n)
	r.announceLeave(c)

	if c.Anonymous {
		return
	}
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	if r.started && !r.finished && (c.UserID == r.black || c.UserID == r.white) {
		if t, ok := r.forfeits[c.UserID]; ok {
			t.Stop()
		}
		userID := c.UserID
		r.forfeits[userID] = time.AfterFunc(forfeitTimeout, func() {
			r.forfeit(userID)
		})
	}
}

func (r *GobangRoom) handleMatchJoin(c *Conn) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()

	if c.Anonymous {
		r.sendSystemTo(c, "未登录用户不能加入对局，只能观战。")
		return
	}
	if r.finished {
		r.sendSystemTo(c, "本局已经结束，不能再加入，只能观战。")
		return
	}
	if c.UserID == r.black || c.UserID == r.white || r.joined[c.UserID] {
		r.sendSystemTo(c, "你已经在本局中，无需重复加入。")
		return
	}
	if r.black != 0 && r.white != 0 {
		r.sendSystemTo(c, "本局已满两名玩家，你只能作为观战者。")
		return
	}

	r.joined[c.UserID] = true

	if len(r.joined) < 2 {
		r.sendSystemTo(c, "已加入对局，等待另一位玩家加入...")
		r.systemText(systemUser, fmt.Sprintf("%s 已加入本局，等待另一位玩家...", c.Username))
		r.broadcastStateLocked()
		return
	}

	// Two players are in; deal the colours and start.
	ids := make([]int64, 0, 2)
	for id := range r.joined {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if r.rng.Intn(2) == 1 {
		ids[0], ids[1] = ids[1], ids[0]
	}
	r.black, r.white = ids[0], ids[1]
	r.started = true
	r.turn = 1

	r.systemText(systemUser, fmt.Sprintf("五子棋对局开始：黑子（user_id=%d），白子（user_id=%d）。", r.black, r.white))
	r.broadcastStateLocked()
}

// handleMatchLeave removes the caller from the waiting queue. Seated players
// cannot quit a started match.
func (r *GobangRoom) handleMatchLeave(c *Conn) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()

	if c.Anonymous {
		r.sendSystemTo(c, "未登录用户不能退出对局。")
		return
	}
	if r.started {
		r.sendSystemTo(c, "对局已开始，不能退出对局。")
		return
	}
	if !r.joined[c.UserID] {
		r.sendSystemTo(c, "你当前未在对局等待队列中，无需退出。")
		return
	}

	delete(r.joined, c.UserID)
	r.systemText(systemUser, fmt.Sprintf("%s 退出了本局等待队列。", c.Username))
	r.broadcastStateLocked()
}

func (r *GobangRoom) handleMove(c *Conn, content string) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()

	if r.finished {
		r.sendSystemTo(c, "本房间的五子棋对局已经结束，不能再落子。")
		return
	}
	if !r.started || r.black == 0 || r.white == 0 {
		r.sendSystemTo(c, "五子棋对局尚未开始或玩家尚未就位。")
		return
	}
	if c.Anonymous {
		r.sendSystemTo(c, "未登录用户不能参与五子棋对局，只能观战。")
		return
	}

	var colour int
	switch c.UserID {
	case r.black:
		colour = 1
	case r.white:
		colour = 2
	default:
		r.sendSystemTo(c, "你不是本局的对战玩家，只能观战。")
		return
	}
	if colour != r.turn {
		r.sendSystemTo(c, "还没轮到你落子。")
		return
	}

	var mv struct {
		X *int `json:"x"`
		Y *int `json:"y"`
	}
	if err := json.Unmarshal([]byte(content), &mv); err != nil || mv.X == nil || mv.Y == nil {
		r.sendSystemTo(c, `指令格式错误，应为 JSON: {"x": 7, "y": 7}`)
		return
	}
	x, y := *mv.X, *mv.Y
	if x < 0 || x >= boardSize || y < 0 || y >= boardSize {
		r.sendSystemTo(c, fmt.Sprintf("坐标越界，合法范围为 [0, %d]。", boardSize-1))
		return
	}
	if r.board[y][x] != 0 {
		r.sendSystemTo(c, "该位置已经有棋子了，请选择其他位置。")
		return
	}

	r.board[y][x] = colour

	if winsAt(r.board, x, y, colour) {
		r.finished = true
		r.winner = colour

		blackName := r.usernameOf(r.black)
		whiteName := r.usernameOf(r.white)
		winnerName, stoneLabel := blackName, "黑子"
		if colour == 2 {
			winnerName, stoneLabel = whiteName, "白子"
		}
		r.announceMatchOver(fmt.Sprintf(
			"🎮 对局结束！黑方：%s vs 白方：%s —— %s（%s）获胜！可点击「加入对局」开始新一局。",
			blackName, whiteName, winnerName, stoneLabel,
		))
		r.resetMatchLocked()
	} else {
		r.turn = 3 - r.turn
		next := "黑子"
		if r.turn == 2 {
			next = "白子"
		}
		r.systemText(systemUser, fmt.Sprintf("%s 在 (%d, %d) 落子成功，下一手轮到 %s。", c.Username, x, y, next))
	}

	r.broadcastStateLocked()
}

// forfeit ends the match against a seated player who stayed disconnected
// past the timeout. Stale timers from an already-reset match are no-ops.
func (r *GobangRoom) forfeit(userID int64) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()

	delete(r.forfeits, userID)
	if !r.started || r.finished {
		return
	}
	if userID != r.black && userID != r.white {
		return
	}

	otherID, seatLabel := r.black, "白方"
	if userID == r.black {
		otherID, seatLabel = r.white, "黑方"
	}
	r.announceMatchOver(fmt.Sprintf(
		"⏱ 对局结束！%s（%s）断线超过 5 分钟，另一方 %s 获胜。可点击「加入对局」开始新一局。",
		r.usernameOf(userID), seatLabel, r.usernameOf(otherID),
	))
	r.resetMatchLocked()
	r.broadcastStateLocked()
}

// announceMatchOver broadcasts the verdict twice: as a SYSTEM banner and as
// a USER_TEXT line so it also shows in the chat history.
func (r *GobangRoom) announceMatchOver(notice string) {
	r.systemText(systemUser, notice)
	r.broadcast(protocol.ChatFrame(&protocol.ChatMessage{
		User:      systemUser,
		RoomID:    r.id,
		Content:   notice,
		Timestamp: nowMillis(),
		Type:      protocol.MsgUserText,
	}))
}

// resetMatchLocked clears seats, queue and board so a fresh pair can join.
func (r *GobangRoom) resetMatchLocked() {
	r.black, r.white = 0, 0
	r.joined = make(map[int64]bool)
	r.board = newBoard()
	r.turn = 1
	r.winner = 0
	r.started = false
	r.finished = false
	for id, t := range r.forfeits {
		t.Stop()
		delete(r.forfeits, id)
	}
}

func (r *GobangRoom) broadcastStateLocked() {
	for _, c := range r.snapshot() {
		r.sendTo(c, r.stateFrameLocked(c))
	}
}

func (r *GobangRoom) stateFrameLocked(c *Conn) []byte {
	winner := ""
	switch r.winner {
	case 1:
		winner = "black"
	case 2:
		winner = "white"
	}
	data, _ := json.Marshal(gobangState{
		Board:       r.board,
		CurrentTurn: r.turn,
		Finished:    r.finished,
		Winner:      winner,
		Role:        r.roleLocked(c),
		RoomID:      r.id,
		Started:     r.started,
	})
	return protocol.ChatFrame(&protocol.ChatMessage{
		User:      systemUser,
		RoomID:    r.id,
		Content:   string(data),
		Timestamp: nowMillis(),
		Type:      protocol.MsgGobangState,
	})
}

func (r *GobangRoom) roleLocked(c *Conn) string {
	if c.Anonymous {
		return "spectator"
	}
	switch {
	case c.UserID == r.black:
		return "black"
	case c.UserID == r.white:
		return "white"
	case r.joined[c.UserID]:
		return "waiting_player"
	default:
		return "spectator"
	}
}

// usernameOf resolves a user id to the name of a currently connected member,
// falling back to a placeholder for users who have since left.
func (r *GobangRoom) usernameOf(userID int64) string {
	if userID == 0 {
		return "未知"
	}
	for _, c := range r.snapshot() {
		if !c.Anonymous && c.UserID == userID {
			return c.Username
		}
	}
	return fmt.Sprintf("用户%d", userID)
}

func newBoard() [][]int {
	board := make([][]int, boardSize)
	for y := range board {
		board[y] = make([]int, boardSize)
	}
	return board
}

// winsAt reports whether the stone just placed at (x, y) completes five or
// more in a row along any of the four scan axes.
func winsAt(board [][]int, x, y, colour int) bool {
	dirs := [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}
	for _, d := range dirs {
		run := 1 + countRun(board, x, y, d[0], d[1], colour) + countRun(board, x, y, -d[0], -d[1], colour)
		if run >= 5 {
			return true
		}
	}
	return false
}

// countRun counts consecutive stones of colour along (dx, dy), excluding the
// starting cell.
func countRun(board [][]int, x, y, dx, dy, colour int) int {
	n := 0
	cx, cy := x+dx, y+dy
	for cx >= 0 && cx < boardSize && cy >= 0 && cy < boardSize && board[cy][cx] == colour {
		n++
		cx += dx
		cy += dy
	}
	return n
}

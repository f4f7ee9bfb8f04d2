// internal/protocol/game.go
package protocol

// GameMsgType discriminates live_war frames.
type GameMsgType int32

const (
	GameMsgJoin         GameMsgType = 0
	GameMsgLeave        GameMsgType = 1
	GameMsgSelectUnit   GameMsgType = 2
	GameMsgSpawnUnit    GameMsgType = 3
	GameMsgState        GameMsgType = 4
	GameMsgStarted      GameMsgType = 5
	GameMsgOver         GameMsgType = 6
	GameMsgPlayerJoined GameMsgType = 7
	GameMsgPlayerLeft   GameMsgType = 8
	GameMsgError        GameMsgType = 9
)

// GameMessage carries one live_war payload selected by Type. Payload
// fields unrelated to Type are ignored by receivers.
type GameMessage struct {
	Type        GameMsgType
	JoinGame    *JoinGamePayload
	SelectUnit  *SelectUnitPayload
	GameState   *GameStatePayload
	PlayerEvent *PlayerEventPayload
	GameOver    *GameOverPayload
	Error       *ErrorPayload
}

type JoinGamePayload struct {
	Team string
}

type SelectUnitPayload struct {
	UnitType string
}

type ErrorPayload struct {
	Message string
}

// PlayerEventPayload announces a join or leave. Team is empty on leave.
type PlayerEventPayload struct {
	PlayerID   string
	PlayerName string
	Team       string
}

type GameOverPayload struct {
	Winner     string
	WinnerName string
}

// PlayerSummary is the roster entry sent to every recipient.
type PlayerSummary struct {
	ID   string
	Name string
	Team string
}

// Player is the recipient's own view, including private fields.
type Player struct {
	ID               string
	Name             string
	Team             string
	SelectedUnitType string
	Energy           int64
}

type TeamStats struct {
	Units int64
}

type TeamStatsMap struct {
	Red  *TeamStats
	Blue *TeamStats
}

type Base struct {
	ID    string
	X     float64
	Y     float64
	HP    int64
	HPMax int64
}

type MineField struct {
	ID        string
	X         float64
	Y         float64
	Energy    int64
	EnergyMax int64
}

type Unit struct {
	ID             string
	Type           string
	Team           string
	OwnerID        string
	X              float64
	Y              float64
	HP             int64
	HPMax          int64
	Attack         int64
	Speed          float64
	IsDead         bool
	CarryingEnergy int64
	TargetX        float64
	TargetY        float64
}

type EnergyDrop struct {
	ID     string
	X      float64
	Y      float64
	Energy int64
}

// HealEffect and BulletEffect are transient client animations;
// CreatedTime is epoch seconds and Lifetime the display window.
type HealEffect struct {
	ID          string
	X           float64
	Y           float64
	CreatedTime float64
	Lifetime    float64
	Team        string
}

type BulletEffect struct {
	ID          string
	FromX       float64
	FromY       float64
	ToX         float64
	ToY         float64
	CreatedTime float64
	Lifetime    float64
	Team        string
}

type Room struct {
	Name          string
	Width         int64
	Height        int64
	RedBase       *Base
	BlueBase      *Base
	MineFields    []*MineField
	Units         []*Unit
	EnergyDrops   []*EnergyDrop
	HealEffects   []*HealEffect
	BulletEffects []*BulletEffect
}

// GameStatePayload is the per-tick world snapshot. Player is the
// recipient's own entry and differs between recipients; spectators get
// an empty Player.
type GameStatePayload struct {
	Tick        int64
	GameTime    float64
	GameStarted bool
	Winner      string
	Room        *Room
	Logs        []string
	TeamStats   *TeamStatsMap
	Players     []*PlayerSummary
	Player      *Player
}

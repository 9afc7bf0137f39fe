package manager

import (
	"encoding/json"
	"fmt"
)

// Command types, the "type" field of a command
const (
	TypeSwarm    = "Swarm"
	TypeRelay    = "Relay"
	TypeBitcoind = "Bitcoind"
	TypeLnd      = "Lnd"
	TypeProxy    = "Proxy"
	TypeBoltwall = "Boltwall"
)

// Command is the wire form of an administrative command:
//
//	{"type":"Lnd","data":{"cmd":"AddInvoice","content":{"amt":1000}}}
type Command struct {
	Type string      `json:"type"`
	Data CommandData `json:"data"`
}

// CommandData names the operation and carries its arguments
type CommandData struct {
	Cmd     string          `json:"cmd"`
	Content json.RawMessage `json:"content,omitempty"`
}

// ParseCommand decodes a command. Malformed input wraps ErrBadCommand.
func ParseCommand(txt string) (*Command, error) {
	var c Command
	if err := json.Unmarshal([]byte(txt), &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCommand, err)
	}
	if c.Type == "" || c.Data.Cmd == "" {
		return nil, fmt.Errorf("%w: type and cmd are required", ErrBadCommand)
	}
	return &c, nil
}

// Decode unmarshals the command content into v
func (c *Command) Decode(v any) error {
	if len(c.Data.Content) == 0 {
		return fmt.Errorf("%w: %s.%s needs content", ErrBadCommand, c.Type, c.Data.Cmd)
	}
	if err := json.Unmarshal(c.Data.Content, v); err != nil {
		return fmt.Errorf("%w: %s.%s: %v", ErrBadCommand, c.Type, c.Data.Cmd, err)
	}
	return nil
}

func (c *Command) unknown() error {
	return fmt.Errorf("%w: unknown %s command %q", ErrBadCommand, c.Type, c.Data.Cmd)
}

// Swarm command content

type GetContainerLogs struct {
	Name string `json:"name"`
}

type ListVersions struct {
	Name string `json:"name"`
	Page int    `json:"page"`
}

type Login struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ChangePassword struct {
	UserID   uint32 `json:"user_id"`
	OldPass  string `json:"old_pass"`
	Password string `json:"password"`
}

// Relay command content

type AddUser struct {
	InitialSats *uint64 `json:"initial_sats,omitempty"`
}

type Tribe struct {
	ID uint16 `json:"id"`
}

type CreateTribe struct {
	Name string `json:"name"`
}

// Bitcoind command content

type TestMine struct {
	Blocks  int64  `json:"blocks"`
	Address string `json:"address,omitempty"`
}

// Lnd command content

type AddPeer struct {
	Pubkey string `json:"pubkey"`
	Host   string `json:"host"`
}

type AddChannel struct {
	Pubkey     string `json:"pubkey"`
	Amount     int64  `json:"amount"`
	PushAmount int64  `json:"push_amount"`
}

type AddInvoice struct {
	Amt int64 `json:"amt"`
}

type PayInvoice struct {
	PaymentRequest string `json:"payment_request"`
}

type PayKeysend struct {
	Dest string `json:"dest"`
	Amt  int64  `json:"amt"`
}

// Boltwall command content

type Pubkey struct {
	Pubkey string `json:"pubkey"`
}

type UpdatePaidEndpoint struct {
	ID     uint64 `json:"id"`
	Status bool   `json:"status"`
}

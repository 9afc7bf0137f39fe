package manager

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/cuemby/swarm/pkg/auth"
	"github.com/cuemby/swarm/pkg/log"
	"github.com/cuemby/swarm/pkg/metrics"
	"github.com/cuemby/swarm/pkg/security"
	"github.com/cuemby/swarm/pkg/types"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// rawText is a result passed through without encoding
type rawText string

var protoJSON = protojson.MarshalOptions{UseProtoNames: true, EmitUnpopulated: true}

// Dispatch parses txt, runs it against the node named tag under the
// manager lock and returns the JSON result. caller is the authenticated
// user id. The stack is persisted when the command changed it.
func (m *Manager) Dispatch(ctx context.Context, caller uint32, tag, txt string) (string, error) {
	cmd, err := ParseCommand(txt)
	if err != nil {
		metrics.CommandsTotal.WithLabelValues("invalid", "bad_command").Inc()
		return "", err
	}

	timer := metrics.NewTimer()
	logger := log.WithComponent("manager").With().
		Str("type", cmd.Type).
		Str("cmd", cmd.Data.Cmd).
		Str("tag", tag).
		Logger()

	m.mu.Lock()
	defer m.mu.Unlock()

	res, changed, err := m.dispatch(ctx, caller, tag, cmd)
	if err == nil && changed {
		err = m.save()
	}
	var out string
	if err == nil {
		out, err = encode(res)
	}

	timer.ObserveDurationVec(metrics.CommandDuration, cmd.Type)
	metrics.CommandsTotal.WithLabelValues(cmd.Type, resultLabel(err)).Inc()
	if err != nil {
		logger.Warn().Err(err).Dur("duration", timer.Duration()).Msg("command failed")
		return "", err
	}
	logger.Debug().Dur("duration", timer.Duration()).Msg("command handled")
	return out, nil
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrBadCommand):
		return "bad_command"
	case errors.Is(err, ErrNoClient):
		return "no_client"
	case errors.Is(err, auth.ErrUnauthorized), errors.Is(err, auth.ErrForbidden):
		return "unauthorized"
	default:
		return "error"
	}
}

func encode(v any) (string, error) {
	switch r := v.(type) {
	case nil:
		return "", ErrNoResult
	case rawText:
		return string(r), nil
	case json.RawMessage:
		if len(r) == 0 {
			return "", ErrNoResult
		}
		return string(r), nil
	case proto.Message:
		if !r.ProtoReflect().IsValid() {
			return "", ErrNoResult
		}
		data, err := protoJSON.Marshal(r)
		if err != nil {
			return "", fmt.Errorf("failed to encode result: %w", err)
		}
		return string(data), nil
	default:
		if rv := reflect.ValueOf(v); (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Map) && rv.IsNil() {
			return "", ErrNoResult
		}
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to encode result: %w", err)
		}
		return string(data), nil
	}
}

func noClient(kind, tag string) error {
	return fmt.Errorf("%w: no %s client for %s", ErrNoClient, kind, tag)
}

// dispatch must be called with mu held
func (m *Manager) dispatch(ctx context.Context, caller uint32, tag string, cmd *Command) (any, bool, error) {
	switch cmd.Type {
	case TypeSwarm:
		return m.swarm(ctx, caller, cmd)
	case TypeRelay:
		res, err := m.relay(ctx, tag, cmd)
		return res, false, err
	case TypeBitcoind:
		res, err := m.bitcoind(ctx, tag, cmd)
		return res, false, err
	case TypeLnd:
		res, err := m.lnd(ctx, tag, cmd)
		return res, false, err
	case TypeProxy:
		res, err := m.proxy(ctx, tag, cmd)
		return res, false, err
	case TypeBoltwall:
		res, err := m.boltwall(ctx, tag, cmd)
		return res, false, err
	default:
		return nil, false, fmt.Errorf("%w: unknown command type %q", ErrBadCommand, cmd.Type)
	}
}

func (m *Manager) swarm(ctx context.Context, caller uint32, cmd *Command) (any, bool, error) {
	switch cmd.Data.Cmd {
	case "GetConfig":
		s, err := types.Sanitize(m.stack)
		return s, false, err

	case "GetContainerLogs":
		var c GetContainerLogs
		if err := cmd.Decode(&c); err != nil {
			return nil, false, err
		}
		return m.Logs(ctx, c.Name), false, nil

	case "ListVersions":
		var c ListVersions
		if err := cmd.Decode(&c); err != nil {
			return nil, false, err
		}
		img, err := m.stack.FindImage(c.Name)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %s", err, c.Name)
		}
		repo := img.Repo()
		tags, err := m.tags.ListTags(ctx, repo.String())
		if err != nil {
			return nil, false, err
		}
		page, err := encodeTagPage(pageTags(tags, c.Page))
		if err != nil {
			return nil, false, err
		}
		return VersionsResult{Org: repo.Org, Repo: repo.Repo, Images: page}, false, nil

	case "Login":
		var c Login
		if err := cmd.Decode(&c); err != nil {
			return nil, false, err
		}
		token, err := m.auth.Login(m.stack, c.Username, c.Password)
		if err != nil {
			return nil, false, err
		}
		return map[string]string{"token": token}, false, nil

	case "ChangePassword":
		var c ChangePassword
		if err := cmd.Decode(&c); err != nil {
			return nil, false, err
		}
		if err := auth.ChangePassword(m.stack, caller, c.UserID, c.OldPass, c.Password); err != nil {
			return nil, false, err
		}
		return map[string]bool{"success": true}, true, nil

	default:
		return nil, false, cmd.unknown()
	}
}

func (m *Manager) relay(ctx context.Context, tag string, cmd *Command) (any, error) {
	client, ok := m.clients.Relay(tag)
	if !ok {
		return nil, noClient("relay", tag)
	}

	switch cmd.Data.Cmd {
	case "AddUser":
		var c AddUser
		if len(cmd.Data.Content) > 0 {
			if err := cmd.Decode(&c); err != nil {
				return nil, err
			}
		}
		return client.AddUser(ctx, c.InitialSats)
	case "ListUsers":
		return client.ListUsers(ctx)
	case "GetChats":
		return client.GetChats(ctx)
	case "AddDefaultTribe":
		var c Tribe
		if err := cmd.Decode(&c); err != nil {
			return nil, err
		}
		return client.AddDefaultTribe(ctx, c.ID)
	case "RemoveDefaultTribe":
		var c Tribe
		if err := cmd.Decode(&c); err != nil {
			return nil, err
		}
		return client.RemoveDefaultTribe(ctx, c.ID)
	case "CreateTribe":
		var c CreateTribe
		if err := cmd.Decode(&c); err != nil {
			return nil, err
		}
		return client.CreateTribe(ctx, c.Name)
	case "GetToken":
		token := m.secrets[security.RelayTokenKey(tag)]
		if token == "" {
			return nil, fmt.Errorf("no relay token for %s", tag)
		}
		return map[string]string{"token": base64.StdEncoding.EncodeToString([]byte(token))}, nil
	default:
		return nil, cmd.unknown()
	}
}

func (m *Manager) bitcoind(ctx context.Context, tag string, cmd *Command) (any, error) {
	client, ok := m.clients.Bitcoind(tag)
	if !ok {
		return nil, noClient("bitcoind", tag)
	}

	switch cmd.Data.Cmd {
	case "GetInfo":
		return client.GetInfo(ctx)
	case "TestMine":
		var c TestMine
		if err := cmd.Decode(&c); err != nil {
			return nil, err
		}
		return client.TestMine(ctx, c.Blocks, c.Address)
	case "GetBalance":
		return client.GetBalance(ctx)
	default:
		return nil, cmd.unknown()
	}
}

func (m *Manager) lnd(ctx context.Context, tag string, cmd *Command) (any, error) {
	client, ok := m.clients.Lnd(tag)
	if !ok {
		return nil, noClient("lnd", tag)
	}

	switch cmd.Data.Cmd {
	case "GetInfo":
		return client.GetInfo(ctx)
	case "ListChannels":
		res, err := client.ListChannels(ctx)
		if err != nil {
			return nil, err
		}
		channels := make([]json.RawMessage, 0, len(res.GetChannels()))
		for _, ch := range res.GetChannels() {
			data, err := protoJSON.Marshal(ch)
			if err != nil {
				return nil, fmt.Errorf("failed to encode channel: %w", err)
			}
			channels = append(channels, data)
		}
		return channels, nil
	case "AddPeer":
		var c AddPeer
		if err := cmd.Decode(&c); err != nil {
			return nil, err
		}
		return client.AddPeer(ctx, c.Pubkey, c.Host)
	case "ListPeers":
		return client.ListPeers(ctx)
	case "AddChannel":
		var c AddChannel
		if err := cmd.Decode(&c); err != nil {
			return nil, err
		}
		return client.AddChannel(ctx, c.Pubkey, c.Amount, c.PushAmount)
	case "NewAddress":
		res, err := client.NewAddress(ctx)
		if err != nil {
			return nil, err
		}
		return res.GetAddress(), nil
	case "GetBalance":
		res, err := client.GetBalance(ctx)
		if err != nil {
			return nil, err
		}
		return res.GetConfirmedBalance(), nil
	case "AddInvoice":
		var c AddInvoice
		if err := cmd.Decode(&c); err != nil {
			return nil, err
		}
		return client.AddInvoice(ctx, c.Amt)
	case "PayInvoice":
		var c PayInvoice
		if err := cmd.Decode(&c); err != nil {
			return nil, err
		}
		return client.PayInvoice(ctx, c.PaymentRequest)
	case "PayKeysend":
		var c PayKeysend
		if err := cmd.Decode(&c); err != nil {
			return nil, err
		}
		return client.PayKeysend(ctx, c.Dest, c.Amt)
	default:
		return nil, cmd.unknown()
	}
}

func (m *Manager) proxy(ctx context.Context, tag string, cmd *Command) (any, error) {
	client, ok := m.clients.Proxy(tag)
	if !ok {
		return nil, noClient("proxy", tag)
	}

	switch cmd.Data.Cmd {
	case "GetBalance":
		return client.GetBalance(ctx)
	default:
		return nil, cmd.unknown()
	}
}

func (m *Manager) boltwall(ctx context.Context, tag string, cmd *Command) (any, error) {
	client, ok := m.clients.Boltwall(tag)
	if !ok {
		return nil, noClient("boltwall", tag)
	}

	text := func(s string, err error) (any, error) {
		if err != nil {
			return nil, err
		}
		return rawText(s), nil
	}

	switch cmd.Data.Cmd {
	case "AddAdminPubkey":
		var c Pubkey
		if err := cmd.Decode(&c); err != nil {
			return nil, err
		}
		return text(client.AddAdminPubkey(ctx, c.Pubkey))
	case "GetSuperAdmin":
		return text(client.GetSuperAdmin(ctx))
	case "AddSubAdminPubkey":
		var c Pubkey
		if err := cmd.Decode(&c); err != nil {
			return nil, err
		}
		return text(client.AddSubAdminPubkey(ctx, c.Pubkey))
	case "ListAdmins":
		return text(client.ListAdmins(ctx))
	case "DeleteSubAdmin":
		var c Pubkey
		if err := cmd.Decode(&c); err != nil {
			return nil, err
		}
		return text(client.DeleteSubAdmin(ctx, c.Pubkey))
	case "ListPaidEndpoint":
		return text(client.ListPaidEndpoint(ctx))
	case "UpdatePaidEndpoint":
		var c UpdatePaidEndpoint
		if err := cmd.Decode(&c); err != nil {
			return nil, err
		}
		return text(client.UpdatePaidEndpoint(ctx, c.ID, c.Status))
	default:
		return nil, cmd.unknown()
	}
}

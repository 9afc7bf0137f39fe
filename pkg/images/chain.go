package images

import (
	"fmt"

	"github.com/cuemby/swarm/pkg/runtime"
	"github.com/cuemby/swarm/pkg/types"
)

// BtcRPCPort returns bitcoind's default RPC port for a network
func BtcRPCPort(network string) string {
	switch LndNetwork(network) {
	case "mainnet":
		return "8332"
	case "testnet":
		return "18332"
	case "simnet":
		return "18556"
	default:
		return "18443"
	}
}

func btcNetworkFlag(network string) string {
	switch LndNetwork(network) {
	case "mainnet":
		return ""
	case "testnet":
		return "-testnet"
	case "simnet":
		return "-simnet"
	default:
		return "-regtest"
	}
}

func buildBtc(btc *types.Btc, bc *BuildContext) (*runtime.ContainerSpec, error) {
	rpcPort := BtcRPCPort(btc.Network)
	spec := newSpec(btc, bc, "/home/bitcoin/.bitcoin", rpcPort, ZMQBlockPort, ZMQTxPort)

	spec.Cmd = []string{
		"-server",
		"-txindex",
		"-rpcbind=0.0.0.0",
		"-rpcallowip=0.0.0.0/0",
		"-rpcport=" + rpcPort,
		"-rpcuser=" + btc.User,
		"-rpcpassword=" + btc.Pass,
		"-fallbackfee=0.0002",
		"-zmqpubrawblock=tcp://0.0.0.0:" + ZMQBlockPort,
		"-zmqpubrawtx=tcp://0.0.0.0:" + ZMQTxPort,
	}
	if flag := btcNetworkFlag(btc.Network); flag != "" {
		spec.Cmd = append(spec.Cmd, flag)
	}
	return spec, nil
}

func buildLnd(lnd *types.Lnd, bc *BuildContext) (*runtime.ContainerSpec, error) {
	btc, err := Linked[*types.Btc](lnd, bc.Nodes, types.KindBtc)
	if err != nil {
		return nil, err
	}

	netwk := LndNetwork(lnd.Network)
	btcHost := Domain(btc.Name)
	spec := newSpec(lnd, bc, LndDir, lnd.Port, lnd.RPCPort, lnd.HTTPPort)

	spec.Cmd = []string{
		"--bitcoin.active",
		"--bitcoin." + netwk,
		"--bitcoin.node=bitcoind",
		"--lnddir=" + LndDir,
		fmt.Sprintf("--bitcoind.rpchost=%s:%s", btcHost, BtcRPCPort(btc.Network)),
		"--bitcoind.rpcuser=" + btc.User,
		"--bitcoind.rpcpass=" + btc.Pass,
		fmt.Sprintf("--bitcoind.zmqpubrawblock=tcp://%s:%s", btcHost, ZMQBlockPort),
		fmt.Sprintf("--bitcoind.zmqpubrawtx=tcp://%s:%s", btcHost, ZMQTxPort),
		"--listen=0.0.0.0:" + lnd.Port,
		"--rpclisten=0.0.0.0:" + lnd.RPCPort,
		"--tlsextradomain=" + Domain(lnd.Name),
		"--alias=" + lnd.Name,
		"--accept-keysend",
		"--accept-amp",
		"--debuglevel=info",
	}
	if lnd.HTTPPort != "" {
		spec.Cmd = append(spec.Cmd, "--restlisten=0.0.0.0:"+lnd.HTTPPort)
	}
	if lnd.Host != "" {
		spec.Cmd = append(spec.Cmd, "--tlsextradomain="+lnd.Host, "--externalip="+lnd.Host+":"+lnd.Port)
		// only the REST listener can be routed
		if lnd.HTTPPort != "" {
			withLabels(spec, lnd.Name, lnd.Host, lnd.HTTPPort)
		}
	}
	return spec, nil
}

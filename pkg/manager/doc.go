/*
Package manager is the process-wide handle on a running stack and the
dispatcher for administrative commands.

# Commands

A command names a node kind, an operation and its arguments:

	{"type":"Lnd","data":{"cmd":"AddInvoice","content":{"amt":1000}}}

The target node is given separately as the tag. Dispatch parses the
command, takes the manager lock, resolves the client registered for the
tag, performs one call, persists the stack if the command changed it and
returns a single JSON result.

	Swarm     GetConfig, GetContainerLogs, ListVersions, Login, ChangePassword
	Relay     AddUser, ListUsers, GetChats, AddDefaultTribe,
	          RemoveDefaultTribe, CreateTribe, GetToken
	Bitcoind  GetInfo, TestMine, GetBalance
	Lnd       GetInfo, ListChannels, AddPeer, ListPeers, AddChannel,
	          NewAddress, GetBalance, AddInvoice, PayInvoice, PayKeysend
	Proxy     GetBalance
	Boltwall  AddAdminPubkey, GetSuperAdmin, AddSubAdminPubkey, ListAdmins,
	          DeleteSubAdmin, ListPaidEndpoint, UpdatePaidEndpoint

GetConfig returns the stack with every secret cleared and without users.
ListVersions pages the image's registry tags ten at a time.

# Errors

	ErrBadCommand  malformed JSON, unknown type or operation, bad content
	ErrNoClient    nothing registered for the tag and kind
	ErrNoResult    the call returned neither a value nor an error

Authentication failures surface as auth.ErrUnauthorized.

# Locking

A single mutex covers the stack and the client registry for the whole of
a command, remote call included, so commands never interleave.
*/
package manager

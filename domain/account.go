package domain

// AccountRole classifies the two parties of a remittance.
type AccountRole string

const (
	// RoleSender locks the XRP collateral and issues the USD token.
	RoleSender AccountRole = "SENDER"
	// RoleReceiver releases the escrow and holds the issued token.
	RoleReceiver AccountRole = "RECEIVER"
)

// Account is a ledger identity. Seed is the signing secret — it is sent to the
// node's sign-and-submit endpoint and must never appear in logs or responses.
// Accounts are built once from configuration and not mutated afterwards.
type Account struct {
	Address string
	Seed    string
	Role    AccountRole
}

// String identifies the account without exposing the seed.
func (a Account) String() string {
	return string(a.Role) + ":" + a.Address
}

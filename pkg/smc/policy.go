package smc

import "fmt"

// TransferPolicy controls how bytes read from the controller are copied out.
type TransferPolicy int

const (
	// Swap reverses the payload into host order. Used for almost every key.
	Swap TransferPolicy = iota
	// NoSwap copies the payload as-is. For keys whose data is not produced by
	// the controller itself, e.g. the adapter info key.
	NoSwap
)

func (p TransferPolicy) String() string {
	switch p {
	case Swap:
		return "swap"
	case NoSwap:
		return "no-swap"
	default:
		return fmt.Sprintf("TransferPolicy(%d)", int(p))
	}
}

// PolicyTable maps keys to their transfer policy. Keys not in the table use Swap.
type PolicyTable map[Key]TransferPolicy

// DefaultPolicies returns a new table holding the built-in exceptions.
func DefaultPolicies() PolicyTable {
	return PolicyTable{
		ACAdapterInfoKey: NoSwap,
	}
}

// Lookup returns the policy of key. A nil table behaves like an empty one.
func (t PolicyTable) Lookup(key Key) TransferPolicy {
	if p, ok := t[key]; ok {
		return p
	}
	return Swap
}

// Clone returns a copy of t that can be modified independently.
func (t PolicyTable) Clone() PolicyTable {
	c := make(PolicyTable, len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}

package vm

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/evmspec/evmcore/word"
)

// Log is a single event emitted by a LOGn opcode.
type Log struct {
	Address common.Address
	Data    []byte
	Topics  []word.Word
}

// storageKey identifies a single (address, slot) pair for the accessed-keys
// set.
type storageKey struct {
	addr common.Address
	slot word.Word
}

// AccruedSubstate is the cross-frame bookkeeping shared by every frame of a
// single top-level execution: the self-destruct set, emitted logs, and the
// access/touch lists. It outlives any individual MachineState/Input and is
// never saved/restored across CALL-family frames.
type AccruedSubstate struct {
	SelfDestructSet map[common.Address]common.Address // addr -> beneficiary
	Logs            []Log

	TouchedAccounts  map[common.Address]bool
	AccessedAccounts map[common.Address]bool
	accessedStorage  map[storageKey]bool

	// RefundBalance is collected but never consumed.
	RefundBalance *word.Word
}

// NewAccruedSubstate returns an empty AccruedSubstate.
func NewAccruedSubstate() *AccruedSubstate {
	return &AccruedSubstate{
		SelfDestructSet:  make(map[common.Address]common.Address),
		TouchedAccounts:  make(map[common.Address]bool),
		AccessedAccounts: make(map[common.Address]bool),
		accessedStorage:  make(map[storageKey]bool),
		RefundBalance:    word.Zero(),
	}
}

// TouchAccount marks addr as touched.
func (s *AccruedSubstate) TouchAccount(addr common.Address) {
	s.TouchedAccounts[addr] = true
}

// AccessAccount marks addr as accessed.
func (s *AccruedSubstate) AccessAccount(addr common.Address) {
	s.AccessedAccounts[addr] = true
}

// AccessStorageKey records that slot of addr has been read or written.
func (s *AccruedSubstate) AccessStorageKey(addr common.Address, slot *word.Word) {
	s.accessedStorage[storageKey{addr, *slot}] = true
}

// StorageKeyAccessed reports whether slot of addr has been recorded via
// AccessStorageKey.
func (s *AccruedSubstate) StorageKeyAccessed(addr common.Address, slot *word.Word) bool {
	return s.accessedStorage[storageKey{addr, *slot}]
}

// ScheduleSelfDestruct marks addr for deletion with beneficiary, to be swept
// out of the World after the top-level execution returns.
func (s *AccruedSubstate) ScheduleSelfDestruct(addr, beneficiary common.Address) {
	s.SelfDestructSet[addr] = beneficiary
}

// AppendLog appends a Log record.
func (s *AccruedSubstate) AppendLog(l Log) {
	s.Logs = append(s.Logs, l)
}

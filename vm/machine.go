package vm

// MachineState is the per-frame mutable execution state: program counter,
// stack, memory, and the output of the most recently completed inner call
// (readable via RETURNDATASIZE/RETURNDATACOPY). A fresh MachineState is
// allocated for every CALL/CREATE-family sub-frame; the caller's is saved
// and restored around the nested Execute.
type MachineState struct {
	PC     int
	Stack  *Stack
	Memory *Memory
	Output []byte
}

// NewMachineState returns a fresh MachineState: pc=0, empty stack, empty
// memory, no prior output.
func NewMachineState() *MachineState {
	return &MachineState{
		Stack:  newStack(),
		Memory: newMemory(),
	}
}
